package extract

import (
	"context"
	"encoding/json"
	"time"
)

// Strategy obtains the aggregated data for every city it was configured with.
type Strategy interface {
	RetrieveData(ctx context.Context) (Result, error)
}

// HistoryStrategy is implemented by strategies that can look up pollution history for a
// single city over a dd/mm/yyyy date range.
type HistoryStrategy interface {
	Strategy
	PollutionHistory(ctx context.Context, city City, from, to string) (json.RawMessage, error)
}

// Recorder observes the outcome of every remote lookup a strategy performs.
type Recorder interface {
	ObserveLookup(provider, kind string, err error, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLookup(string, string, error, time.Duration) {}

// NopRecorder discards every observation.
var NopRecorder Recorder = nopRecorder{}

// Lookup kinds.
const (
	KindCoordinates      = "coordinates"
	KindPollution        = "pollution"
	KindPollutionHistory = "pollution_history"
	KindCurrentWeather   = "current_weather"
	KindForecast         = "forecast"
)

type City struct {
	Name        string       `json:"name"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Record is the aggregated data of one city. Every field is null when its lookup failed
// or was skipped.
type Record struct {
	Coordinates      *Coordinates    `json:"coordinates"`
	Pollution        json.RawMessage `json:"pollution"`
	CurrentWeather   json.RawMessage `json:"current_weather"`
	Forecast         json.RawMessage `json:"forecast"`
	PollutionHistory json.RawMessage `json:"pollution_history,omitempty"`
}
