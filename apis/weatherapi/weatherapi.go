package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"cityweather/apis/request"
	"cityweather/config"
	"cityweather/extract"
)

const (
	apiName        = "api.weatherapi.com"
	DefaultBaseURL = "https://api.weatherapi.com/v1"
)

type Config struct {
	APIKey  string
	BaseURL string
	Cities  config.Source
	// Recorder defaults to extract.NopRecorder.
	Recorder extract.Recorder
}

// Strategy extracts the same per-city record as the OpenWeather strategy from WeatherAPI.com.
// Pollution is the air_quality block of the current conditions. It is not safe for concurrent use.
type Strategy struct {
	cfg    Config
	cities []extract.City
	client *resty.Client
	logger zerolog.Logger
	closed bool
}

func New(cfg Config, logger zerolog.Logger) (*Strategy, error) {
	if cfg.Cities == nil {
		return nil, fmt.Errorf("%s: no city source", apiName)
	}

	cities, err := cfg.Cities()
	if err != nil {
		return nil, fmt.Errorf("load cities: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Recorder == nil {
		cfg.Recorder = extract.NopRecorder
	}

	logger = logger.With().Str("provider", apiName).Logger()

	return &Strategy{
		cfg:    cfg,
		cities: cities,
		client: request.NewClient("key", cfg.APIKey, logger),
		logger: logger,
	}, nil
}

func (w *Strategy) RetrieveData(ctx context.Context) (extract.Result, error) {
	if w.closed {
		return extract.Result{}, extract.ErrClosed
	}

	var result extract.Result
	for _, city := range w.cities {
		record := extract.Record{
			Coordinates: w.coordinates(ctx, city),
		}

		if record.Coordinates != nil {
			record.Pollution = w.pollution(ctx, city.Name, query(*record.Coordinates))
		}

		record.CurrentWeather = w.lookup(ctx, city.Name, extract.KindCurrentWeather, "/current.json",
			map[string]string{"q": city.Name, "aqi": "no"})

		if record.Coordinates != nil {
			record.Forecast = w.lookup(ctx, city.Name, extract.KindForecast, "/forecast.json",
				map[string]string{"q": query(*record.Coordinates), "days": "1"})
		}

		result.Set(city.Name, record)
	}

	return result, nil
}

func (w *Strategy) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true
	w.client.GetClient().CloseIdleConnections()
	return nil
}

func (w *Strategy) coordinates(ctx context.Context, city extract.City) *extract.Coordinates {
	if city.Coordinates != nil {
		coordinates := *city.Coordinates
		return &coordinates
	}

	start := time.Now()
	coordinates, err := w.search(ctx, city.Name)
	w.cfg.Recorder.ObserveLookup(apiName, extract.KindCoordinates, err, time.Since(start))
	if err != nil {
		w.logger.Warn().
			Err(err).
			Str("city", city.Name).
			Msg("could not resolve coordinates, skipping dependent lookups")
		return nil
	}

	return &coordinates
}

func (w *Strategy) search(ctx context.Context, name string) (extract.Coordinates, error) {
	body, err := request.Get(ctx, w.client, w.cfg.BaseURL+"/search.json", map[string]string{"q": name})
	if err != nil {
		return extract.Coordinates{}, err
	}

	var locations []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.Unmarshal(body, &locations); err != nil {
		return extract.Coordinates{}, fmt.Errorf("%w: %v", request.ErrMalformed, err)
	}

	if len(locations) == 0 {
		return extract.Coordinates{}, fmt.Errorf("%s: %w", name, extract.ErrNotFound)
	}

	return extract.Coordinates{Lat: locations[0].Lat, Lon: locations[0].Lon}, nil
}

func (w *Strategy) pollution(ctx context.Context, name, q string) json.RawMessage {
	body := w.lookup(ctx, name, extract.KindPollution, "/current.json", map[string]string{"q": q, "aqi": "yes"})
	if body == nil {
		return nil
	}

	var current struct {
		Current struct {
			AirQuality json.RawMessage `json:"air_quality"`
		} `json:"current"`
	}
	if err := json.Unmarshal(body, &current); err != nil || len(current.Current.AirQuality) == 0 {
		w.logger.Warn().
			Str("city", name).
			Str("kind", extract.KindPollution).
			Msg("response has no air_quality block")
		return nil
	}

	return current.Current.AirQuality
}

func (w *Strategy) lookup(ctx context.Context, name, kind, path string, params map[string]string) json.RawMessage {
	start := time.Now()
	body, err := request.Get(ctx, w.client, w.cfg.BaseURL+path, params)
	w.cfg.Recorder.ObserveLookup(apiName, kind, err, time.Since(start))

	if err != nil {
		w.logger.Warn().
			Err(err).
			Str("city", name).
			Str("kind", kind).
			Msg("lookup failed")
		return nil
	}

	return body
}

func query(coordinates extract.Coordinates) string {
	return fmt.Sprintf("%g,%g", coordinates.Lat, coordinates.Lon)
}
