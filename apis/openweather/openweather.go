package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"cityweather/apis/geocoding"
	"cityweather/apis/request"
	"cityweather/config"
	"cityweather/dates"
	"cityweather/extract"
)

const apiName = "openweather"

// Default endpoints.
const (
	DefaultPollutionURL        = "https://api.openweathermap.org/data/2.5/air_pollution"
	DefaultPollutionHistoryURL = "https://api.openweathermap.org/data/2.5/air_pollution/history"
	DefaultWeatherURL          = "https://api.openweathermap.org/data/2.5/weather"
	DefaultForecastURL         = "https://api.openweathermap.org/data/2.5/forecast/daily"
	DefaultUnits               = "metric"
)

type Config struct {
	APIKey              string
	GeocodingURL        string
	PollutionURL        string
	PollutionHistoryURL string
	WeatherURL          string
	ForecastURL         string
	Units               string

	Cities config.Source
	// History, when set, adds a pollution history lookup to every city.
	History *dates.Range
	// Recorder defaults to extract.NopRecorder.
	Recorder extract.Recorder
}

func (c *Config) setDefaults() {
	if c.PollutionURL == "" {
		c.PollutionURL = DefaultPollutionURL
	}
	if c.PollutionHistoryURL == "" {
		c.PollutionHistoryURL = DefaultPollutionHistoryURL
	}
	if c.WeatherURL == "" {
		c.WeatherURL = DefaultWeatherURL
	}
	if c.ForecastURL == "" {
		c.ForecastURL = DefaultForecastURL
	}
	if c.Units == "" {
		c.Units = DefaultUnits
	}
	if c.Recorder == nil {
		c.Recorder = extract.NopRecorder
	}
}

// Strategy extracts current pollution, weather and next-day forecast for every configured
// city from the OpenWeather APIs. It is not safe for concurrent use.
type Strategy struct {
	cfg       Config
	cities    []extract.City
	client    *resty.Client
	geocoding *geocoding.Geocoding
	logger    zerolog.Logger
	closed    bool
}

// New loads the city list and opens the HTTP client shared by every lookup.
// The caller must Close the strategy.
func New(cfg Config, logger zerolog.Logger) (*Strategy, error) {
	if cfg.Cities == nil {
		return nil, fmt.Errorf("%s: no city source", apiName)
	}

	cities, err := cfg.Cities()
	if err != nil {
		return nil, fmt.Errorf("load cities: %w", err)
	}

	cfg.setDefaults()
	logger = logger.With().Str("provider", apiName).Logger()
	client := request.NewClient("appid", cfg.APIKey, logger)

	return &Strategy{
		cfg:       cfg,
		cities:    cities,
		client:    client,
		geocoding: geocoding.New(client, cfg.GeocodingURL),
		logger:    logger,
	}, nil
}

// Cities returns the configured cities in order.
func (s *Strategy) Cities() []extract.City {
	cities := make([]extract.City, len(s.cities))
	copy(cities, s.cities)
	return cities
}

func (s *Strategy) RetrieveData(ctx context.Context) (extract.Result, error) {
	if s.closed {
		return extract.Result{}, extract.ErrClosed
	}

	var result extract.Result
	for _, city := range s.cities {
		result.Set(city.Name, s.aggregate(ctx, city))
	}

	return result, nil
}

// PollutionHistory looks up the pollution history of a city between two dd/mm/yyyy dates.
// Invalid dates are rejected before any request is made. A failed lookup yields nil data.
func (s *Strategy) PollutionHistory(ctx context.Context, city extract.City, from, to string) (json.RawMessage, error) {
	if s.closed {
		return nil, extract.ErrClosed
	}

	period, err := dates.ParseRange(from, to)
	if err != nil {
		return nil, err
	}

	coordinates := s.coordinates(ctx, city)
	if coordinates == nil {
		return nil, nil
	}

	return s.pollutionHistory(ctx, city.Name, *coordinates, period), nil
}

// Close releases the connections held by the HTTP client. It is safe to call more than once.
func (s *Strategy) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	s.client.GetClient().CloseIdleConnections()
	return nil
}

func (s *Strategy) aggregate(ctx context.Context, city extract.City) extract.Record {
	record := extract.Record{
		Coordinates: s.coordinates(ctx, city),
	}

	if record.Coordinates != nil {
		record.Pollution = s.lookup(ctx, city.Name, extract.KindPollution, s.cfg.PollutionURL,
			coordinateParams(*record.Coordinates))
	}

	record.CurrentWeather = s.lookup(ctx, city.Name, extract.KindCurrentWeather, s.cfg.WeatherURL,
		map[string]string{
			"q":     city.Name,
			"units": s.cfg.Units,
		})

	if record.Coordinates != nil {
		params := coordinateParams(*record.Coordinates)
		params["cnt"] = "1"
		params["units"] = s.cfg.Units
		record.Forecast = s.lookup(ctx, city.Name, extract.KindForecast, s.cfg.ForecastURL, params)

		if s.cfg.History != nil {
			record.PollutionHistory = s.pollutionHistory(ctx, city.Name, *record.Coordinates, *s.cfg.History)
		}
	}

	return record
}

// coordinates returns the configured coordinates or resolves them by name; nil when unavailable.
func (s *Strategy) coordinates(ctx context.Context, city extract.City) *extract.Coordinates {
	if city.Coordinates != nil {
		coordinates := *city.Coordinates
		return &coordinates
	}

	start := time.Now()
	coordinates, err := s.geocoding.Get(ctx, city.Name)
	s.cfg.Recorder.ObserveLookup(apiName, extract.KindCoordinates, err, time.Since(start))
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("city", city.Name).
			Msg("could not resolve coordinates, skipping dependent lookups")
		return nil
	}

	return &coordinates
}

func (s *Strategy) pollutionHistory(ctx context.Context, name string, coordinates extract.Coordinates, period dates.Range) json.RawMessage {
	params := coordinateParams(coordinates)
	params["start"] = strconv.FormatInt(period.Start, 10)
	params["end"] = strconv.FormatInt(period.End, 10)

	return s.lookup(ctx, name, extract.KindPollutionHistory, s.cfg.PollutionHistoryURL, params)
}

func (s *Strategy) lookup(ctx context.Context, name, kind, url string, params map[string]string) json.RawMessage {
	start := time.Now()
	body, err := request.Get(ctx, s.client, url, params)
	duration := time.Since(start)
	s.cfg.Recorder.ObserveLookup(apiName, kind, err, duration)

	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("city", name).
			Str("kind", kind).
			Msg("lookup failed")
		return nil
	}

	s.logger.Debug().
		Str("city", name).
		Str("kind", kind).
		Dur("duration", duration).
		Msg("lookup succeeded")

	return body
}

func coordinateParams(coordinates extract.Coordinates) map[string]string {
	return map[string]string{
		"lat": strconv.FormatFloat(coordinates.Lat, 'f', -1, 64),
		"lon": strconv.FormatFloat(coordinates.Lon, 'f', -1, 64),
	}
}
