package apis

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"cityweather/apis/openweather"
	"cityweather/apis/weatherapi"
	"cityweather/config"
	"cityweather/dates"
	"cityweather/extract"
)

var (
	ErrUnknownProvider     = errors.New("unknown provider")
	ErrHistoryNotSupported = errors.New("pollution history is not supported by this provider")
)

type Options struct {
	Cities   config.Source
	History  *dates.Range
	Recorder extract.Recorder
	Logger   zerolog.Logger
}

// New builds the strategy of the provider selected in settings. Callers own the returned
// strategy and release it with extract.Extractor.Close.
func New(settings *config.Settings, opts Options) (extract.Strategy, error) {
	switch settings.Provider {
	case config.ProviderOpenWeather:
		strategy, err := openweather.New(openweather.Config{
			APIKey:              settings.OpenWeather.APIKey,
			GeocodingURL:        settings.OpenWeather.GeocodingURL,
			PollutionURL:        settings.OpenWeather.PollutionURL,
			PollutionHistoryURL: settings.OpenWeather.PollutionHistoryURL,
			WeatherURL:          settings.OpenWeather.WeatherURL,
			ForecastURL:         settings.OpenWeather.ForecastURL,
			Units:               settings.OpenWeather.Units,
			Cities:              opts.Cities,
			History:             opts.History,
			Recorder:            opts.Recorder,
		}, opts.Logger)
		if err != nil {
			return nil, err
		}
		return strategy, nil
	case config.ProviderWeatherAPI:
		if opts.History != nil {
			return nil, fmt.Errorf("%s: %w", settings.Provider, ErrHistoryNotSupported)
		}
		strategy, err := weatherapi.New(weatherapi.Config{
			APIKey:   settings.WeatherAPI.APIKey,
			BaseURL:  settings.WeatherAPI.BaseURL,
			Cities:   opts.Cities,
			Recorder: opts.Recorder,
		}, opts.Logger)
		if err != nil {
			return nil, err
		}
		return strategy, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, settings.Provider)
	}
}
