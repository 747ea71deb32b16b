package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Provider names.
const (
	ProviderOpenWeather = "openweather"
	ProviderWeatherAPI  = "weatherapi"
)

type OpenWeather struct {
	APIKey              string `envconfig:"OPENWEATHER_API_KEY"`
	GeocodingURL        string `envconfig:"OPENWEATHER_GEOCODING_URL"`
	PollutionURL        string `envconfig:"OPENWEATHER_POLLUTION_URL"`
	PollutionHistoryURL string `envconfig:"OPENWEATHER_POLLUTION_HISTORY_URL"`
	WeatherURL          string `envconfig:"OPENWEATHER_WEATHER_URL"`
	ForecastURL         string `envconfig:"OPENWEATHER_FORECAST_URL"`
	Units               string `envconfig:"OPENWEATHER_UNITS" default:"metric"`
}

type WeatherAPI struct {
	APIKey  string `envconfig:"WEATHERAPI_API_KEY"`
	BaseURL string `envconfig:"WEATHERAPI_URL"`
}

type Settings struct {
	Provider   string `envconfig:"PROVIDER" default:"openweather"`
	CitiesFile string `envconfig:"CITIES_FILE"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile    string `envconfig:"LOG_FILE"`
	Port       string `envconfig:"PORT" default:"8080"`

	OpenWeather OpenWeather
	WeatherAPI  WeatherAPI
}

// LoadSettings reads settings from the environment, after loading an optional .env file.
func LoadSettings() (*Settings, error) {
	_ = godotenv.Load()

	var settings Settings
	if err := envconfig.Process("", &settings); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	return &settings, nil
}

// Validate checks that the selected provider has its API key.
func (s *Settings) Validate() error {
	switch s.Provider {
	case ProviderOpenWeather:
		if s.OpenWeather.APIKey == "" {
			return fmt.Errorf("OPENWEATHER_API_KEY is required for provider %q", s.Provider)
		}
	case ProviderWeatherAPI:
		if s.WeatherAPI.APIKey == "" {
			return fmt.Errorf("WEATHERAPI_API_KEY is required for provider %q", s.Provider)
		}
	default:
		return fmt.Errorf("unknown provider %q", s.Provider)
	}

	return nil
}
