package apis

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityweather/apis/openweather"
	"cityweather/apis/weatherapi"
	"cityweather/config"
	"cityweather/dates"
	"cityweather/extract"
)

func TestNew(t *testing.T) {
	opts := Options{
		Cities: config.Static(extract.City{Name: "Gdynia"}),
		Logger: zerolog.Nop(),
	}

	strategy, err := New(&config.Settings{Provider: config.ProviderOpenWeather}, opts)
	require.NoError(t, err)
	assert.IsType(t, &openweather.Strategy{}, strategy)
	assert.Implements(t, (*extract.HistoryStrategy)(nil), strategy)
	require.NoError(t, extract.New(strategy).Close())

	strategy, err = New(&config.Settings{Provider: config.ProviderWeatherAPI}, opts)
	require.NoError(t, err)
	assert.IsType(t, &weatherapi.Strategy{}, strategy)
	require.NoError(t, extract.New(strategy).Close())

	_, err = New(&config.Settings{Provider: "weatherbit"}, opts)
	assert.ErrorIs(t, err, ErrUnknownProvider)

	opts.History = &dates.Range{Start: 1704067200, End: 1704240000}
	_, err = New(&config.Settings{Provider: config.ProviderWeatherAPI}, opts)
	assert.ErrorIs(t, err, ErrHistoryNotSupported)

	opts.Cities = config.Bytes([]byte("cities: none"))
	_, err = New(&config.Settings{Provider: config.ProviderOpenWeather}, opts)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
