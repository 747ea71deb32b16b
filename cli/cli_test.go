package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityweather/apis"
	"cityweather/config"
	"cityweather/dates"
)

const defaultCities = "cities:\n  - name: Gdynia\n    lat: 54.5\n    lon: 18.5\n  - Atlantis\n"

func newFakeOpenWeather(t *testing.T) (*httptest.Server, *atomic.Int64) {
	requests := &atomic.Int64{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Path {
		case "/geo":
			_, _ = w.Write([]byte(`[]`))
		case "/history":
			_, _ = w.Write([]byte(`{"start":` + r.URL.Query().Get("start") + `,"list":[]}`))
		case "/weather":
			_, _ = w.Write([]byte(`{"name":"` + r.URL.Query().Get("q") + `"}`))
		default:
			_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
		}
	}))
	t.Cleanup(server.Close)
	return server, requests
}

func testSettings(url string) *config.Settings {
	return &config.Settings{
		Provider: config.ProviderOpenWeather,
		OpenWeather: config.OpenWeather{
			APIKey:              "key",
			GeocodingURL:        url + "/geo",
			PollutionURL:        url + "/pollution",
			PollutionHistoryURL: url + "/history",
			WeatherURL:          url + "/weather",
			ForecastURL:         url + "/forecast",
		},
	}
}

func run(t *testing.T, settings *config.Settings, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := New(settings, []byte(defaultCities), zerolog.Nop())
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExtract(t *testing.T) {
	server, _ := newFakeOpenWeather(t)

	out, err := run(t, testSettings(server.URL), "extract")
	require.NoError(t, err)

	assert.Less(t, strings.Index(out, `"Gdynia"`), strings.Index(out, `"Atlantis"`))

	var result map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result, 2)

	assert.JSONEq(t, `{"lat":54.5,"lon":18.5}`, string(result["Gdynia"]["coordinates"]))
	assert.JSONEq(t, `{"path":"/pollution"}`, string(result["Gdynia"]["pollution"]))
	assert.JSONEq(t, `{"path":"/forecast"}`, string(result["Gdynia"]["forecast"]))
	assert.JSONEq(t, `null`, string(result["Atlantis"]["coordinates"]))
	assert.JSONEq(t, `null`, string(result["Atlantis"]["pollution"]))
	assert.JSONEq(t, `{"name":"Atlantis"}`, string(result["Atlantis"]["current_weather"]))
}

func TestExtract_CitiesFile(t *testing.T) {
	server, _ := newFakeOpenWeather(t)

	path := filepath.Join(t.TempDir(), "cities.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cities:\n  - name: Sopot\n    lat: 54.4\n    lon: 18.6\n"), 0o644))

	out, err := run(t, testSettings(server.URL), "extract", "--cities", path)
	require.NoError(t, err)

	var result map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Contains(t, result, "Sopot")
	assert.Len(t, result, 1)
}

func TestExtract_History(t *testing.T) {
	server, _ := newFakeOpenWeather(t)

	out, err := run(t, testSettings(server.URL), "extract", "--from", "01/01/2024", "--to", "02/01/2024")
	require.NoError(t, err)

	var result map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.JSONEq(t, `{"start":1704067200,"list":[]}`, string(result["Gdynia"]["pollution_history"]))
	assert.NotContains(t, result["Atlantis"], "pollution_history")
}

func TestExtract_Errors(t *testing.T) {
	server, requests := newFakeOpenWeather(t)

	_, err := run(t, testSettings(server.URL), "extract", "--from", "2024-01-01", "--to", "02/01/2024")
	assert.ErrorIs(t, err, dates.ErrInvalidDate)

	_, err = run(t, testSettings(server.URL), "extract", "--cities", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	settings := testSettings(server.URL)
	settings.OpenWeather.APIKey = ""
	_, err = run(t, settings, "extract")
	assert.ErrorContains(t, err, "OPENWEATHER_API_KEY")

	assert.Equal(t, int64(0), requests.Load())
}

func TestHistory(t *testing.T) {
	server, requests := newFakeOpenWeather(t)

	out, err := run(t, testSettings(server.URL), "history", "Gdynia", "--from", "01/01/2024", "--to", "03/01/2024")
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":1704067200,"list":[]}`, out)
	assert.Equal(t, int64(1), requests.Load())

	out, err = run(t, testSettings(server.URL), "history", "Atlantis", "--from", "01/01/2024", "--to", "03/01/2024")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)

	before := requests.Load()
	_, err = run(t, testSettings(server.URL), "history", "Gdynia", "--from", "01/01/2024", "--to", "")
	assert.ErrorIs(t, err, dates.ErrInvalidDate)
	assert.Equal(t, before, requests.Load())
}

func TestHistory_UnsupportedProvider(t *testing.T) {
	settings := &config.Settings{
		Provider:   config.ProviderWeatherAPI,
		WeatherAPI: config.WeatherAPI{APIKey: "key", BaseURL: "http://127.0.0.1:0"},
	}

	_, err := run(t, settings, "history", "Gdynia", "--from", "01/01/2024", "--to", "03/01/2024")
	assert.ErrorIs(t, err, apis.ErrHistoryNotSupported)
}
