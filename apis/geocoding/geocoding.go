package geocoding

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"cityweather/apis/request"
	"cityweather/extract"
)

// DefaultURL is the OpenWeather direct geocoding endpoint.
const DefaultURL = "https://api.openweathermap.org/geo/1.0/direct"

// Geocoding resolves city names through the OpenWeather direct geocoding API.
type Geocoding struct {
	client *resty.Client
	url    string
}

func New(client *resty.Client, url string) *Geocoding {
	if url == "" {
		url = DefaultURL
	}

	return &Geocoding{
		client: client,
		url:    url,
	}
}

// Get returns the coordinates of the first match for name, or extract.ErrNotFound.
func (g *Geocoding) Get(ctx context.Context, name string) (extract.Coordinates, error) {
	params := map[string]string{
		"q":     name,
		"limit": "1",
	}

	body, err := request.Get(ctx, g.client, g.url, params)
	if err != nil {
		return extract.Coordinates{}, err
	}

	var locations []struct {
		Name string  `json:"name"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
	}
	if err := json.Unmarshal(body, &locations); err != nil {
		return extract.Coordinates{}, fmt.Errorf("%w: %v", request.ErrMalformed, err)
	}

	if len(locations) == 0 {
		return extract.Coordinates{}, fmt.Errorf("%s: %w", name, extract.ErrNotFound)
	}

	return extract.Coordinates{
		Lat: locations[0].Lat,
		Lon: locations[0].Lon,
	}, nil
}
