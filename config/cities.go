package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"cityweather/extract"
)

var ErrInvalidConfig = errors.New("the configuration must contain a 'cities' key with a list of cities")

// Source yields the configured city list.
type Source func() ([]extract.City, error)

// File reads the city list from a YAML file on every call.
func File(path string) Source {
	return func() ([]extract.City, error) {
		return LoadCities(path)
	}
}

// Bytes parses the city list from an in-memory YAML document.
func Bytes(data []byte) Source {
	return func() ([]extract.City, error) {
		return ParseCities(data)
	}
}

// Static returns the given cities unchanged.
func Static(cities ...extract.City) Source {
	return func() ([]extract.City, error) {
		return cities, nil
	}
}

func LoadCities(path string) ([]extract.City, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cities config: %w", err)
	}

	cities, err := ParseCities(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cities, nil
}

// ParseCities decodes a document with a top-level `cities` list. Each element is either a
// plain city name or a mapping with name, lat and lon.
func ParseCities(data []byte) ([]extract.City, error) {
	document := map[string]yaml.Node{}
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	node, ok := document["cities"]
	if !ok || node.Kind != yaml.SequenceNode {
		return nil, ErrInvalidConfig
	}

	cities := make([]extract.City, 0, len(node.Content))
	seen := make(map[string]struct{}, len(node.Content))

	for i, item := range node.Content {
		city, err := decodeCity(item)
		if err != nil {
			return nil, fmt.Errorf("%w: cities[%d]: %v", ErrInvalidConfig, i, err)
		}

		if _, ok := seen[city.Name]; ok {
			return nil, fmt.Errorf("%w: cities[%d]: duplicate city %q", ErrInvalidConfig, i, city.Name)
		}
		seen[city.Name] = struct{}{}

		cities = append(cities, city)
	}

	return cities, nil
}

func decodeCity(node *yaml.Node) (extract.City, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			return extract.City{}, errors.New("city name is empty")
		}
		return extract.City{Name: node.Value}, nil
	case yaml.MappingNode:
		var entry struct {
			Name string   `yaml:"name"`
			Lat  *float64 `yaml:"lat"`
			Lon  *float64 `yaml:"lon"`
		}
		if err := node.Decode(&entry); err != nil {
			return extract.City{}, err
		}
		return newCity(entry.Name, entry.Lat, entry.Lon)
	default:
		return extract.City{}, fmt.Errorf("line %d: expected a name or a mapping", node.Line)
	}
}

func newCity(name string, lat, lon *float64) (extract.City, error) {
	if name == "" {
		return extract.City{}, errors.New("city name is empty")
	}

	city := extract.City{Name: name}

	switch {
	case lat == nil && lon == nil:
		return city, nil
	case lat == nil || lon == nil:
		return extract.City{}, fmt.Errorf("%s: lat and lon must be set together", name)
	case *lat < -90 || *lat > 90:
		return extract.City{}, fmt.Errorf("%s: lat %v out of range", name, *lat)
	case *lon < -180 || *lon > 180:
		return extract.City{}, fmt.Errorf("%s: lon %v out of range", name, *lon)
	}

	city.Coordinates = &extract.Coordinates{Lat: *lat, Lon: *lon}
	return city, nil
}
