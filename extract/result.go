package extract

import (
	"bytes"
	"encoding/json"
)

// Result maps city names to their records and keeps the order in which cities were added.
// The zero value is an empty result ready to use.
type Result struct {
	names   []string
	records map[string]Record
}

// Set stores the record of a city. A name that is already present keeps its position.
func (r *Result) Set(name string, record Record) {
	if r.records == nil {
		r.records = make(map[string]Record)
	}

	if _, ok := r.records[name]; !ok {
		r.names = append(r.names, name)
	}
	r.records[name] = record
}

func (r Result) Get(name string) (Record, bool) {
	record, ok := r.records[name]
	return record, ok
}

// Names returns the city names in insertion order.
func (r Result) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

func (r Result) Len() int {
	return len(r.names)
}

// MarshalJSON encodes the result as a JSON object whose keys follow insertion order.
func (r Result) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')

	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(r.records[name])
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
