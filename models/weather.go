package models

import (
	"encoding/json"
	"strings"
)

// Field names, in scrape order.
const (
	FieldLocation    = "location"
	FieldTemperature = "temperature"
	FieldStatus      = "status"
)

// WeatherRecord is the result of one scrape.
//
// A nil field means the value could not be determined. A non-nil field is
// always a trimmed, non-empty string.
type WeatherRecord struct {
	Location    *string `json:"location"`
	Temperature *string `json:"temperature"`
	Status      *string `json:"status"`
}

// NewWeatherRecord builds a record, trimming every field and turning
// blank values into absent ones.
func NewWeatherRecord(location, temperature, status *string) *WeatherRecord {
	return &WeatherRecord{
		Location:    Normalize(location),
		Temperature: Normalize(temperature),
		Status:      Normalize(status),
	}
}

// Normalize trims s and returns nil for nil or whitespace-only input.
func Normalize(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// ToMap returns the record as a plain mapping. Absent fields map to nil.
func (r *WeatherRecord) ToMap() map[string]*string {
	return map[string]*string{
		FieldLocation:    r.Location,
		FieldTemperature: r.Temperature,
		FieldStatus:      r.Status,
	}
}

// Complete reports whether every field was found.
func (r *WeatherRecord) Complete() bool {
	return r.Location != nil && r.Temperature != nil && r.Status != nil
}

// String renders the record as a JSON object with null for absent fields.
func (r *WeatherRecord) String() string {
	b, err := json.Marshal(r)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Fields flattens the record for structured logs.
func (r *WeatherRecord) Fields() map[string]string {
	out := make(map[string]string, 3)
	for k, v := range r.ToMap() {
		if v == nil {
			out[k] = "<absent>"
			continue
		}
		out[k] = *v
	}
	return out
}
