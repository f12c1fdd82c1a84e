package models

import (
	"encoding/json"
	"fmt"
)

// WeatherRecord is a stored weather submission as returned by GET /weather/{id}.
type WeatherRecord struct {
	ID       string  `json:"id"`
	Date     string  `json:"date"`
	Location string  `json:"location"`
	Notes    string  `json:"notes"`
	Weather  Weather `json:"weather"`
	Geo      *Geo    `json:"geo,omitempty"`
}

// Weather holds the measurements captured for a record. Pointer fields and
// AirQuality are optional and may be absent from the response.
type Weather struct {
	Temperature float64        `json:"temperature"`
	Description []string       `json:"description"`
	Humidity    float64        `json:"humidity"`
	WindSpeed   float64        `json:"wind_speed"`
	UVIndex     float64        `json:"uv_index"`
	Icon        string         `json:"icon"`
	FeelsLike   *float64       `json:"feelslike,omitempty"`
	Visibility  *float64       `json:"visibility,omitempty"`
	Sunrise     *string        `json:"sunrise,omitempty"`
	Sunset      *string        `json:"sunset,omitempty"`
	AirQuality  map[string]any `json:"air_quality,omitempty"`
}

type Geo struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
}

// HistoryEntry is one element of GET /history. On the wire it is a
// two-element array: [city, id].
type HistoryEntry struct {
	City string
	ID   string
}

func (h *HistoryEntry) UnmarshalJSON(b []byte) error {
	var pair []string
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("history entry: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("history entry: want [city, id], got %d elements", len(pair))
	}
	h.City, h.ID = pair[0], pair[1]
	return nil
}

func (h HistoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{h.City, h.ID})
}

// SubmitRequest is the body of POST /weather.
type SubmitRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Location string `json:"location" validate:"required"`
	Notes    string `json:"notes"`
}

type SubmitResponse struct {
	ID string `json:"id"`
}
