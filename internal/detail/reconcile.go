package detail

import (
	"maps"
	"strconv"
	"strings"

	"github.com/lox/weatherdesk/internal/models"
)

// Placeholder stands in for any optional value the backend left out.
const Placeholder = "N/A"

// Reconciled is a weather record with every optional field resolved to a
// display string. Nothing in it is ever missing.
type Reconciled struct {
	ID       string
	Date     string
	Location string
	Notes    string
	Icon     string

	// Primary is the first description element.
	Primary     string
	Description []string

	Temperature string
	FeelsLike   string
	Humidity    string
	WindSpeed   string
	UVIndex     string
	Visibility  string
	Sunrise     string
	Sunset      string

	Lat      string
	Lon      string
	Timezone string

	// AirQuality is nil unless the backend sent at least one reading.
	AirQuality map[string]any
}

func (r *Reconciled) HasNotes() bool {
	return strings.TrimSpace(r.Notes) != ""
}

func (r *Reconciled) HasAirQuality() bool {
	return len(r.AirQuality) > 0
}

// Reconcile resolves rec into a display-ready view. It is pure: equal input
// yields equal output.
func Reconcile(rec *models.WeatherRecord) *Reconciled {
	w := rec.Weather
	out := &Reconciled{
		ID:          rec.ID,
		Date:        rec.Date,
		Location:    rec.Location,
		Notes:       rec.Notes,
		Icon:        rec.Weather.Icon,
		Primary:     Placeholder,
		Description: append([]string(nil), w.Description...),
		Temperature: formatFloat(w.Temperature),
		FeelsLike:   optFloat(w.FeelsLike),
		Humidity:    formatFloat(w.Humidity),
		WindSpeed:   formatFloat(w.WindSpeed),
		UVIndex:     formatFloat(w.UVIndex),
		Visibility:  optFloat(w.Visibility),
		Sunrise:     optString(w.Sunrise),
		Sunset:      optString(w.Sunset),
		Lat:         Placeholder,
		Lon:         Placeholder,
		Timezone:    Placeholder,
	}
	if len(w.Description) > 0 && w.Description[0] != "" {
		out.Primary = w.Description[0]
	}
	if rec.Geo != nil {
		out.Lat = formatFloat(rec.Geo.Lat)
		out.Lon = formatFloat(rec.Geo.Lon)
		if rec.Geo.Timezone != "" {
			out.Timezone = rec.Geo.Timezone
		}
	}
	if len(w.AirQuality) > 0 {
		out.AirQuality = maps.Clone(w.AirQuality)
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optFloat(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return formatFloat(*v)
}

func optString(v *string) string {
	if v == nil || *v == "" {
		return Placeholder
	}
	return *v
}
