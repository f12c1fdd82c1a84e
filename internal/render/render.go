// Package render draws the weather panels as plain text.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/pretty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lox/weatherdesk/internal/detail"
	"github.com/lox/weatherdesk/internal/fetchstate"
	"github.com/lox/weatherdesk/internal/lookup"
	"github.com/lox/weatherdesk/internal/models"
	"github.com/lox/weatherdesk/internal/submit"
)

const (
	LoadingText   = "Loading…"
	NoCitiesText  = "No cities yet"
	AirQualityHdr = "Air Quality"
)

func header(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len([]rune(title))))
}

// History draws the city list, newest first, numbered from 1.
func History(w io.Writer, st fetchstate.State[[]models.HistoryEntry]) {
	header(w, "City List")
	switch st.Status {
	case fetchstate.Idle, fetchstate.Loading:
		fmt.Fprintln(w, LoadingText)
	case fetchstate.Failed:
		fmt.Fprintln(w, st.Message)
	case fetchstate.Success:
		if len(st.Data) == 0 {
			fmt.Fprintln(w, NoCitiesText)
			return
		}
		for i, e := range st.Data {
			fmt.Fprintf(w, "%3d. %-24s %s\n", i+1, e.City, e.ID)
		}
	}
}

// Detail draws the detail panel for v.
func Detail(w io.Writer, v detail.View) {
	switch {
	case v.Loading():
		header(w, LoadingText)
		return
	case v.Failed() || v.Record == nil:
		header(w, "Error")
		fmt.Fprintln(w, v.Message)
		fmt.Fprintln(w, "[close]")
		return
	}

	r := v.Record
	header(w, cases.Title(language.English).String(r.Location))
	fmt.Fprintln(w, r.Date)
	fmt.Fprintf(w, "ID: %s\n\n", r.ID)

	fmt.Fprintf(w, "%s", r.Primary)
	if r.Icon != "" {
		fmt.Fprintf(w, "  (%s)", r.Icon)
	}
	fmt.Fprintln(w)

	rows := [][2]string{
		{"Temp", withUnit(r.Temperature, "°C")},
		{"Feels Like", withUnit(r.FeelsLike, "°C")},
		{"Humidity", withUnit(r.Humidity, "%")},
		{"Wind", withUnit(r.WindSpeed, " km/h")},
		{"UV Index", r.UVIndex},
		{"Visibility", withUnit(r.Visibility, " km")},
		{"Sunrise", r.Sunrise},
		{"Sunset", r.Sunset},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%-11s %s\n", row[0]+":", row[1])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Location Info")
	fmt.Fprintf(w, "%-11s %s\n", "Lat:", r.Lat)
	fmt.Fprintf(w, "%-11s %s\n", "Lon:", r.Lon)
	fmt.Fprintf(w, "%-11s %s\n", "Timezone:", r.Timezone)

	if r.HasNotes() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Notes: %s\n", r.Notes)
	}

	if r.HasAirQuality() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, AirQualityHdr)
		fmt.Fprintln(w, AirQualityJSON(r.AirQuality))
	}
}

// AirQualityJSON renders readings as indented JSON with sorted keys.
func AirQualityJSON(aq map[string]any) string {
	b, err := json.Marshal(aq)
	if err != nil {
		return fmt.Sprintf("%v", aq)
	}
	return strings.TrimRight(string(pretty.Pretty(b)), "\n")
}

// Lookup draws the lookup form's result banner. Failures never include a
// data block.
func Lookup(w io.Writer, r lookup.Result) {
	if r.Message == "" {
		return
	}
	fmt.Fprintln(w, r.Message)
	if !r.Success || r.Data == nil {
		return
	}
	d := r.Data
	fmt.Fprintf(w, "ID: %s\n", d.ID)
	fmt.Fprintf(w, "Date: %s\n", d.Date)
	fmt.Fprintf(w, "Location: %s\n", d.Location)
	fmt.Fprintf(w, "Notes: %s\n", d.Notes)
	fmt.Fprintf(w, "Temperature: %s°C\n", d.Temperature)
	fmt.Fprintf(w, "Description: %s\n", d.Description)
	fmt.Fprintf(w, "Humidity: %s%%\n", d.Humidity)
	fmt.Fprintf(w, "Wind Speed: %s km/h\n", d.WindSpeed)
	fmt.Fprintf(w, "UV Index: %s\n", d.UVIndex)
	if d.Icon != "" {
		fmt.Fprintf(w, "Icon: %s\n", d.Icon)
	}
}

// Submit draws the submission form's result banner.
func Submit(w io.Writer, r submit.Result) {
	if r.Message == "" {
		return
	}
	fmt.Fprintln(w, r.Message)
	if r.Success {
		fmt.Fprintf(w, "ID: %s\n", r.ID)
	}
}

func withUnit(v, unit string) string {
	if v == detail.Placeholder {
		return v
	}
	return v + unit
}
