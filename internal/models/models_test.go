package models

import (
	"encoding/json"
	"testing"
)

func TestHistoryEntryUnmarshal(t *testing.T) {
	var got []HistoryEntry
	if err := json.Unmarshal([]byte(`[["bright","b1"],["myrtleford","m2"]]`), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []HistoryEntry{{City: "bright", ID: "b1"}, {City: "myrtleford", ID: "m2"}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestHistoryEntryUnmarshalRejectsBadShape(t *testing.T) {
	for _, in := range []string{`["bright"]`, `["a","b","c"]`, `{"city":"bright","id":"b1"}`, `[1,2]`} {
		var e HistoryEntry
		if err := json.Unmarshal([]byte(in), &e); err == nil {
			t.Errorf("Unmarshal(%s) succeeded with %+v", in, e)
		}
	}
}

func TestHistoryEntryMarshal(t *testing.T) {
	b, err := json.Marshal(HistoryEntry{City: "bright", ID: "b1"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `["bright","b1"]` {
		t.Errorf("Marshal = %s", b)
	}
}

func TestWeatherOptionalFields(t *testing.T) {
	var rec WeatherRecord
	body := `{"id":"x","date":"2026-10-19","location":"bright","notes":"",
		"weather":{"temperature":0,"description":["Clear"],"humidity":50,"wind_speed":3,"uv_index":2,"icon":"i","feelslike":0}}`
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	w := rec.Weather
	if w.FeelsLike == nil || *w.FeelsLike != 0 {
		t.Errorf("FeelsLike = %v, want present zero", w.FeelsLike)
	}
	if w.Visibility != nil || w.Sunrise != nil || w.Sunset != nil {
		t.Error("absent optional fields decoded as present")
	}
	if w.AirQuality != nil || rec.Geo != nil {
		t.Error("absent air quality or geo decoded as present")
	}
}
