package detail

import (
	"context"
	"net/http"
	"reflect"
	"sync"
	"testing"

	"github.com/lox/weatherdesk/internal/fetchstate"
	"github.com/lox/weatherdesk/internal/models"
	"github.com/lox/weatherdesk/internal/weatherapi"
	"github.com/lox/weatherdesk/internal/weatherapi/weatherapitest"
)

func TestReconcile_Sparse(t *testing.T) {
	t.Parallel()
	rec := weatherapitest.SparseRecord("s1", "bright")

	r := Reconcile(&rec)

	for name, got := range map[string]string{
		"FeelsLike":  r.FeelsLike,
		"Visibility": r.Visibility,
		"Sunrise":    r.Sunrise,
		"Sunset":     r.Sunset,
		"Lat":        r.Lat,
		"Lon":        r.Lon,
		"Timezone":   r.Timezone,
	} {
		if got != Placeholder {
			t.Errorf("%s = %q, want %q", name, got, Placeholder)
		}
	}
	if r.Primary != "Overcast" {
		t.Errorf("Primary = %q, want Overcast", r.Primary)
	}
	if r.Temperature != "8.5" {
		t.Errorf("Temperature = %q, want 8.5", r.Temperature)
	}
	if r.HasAirQuality() {
		t.Error("HasAirQuality() = true for a record without readings")
	}
	if r.HasNotes() {
		t.Error("HasNotes() = true for a record without notes")
	}
}

func TestReconcile_Full(t *testing.T) {
	t.Parallel()
	rec := weatherapitest.Record("f1", "wandiligong")

	r := Reconcile(&rec)

	tests := []struct {
		name, got, want string
	}{
		{"Primary", r.Primary, "Sunny"},
		{"FeelsLike", r.FeelsLike, "19"},
		{"Visibility", r.Visibility, "10"},
		{"Sunrise", r.Sunrise, "06:12 AM"},
		{"Sunset", r.Sunset, "08:01 PM"},
		{"Lat", r.Lat, "-36.794"},
		{"Timezone", r.Timezone, "Australia/Melbourne"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if !r.HasAirQuality() {
		t.Error("HasAirQuality() = false with pm2_5 present")
	}
}

func TestReconcile_ZeroValuesAreNotMissing(t *testing.T) {
	t.Parallel()
	zero := 0.0
	rec := weatherapitest.SparseRecord("z", "x")
	rec.Weather.FeelsLike = &zero
	rec.Weather.Visibility = &zero

	r := Reconcile(&rec)
	if r.FeelsLike != "0" || r.Visibility != "0" {
		t.Errorf("FeelsLike=%q Visibility=%q, want 0 and 0", r.FeelsLike, r.Visibility)
	}
}

func TestReconcile_EmptyDescriptionAndAirQuality(t *testing.T) {
	t.Parallel()
	rec := weatherapitest.SparseRecord("e", "x")
	rec.Weather.Description = nil
	rec.Weather.AirQuality = map[string]any{}

	r := Reconcile(&rec)
	if r.Primary != Placeholder {
		t.Errorf("Primary = %q, want %q", r.Primary, Placeholder)
	}
	if r.AirQuality != nil {
		t.Errorf("AirQuality = %v, want nil for empty map", r.AirQuality)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	t.Parallel()
	rec := weatherapitest.Record("i", "x")
	if !reflect.DeepEqual(Reconcile(&rec), Reconcile(&rec)) {
		t.Error("Reconcile gave different output for the same record")
	}
}

func TestShow_FetchesAndReconciles(t *testing.T) {
	t.Parallel()
	srv := weatherapitest.NewServer(t)
	srv.Add(weatherapitest.Record("abc", "wandiligong"))

	m := New(weatherapi.NewClient(srv.URL), nil)
	v := m.Show(context.Background(), "abc")

	if v.Status != fetchstate.Success || v.Record == nil {
		t.Fatalf("view = %+v, want success", v)
	}
	if v.Record.ID != "abc" || v.ID != "abc" {
		t.Errorf("view id = %q record id = %q, want abc", v.ID, v.Record.ID)
	}
}

func TestShow_SameIDDoesNotRefetch(t *testing.T) {
	t.Parallel()
	srv := weatherapitest.NewServer(t)
	srv.Add(weatherapitest.Record("abc", "x"))
	srv.Add(weatherapitest.Record("def", "y"))

	m := New(weatherapi.NewClient(srv.URL), nil)
	first := m.Show(context.Background(), "abc")
	second := m.Show(context.Background(), "abc")
	if got := srv.Requests(weatherapitest.RouteGet); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated view differs")
	}

	m.Show(context.Background(), "def")
	if got := srv.Requests(weatherapitest.RouteGet); got != 2 {
		t.Errorf("requests after id change = %d, want 2", got)
	}

	m.Reset()
	m.Show(context.Background(), "def")
	if got := srv.Requests(weatherapitest.RouteGet); got != 3 {
		t.Errorf("requests after Reset = %d, want 3", got)
	}
}

func TestShow_Errors(t *testing.T) {
	t.Parallel()

	t.Run("server detail", func(t *testing.T) {
		t.Parallel()
		srv := weatherapitest.NewServer(t)
		v := New(weatherapi.NewClient(srv.URL), nil).Show(context.Background(), "unknown")
		if !v.Failed() || v.Message != "Weather data not found" {
			t.Errorf("view = %+v, want error with server detail", v)
		}
		if v.Record != nil {
			t.Error("error view carries a record")
		}
	})

	t.Run("fallback", func(t *testing.T) {
		t.Parallel()
		srv := weatherapitest.NewServer(t)
		srv.Override(weatherapitest.RouteGet, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		v := New(weatherapi.NewClient(srv.URL), nil).Show(context.Background(), "x")
		if v.Message != FetchErrorMessage {
			t.Errorf("Message = %q, want %q", v.Message, FetchErrorMessage)
		}
	})
}

// gatedGetter returns records only when released, ignoring cancellation, so
// responses can be delivered in any order.
type gatedGetter struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func (g *gatedGetter) gate(id string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gates == nil {
		g.gates = make(map[string]chan struct{})
	}
	if g.gates[id] == nil {
		g.gates[id] = make(chan struct{})
	}
	return g.gates[id]
}

func (g *gatedGetter) Get(ctx context.Context, id string) (*models.WeatherRecord, error) {
	<-g.gate(id)
	rec := weatherapitest.Record(id, "city-"+id)
	return &rec, nil
}

func TestSetID_StaleResponseDiscarded(t *testing.T) {
	t.Parallel()
	g := &gatedGetter{}
	m := New(g, nil)

	doneX := m.SetID(context.Background(), "X")
	doneY := m.SetID(context.Background(), "Y")

	close(g.gate("Y"))
	<-doneY
	close(g.gate("X"))
	<-doneX

	v := m.View()
	if v.Status != fetchstate.Success {
		t.Fatalf("status = %v, want success", v.Status)
	}
	if v.Record.ID != "Y" || v.ID != "Y" {
		t.Errorf("displayed %q (view id %q), want Y", v.Record.ID, v.ID)
	}
}

func TestSetID_LoadingPlaceholder(t *testing.T) {
	t.Parallel()
	g := &gatedGetter{}
	m := New(g, nil)

	done := m.SetID(context.Background(), "X")
	if v := m.View(); !v.Loading() || v.Record != nil {
		t.Errorf("view = %+v, want loading without record", v)
	}
	close(g.gate("X"))
	<-done
}

func TestClose_InvokesCallback(t *testing.T) {
	t.Parallel()
	closed := 0
	m := New(&gatedGetter{}, func() { closed++ })
	m.Close()
	if closed != 1 {
		t.Errorf("close callback ran %d times, want 1", closed)
	}
}
