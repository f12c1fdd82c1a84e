package history

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/lox/weatherdesk/internal/fetchstate"
	"github.com/lox/weatherdesk/internal/models"
	"github.com/lox/weatherdesk/internal/weatherapi"
	"github.com/lox/weatherdesk/internal/weatherapi/weatherapitest"
)

func TestNewest(t *testing.T) {
	t.Parallel()
	in := []models.HistoryEntry{{City: "A", ID: "1"}, {City: "B", ID: "2"}, {City: "C", ID: "3"}}

	got := Newest(in)
	want := []models.HistoryEntry{{City: "C", ID: "3"}, {City: "B", ID: "2"}, {City: "A", ID: "1"}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if in[0].City != "A" {
		t.Error("Newest modified its input")
	}
	if out := Newest(nil); out == nil || len(out) != 0 {
		t.Errorf("Newest(nil) = %#v, want empty non-nil", out)
	}
}

func TestLoad_ReversesServerOrder(t *testing.T) {
	t.Parallel()
	srv := weatherapitest.NewServer(t)
	srv.Add(weatherapitest.Record("1", "A"))
	srv.Add(weatherapitest.Record("2", "B"))
	srv.Add(weatherapitest.Record("3", "C"))

	m := New(weatherapi.NewClient(srv.URL), nil, nil)
	st := m.Load(context.Background())
	if st.Status != fetchstate.Success {
		t.Fatalf("status = %v (%s), want success", st.Status, st.Message)
	}

	var got []string
	for _, e := range m.Entries() {
		got = append(got, e.City+e.ID)
	}
	if strings.Join(got, ",") != "C3,B2,A1" {
		t.Errorf("entries = %v, want [C3 B2 A1]", got)
	}
}

func TestLoad_Empty(t *testing.T) {
	t.Parallel()
	srv := weatherapitest.NewServer(t)

	m := New(weatherapi.NewClient(srv.URL), nil, nil)
	m.Load(context.Background())
	if !m.Empty() {
		t.Error("expected Empty() after loading no entries")
	}
}

func TestLoad_FailureShowsFixedMessageAndLogsCause(t *testing.T) {
	t.Parallel()
	srv := weatherapitest.NewServer(t)
	srv.Override(weatherapitest.RouteHistory, func(w http.ResponseWriter, r *http.Request) {
		weatherapitest.WriteDetail(w, http.StatusInternalServerError, "database on fire")
	})

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	m := New(weatherapi.NewClient(srv.URL), logger, nil)
	st := m.Load(context.Background())

	if st.Status != fetchstate.Failed {
		t.Fatalf("status = %v, want error", st.Status)
	}
	if st.Message != LoadErrorMessage {
		t.Errorf("Message = %q, want %q", st.Message, LoadErrorMessage)
	}
	if !strings.Contains(logs.String(), "database on fire") {
		t.Errorf("logs = %q, want underlying error", logs.String())
	}
	if m.Entries() != nil {
		t.Error("failed load must not expose entries")
	}
}

func TestSelect_InvokesCallback(t *testing.T) {
	t.Parallel()
	srv := weatherapitest.NewServer(t)
	srv.Add(weatherapitest.Record("1", "A"))
	srv.Add(weatherapitest.Record("2", "B"))

	var picked []models.HistoryEntry
	m := New(weatherapi.NewClient(srv.URL), nil, func(e models.HistoryEntry) {
		picked = append(picked, e)
	})
	m.Load(context.Background())

	if !m.Select(0) {
		t.Fatal("Select(0) = false")
	}
	if !m.SelectID("1") {
		t.Fatal("SelectID(1) = false")
	}
	if m.Select(5) || m.SelectID("nope") {
		t.Error("out-of-range selection reported success")
	}

	want := []models.HistoryEntry{{City: "B", ID: "2"}, {City: "A", ID: "1"}}
	if len(picked) != len(want) {
		t.Fatalf("picked = %v, want %v", picked, want)
	}
	for i := range want {
		if picked[i] != want[i] {
			t.Errorf("picked[%d] = %+v, want %+v", i, picked[i], want[i])
		}
	}
}

func TestReload_SeesNewEntries(t *testing.T) {
	t.Parallel()
	srv := weatherapitest.NewServer(t)
	srv.Add(weatherapitest.Record("1", "A"))

	m := New(weatherapi.NewClient(srv.URL), nil, nil)
	m.Load(context.Background())

	srv.Add(weatherapitest.Record("2", "B"))
	<-m.Reload(context.Background())

	entries := m.Entries()
	if len(entries) != 2 || entries[0].ID != "2" {
		t.Errorf("entries = %+v, want newest B first", entries)
	}
}
