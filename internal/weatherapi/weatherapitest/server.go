// Package weatherapitest provides an in-memory stand-in for the weather
// backend for use in tests.
package weatherapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lox/weatherdesk/internal/models"
)

// Route names accepted by Override.
const (
	RouteHistory = "history"
	RouteGet     = "get"
	RouteSubmit  = "submit"
)

// Server mimics GET /history, GET /weather/{id} and POST /weather.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	records   map[string]models.WeatherRecord
	history   []models.HistoryEntry
	seen      map[string]bool
	overrides map[string]http.HandlerFunc
	requests  map[string]int
	headers   []http.Header
}

// NewServer starts a backend that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		records:   make(map[string]models.WeatherRecord),
		seen:      make(map[string]bool),
		overrides: make(map[string]http.HandlerFunc),
		requests:  make(map[string]int),
	}

	r := mux.NewRouter()
	r.HandleFunc("/history", s.route(RouteHistory, s.handleHistory)).Methods(http.MethodGet)
	r.HandleFunc("/weather/{id}", s.route(RouteGet, s.handleGet)).Methods(http.MethodGet)
	r.HandleFunc("/weather", s.route(RouteSubmit, s.handleSubmit)).Methods(http.MethodPost)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Add stores rec and appends it to the history, as a submission would.
func (s *Server) Add(rec models.WeatherRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
	s.history = append(s.history, models.HistoryEntry{City: rec.Location, ID: rec.ID})
}

// Override replaces the handler for a route.
func (s *Server) Override(route string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[route] = h
}

// Requests returns how many requests hit route.
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

// Headers returns the headers of every request received, in order.
func (s *Server) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

func (s *Server) route(name string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[name]++
		s.headers = append(s.headers, r.Header.Clone())
		override := s.overrides[name]
		s.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		h(w, r)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	history := append([]models.HistoryEntry{}, s.history...)
	s.mu.Unlock()
	WriteJSON(w, http.StatusOK, history)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	rec, ok := s.records[id]
	s.mu.Unlock()
	if !ok {
		WriteDetail(w, http.StatusNotFound, "Weather data not found")
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	location := strings.ToLower(strings.TrimSpace(req.Location))
	key := location + "_" + req.Date

	s.mu.Lock()
	if s.seen[key] {
		s.mu.Unlock()
		WriteDetail(w, http.StatusBadRequest, "This city has already been submitted for that date.")
		return
	}
	s.seen[key] = true
	s.mu.Unlock()

	rec := Record(uuid.NewString(), location)
	rec.Date = req.Date
	rec.Notes = req.Notes
	s.Add(rec)
	WriteJSON(w, http.StatusOK, models.SubmitResponse{ID: rec.ID})
}

// Record returns a fully populated record, optional fields included.
func Record(id, location string) models.WeatherRecord {
	feels, vis := 19.0, 10.0
	sunrise, sunset := "06:12 AM", "08:01 PM"
	return models.WeatherRecord{
		ID:       id,
		Date:     "2026-10-19",
		Location: location,
		Notes:    "clear morning",
		Weather: models.Weather{
			Temperature: 21,
			Description: []string{"Sunny", "Light breeze"},
			Humidity:    40,
			WindSpeed:   12,
			UVIndex:     6,
			Icon:        "https://cdn.example.com/icons/sunny.png",
			FeelsLike:   &feels,
			Visibility:  &vis,
			Sunrise:     &sunrise,
			Sunset:      &sunset,
			AirQuality:  map[string]any{"pm2_5": 4.0, "us-epa-index": 1.0},
		},
		Geo: &models.Geo{Lat: -36.794, Lon: 146.977, Timezone: "Australia/Melbourne"},
	}
}

// SparseRecord returns a record with every optional field left out.
func SparseRecord(id, location string) models.WeatherRecord {
	return models.WeatherRecord{
		ID:       id,
		Date:     "2026-10-19",
		Location: location,
		Weather: models.Weather{
			Temperature: 8.5,
			Description: []string{"Overcast"},
			Humidity:    91,
			WindSpeed:   4,
			UVIndex:     1,
			Icon:        "https://cdn.example.com/icons/overcast.png",
		},
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteDetail(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, map[string]string{"detail": detail})
}
