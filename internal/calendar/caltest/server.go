// Package caltest provides a mock Google Calendar API server for testing.
// It implements the Events insert endpoint of the Calendar API v3 and can
// be scripted to fail with chosen HTTP statuses before succeeding.
package caltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"google.golang.org/api/calendar/v3"
)

// Server is a mock Google Calendar API server for testing.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	inserted []*calendar.Event
	failures []int
	requests int
	nextID   int
}

// NewServer creates a started mock server. Close it when done.
func NewServer() *Server {
	s := &Server{nextID: 1}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)

	s.Server = httptest.NewServer(mux)
	return s
}

// FailWith queues HTTP statuses to return, one per request, before the
// server starts succeeding again.
func (s *Server) FailWith(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, statuses...)
}

// Requests returns the number of insert requests received.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Inserted returns the events accepted so far.
func (s *Server) Inserted() []*calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*calendar.Event(nil), s.inserted...)
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.Contains(r.URL.Path, "/calendars/") || !strings.HasSuffix(r.URL.Path, "/events") {
		http.Error(w, "unsupported endpoint", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	s.requests++
	if len(s.failures) > 0 {
		status := s.failures[0]
		s.failures = s.failures[1:]
		s.mu.Unlock()
		writeAPIError(w, status)
		return
	}
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	var event calendar.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeAPIError(w, http.StatusBadRequest)
		return
	}

	event.Id = fmt.Sprintf("evt-%d", id)
	event.HtmlLink = fmt.Sprintf("https://www.google.com/calendar/event?eid=%d", id)
	event.Status = "confirmed"

	s.mu.Lock()
	s.inserted = append(s.inserted, &event)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(&event)
}

// writeAPIError renders an error in the shape the Google API client
// parses into a googleapi.Error with the matching status code.
func writeAPIError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": http.StatusText(status),
		},
	})
}
