package timeline

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// DefaultMaxEvents bounds the events kept per session; older ones are dropped.
const DefaultMaxEvents = 200

// DefaultMaxSessions bounds the sessions tracked; the one idle longest is
// dropped first.
const DefaultMaxSessions = 1000

type Event struct {
	Time      time.Time `json:"time"`
	Component string    `json:"component"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Duration  string    `json:"duration,omitempty"`
}

// Store keeps the pipeline events of every session in memory.
type Store struct {
	mu          sync.RWMutex
	maxEvents   int
	maxSessions int
	sessions    map[string][]Event
}

func NewStore() *Store {
	return &Store{
		maxEvents:   DefaultMaxEvents,
		maxSessions: DefaultMaxSessions,
		sessions:    make(map[string][]Event),
	}
}

// AddEvent records an event for a session. Events without a session id are
// not kept.
func (s *Store) AddEvent(sessionID, component, kind, msg, duration string) {
	if sessionID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok && len(s.sessions) >= s.maxSessions {
		s.evictIdlest()
	}

	ev := Event{
		Time:      time.Now(),
		Component: component,
		Kind:      kind,
		Message:   msg,
		Duration:  duration,
	}
	evs := append(s.sessions[sessionID], ev)
	if len(evs) > s.maxEvents {
		evs = evs[len(evs)-s.maxEvents:]
	}
	s.sessions[sessionID] = evs
}

// evictIdlest drops the session whose last event is oldest. Callers hold mu.
func (s *Store) evictIdlest() {
	var (
		victim string
		oldest time.Time
		found  bool
	)
	for id, evs := range s.sessions {
		last := evs[len(evs)-1].Time
		if !found || last.Before(oldest) {
			victim, oldest, found = id, last, true
		}
	}
	if found {
		delete(s.sessions, victim)
	}
}

// Events returns a copy of a session's events, oldest first.
func (s *Store) Events(sessionID string) ([]Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evs, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	out := make([]Event, len(evs))
	copy(out, evs)
	return out, true
}

func (s *Store) snapshot() map[string][]Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]Event, len(s.sessions))
	for k, v := range s.sessions {
		cp := make([]Event, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// HandleIndex lists sessions with their latest event, most recent first.
func (s *Store) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data := s.snapshot()

	type row struct {
		SessionID string `json:"session_id"`
		LastEvent Event  `json:"last_event"`
		Count     int    `json:"count"`
	}

	rows := make([]row, 0, len(data))
	for id, evs := range data {
		if len(evs) == 0 {
			continue
		}
		rows = append(rows, row{
			SessionID: id,
			LastEvent: evs[len(evs)-1],
			Count:     len(evs),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].LastEvent.Time.After(rows[j].LastEvent.Time)
	})

	writeJSON(w, http.StatusOK, rows)
}

// HandleSession serves GET /sessions/{id}/events.
func (s *Store) HandleSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}

	events, ok := s.Events(id)
	if !ok {
		http.Error(w, "no events for session", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		SessionID string  `json:"session_id"`
		Events    []Event `json:"events"`
	}{
		SessionID: id,
		Events:    events,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
