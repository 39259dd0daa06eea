package timeline

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddEventAndSnapshotIsolation(t *testing.T) {
	s := NewStore()
	s.AddEvent("s1", "Router", "intent", "summarize", "10ms")
	s.AddEvent("s1", "Summarizer", "reply", "summary", "5ms")

	snap := s.snapshot()
	require.Len(t, snap["s1"], 2)

	snap["s1"][0].Message = "hacked"
	again, ok := s.Events("s1")
	require.True(t, ok)
	assert.Equal(t, "summarize", again[0].Message)
}

func TestStore_DropsOldestBeyondLimit(t *testing.T) {
	s := NewStore()
	s.maxEvents = 3
	for i := 0; i < 5; i++ {
		s.AddEvent("s1", "Engine", "message", fmt.Sprint(i), "")
	}
	evs, _ := s.Events("s1")
	require.Len(t, evs, 3)
	assert.Equal(t, "2", evs[0].Message)
	assert.Equal(t, "4", evs[2].Message)
}

func TestStore_IgnoresEmptySessionID(t *testing.T) {
	s := NewStore()
	s.AddEvent("", "Engine", "reply", "no transcript", "")

	_, ok := s.Events("")
	assert.False(t, ok)
	assert.Empty(t, s.snapshot())
}

func TestStore_EvictsIdlestSessionBeyondLimit(t *testing.T) {
	s := NewStore()
	s.maxSessions = 2

	s.AddEvent("a", "Engine", "message", "1", "")
	time.Sleep(time.Millisecond)
	s.AddEvent("b", "Engine", "message", "2", "")
	time.Sleep(time.Millisecond)
	s.AddEvent("a", "Engine", "message", "3", "")
	time.Sleep(time.Millisecond)
	s.AddEvent("c", "Engine", "message", "4", "")

	snap := s.snapshot()
	assert.Len(t, snap, 2)
	assert.Contains(t, snap, "a")
	assert.Contains(t, snap, "c")
	assert.NotContains(t, snap, "b")
}

func TestHandleIndex_OrdersByLastEvent(t *testing.T) {
	s := NewStore()
	s.AddEvent("a", "Engine", "message", "first", "")
	time.Sleep(5 * time.Millisecond)
	s.AddEvent("b", "Engine", "message", "second", "")

	w := httptest.NewRecorder()
	s.HandleIndex(w, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var rows []struct {
		SessionID string `json:"session_id"`
		Count     int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "b", rows[0].SessionID)
	assert.Equal(t, "a", rows[1].SessionID)
}

func TestHandleSession(t *testing.T) {
	s := NewStore()
	s.AddEvent("s1", "QA", "reply", "Bob", "1ms")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sessions/{id}/events", s.HandleSession)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/s1/events", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		SessionID string  `json:"session_id"`
		Events    []Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "s1", body.SessionID)
	require.Len(t, body.Events, 1)
	assert.Equal(t, "QA", body.Events[0].Component)

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/nope/events", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
