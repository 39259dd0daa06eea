package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccastromar/meetbot/internal/llm"
	"github.com/ccastromar/meetbot/internal/runtime"
	"github.com/ccastromar/meetbot/internal/session"
)

type fakeLLM struct{ pingErr error }

func (f *fakeLLM) Ping(context.Context) error { return f.pingErr }
func (f *fakeLLM) Chat(context.Context, string, float64) (string, error) {
	return "", nil
}

var _ llm.LLMClient = (*fakeLLM)(nil)

type downStore struct{ *session.MemoryStore }

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func serveReady(rt *runtime.Runtime) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ReadyHandler(rt)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	return w
}

func TestLiveHandler_OK(t *testing.T) {
	w := httptest.NewRecorder()
	LiveHandler(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStatusHandler(t *testing.T) {
	w := httptest.NewRecorder()
	StatusHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Meeting Bot API is running", body["message"])
}

func TestReadyHandler_PromptsNotLoaded(t *testing.T) {
	w := serveReady(&runtime.Runtime{PromptsLoaded: false, LLMClient: &fakeLLM{}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyHandler_NoLLM(t *testing.T) {
	w := serveReady(&runtime.Runtime{PromptsLoaded: true})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReadyHandler_LLMUnreachable(t *testing.T) {
	w := serveReady(&runtime.Runtime{PromptsLoaded: true, LLMClient: &fakeLLM{pingErr: errors.New("down")}})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "llm unreachable")
}

func TestReadyHandler_StoreUnreachable(t *testing.T) {
	w := serveReady(&runtime.Runtime{
		PromptsLoaded: true,
		LLMClient:     &fakeLLM{},
		Store:         downStore{session.NewMemoryStore()},
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "session store unreachable")
}

func TestReadyHandler_OK(t *testing.T) {
	w := serveReady(&runtime.Runtime{
		PromptsLoaded: true,
		LLMClient:     &fakeLLM{},
		Store:         session.NewMemoryStore(),
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
}
