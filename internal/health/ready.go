package health

import (
	"context"
	"net/http"
	"time"

	"github.com/ccastromar/meetbot/internal/logx"
	"github.com/ccastromar/meetbot/internal/runtime"
)

const readyTimeout = 3 * time.Second

// ReadyHandler reports 503 until prompts are loaded and both the LLM and the
// session store answer a ping.
func ReadyHandler(rt *runtime.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rt.PromptsLoaded {
			http.Error(w, "prompts not loaded", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if rt.LLMClient == nil {
			http.Error(w, "llm not configured", http.StatusServiceUnavailable)
			return
		}
		if err := rt.LLMClient.Ping(ctx); err != nil {
			logx.Warn("HTTP", "ready: llm ping failed: %v", err)
			http.Error(w, "llm unreachable", http.StatusServiceUnavailable)
			return
		}

		if rt.Store != nil {
			if err := rt.Store.Ping(ctx); err != nil {
				logx.Warn("HTTP", "ready: store ping failed: %v", err)
				http.Error(w, "session store unreachable", http.StatusServiceUnavailable)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}
}
