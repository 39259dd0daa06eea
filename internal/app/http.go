package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/cors"

	"github.com/ccastromar/meetbot/internal/config"
	"github.com/ccastromar/meetbot/internal/health"
	"github.com/ccastromar/meetbot/internal/logx"
	"github.com/ccastromar/meetbot/internal/metrics"
	"github.com/ccastromar/meetbot/internal/runtime"
	"github.com/ccastromar/meetbot/internal/timeline"
)

type HTTPServer struct {
	srv *http.Server
}

// portOverride wins over PORT when set, e.g. by the serve --port flag.
var portOverride string

// SetHTTPPort overrides the configured port before the app is built.
func SetHTTPPort(p string) {
	if p == "" {
		return
	}
	portOverride = p
}

func NewHTTPServer(env *config.EnvVars, h *handlers, tl *timeline.Store, rt *runtime.Runtime) *HTTPServer {
	mux := http.NewServeMux()

	h.register(mux)
	mux.HandleFunc("GET /sessions", tl.HandleIndex)
	mux.HandleFunc("GET /sessions/{id}/events", tl.HandleSession)
	mux.HandleFunc("GET /health", health.StatusHandler)
	mux.HandleFunc("GET /health/live", health.LiveHandler)
	mux.HandleFunc("GET /health/ready", health.ReadyHandler(rt))
	mux.HandleFunc("GET /metrics", metrics.ServeHTTP)

	hardened := secureMiddleware(mux)
	withCORS := cors.Handler(cors.Options{
		AllowedOrigins: env.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	})(hardened)

	port := strconv.Itoa(env.Port)
	if portOverride != "" {
		port = portOverride
	}

	readTimeout := env.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	// Long summaries chain several LLM calls inside one request.
	writeTimeout := env.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 120 * time.Second
	}

	return &HTTPServer{
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           metricsMiddleware(withCORS),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20, // 1MB
		},
	}
}

func (h *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logx.Info("HTTP", "listening on %s", h.srv.Addr)
		errCh <- h.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logx.Info("HTTP", "shutting down server...")
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return h.srv.Shutdown(shutCtx)
	}
}

// secureMiddleware adds basic hardening to HTTP server:
// - Common security headers
// - Body size limit
// - Block TRACE method
func secureMiddleware(next http.Handler) http.Handler {
	const maxBody = 1 << 20 // 1MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodTrace {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-XSS-Protection", "0")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware counts requests by route pattern, not raw path, so
// session ids do not blow up label cardinality.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		lbls := map[string]string{
			"method": r.Method,
			"path":   path,
			"status": strconv.Itoa(rec.status),
		}
		metrics.HTTPRequests.Inc(lbls)
		metrics.HTTPDuration.Observe(lbls, time.Since(start).Seconds())
	})
}
