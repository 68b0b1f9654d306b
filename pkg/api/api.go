// Package api exposes a placed garden over HTTP. The server carries the
// latest layout and run status in memory; the CLI feeds it either a saved
// layout file or live planner progress via the search hooks adapter.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/verdantlabs/verdant/pkg/layout"
)

// Run states reported by /api/status.
const (
	StateIdle     = "idle"
	StatePlanning = "planning"
	StateDone     = "done"
)

// Status is the live view of the current or last planning run.
type Status struct {
	State   string  `json:"state"`
	Phase   string  `json:"phase,omitempty"`
	Placed  int     `json:"placed"`
	Score   float64 `json:"score"`
	Elapsed float64 `json:"elapsed_seconds"`
}

// Server holds the shared layout and status state behind an HTTP API.
type Server struct {
	mu     sync.RWMutex
	layout *layout.Layout
	status Status
	start  time.Time
	log    *log.Logger
}

// NewServer creates a server with an idle status and no layout.
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{
		status: Status{State: StateIdle},
		log:    logger,
	}
}

// SetLayout publishes a layout and marks the run done.
func (s *Server) SetLayout(l *layout.Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = l
	s.status.State = StateDone
	if l != nil {
		s.status.Placed = len(l.Plants)
		s.status.Score = l.Projected
		s.status.Elapsed = l.Elapsed
	}
}

// SetStatus replaces the status wholesale.
func (s *Server) SetStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)
		r.Get("/status", s.handleStatus)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	l := s.layout
	s.mu.RUnlock()

	if l == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no layout available"})
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	st := s.status
	if st.State == StatePlanning && !s.start.IsZero() {
		st.Elapsed = time.Since(s.start).Seconds()
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, st)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
