package watch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Status is the JSON payload served on /status.
type Status struct {
	StartedAt   time.Time `json:"started_at"`
	LastBuild   time.Time `json:"last_build,omitempty"`
	LastDeploy  time.Time `json:"last_deploy,omitempty"`
	Builds      int       `json:"builds"`
	Deploys     int       `json:"deploys"`
	LastOutcome string    `json:"last_outcome,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// StatusTracker records watch mode activity for the status endpoint.
type StatusTracker struct {
	mu     sync.Mutex
	status Status
}

// NewStatusTracker creates a tracker stamped with the current time.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{status: Status{StartedAt: time.Now()}}
}

// RecordBuild notes a completed rebuild.
func (t *StatusTracker) RecordBuild() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Builds++
	t.status.LastBuild = time.Now()
}

// RecordDeploy notes a deploy attempt and its outcome.
func (t *StatusTracker) RecordDeploy(outcome string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Deploys++
	t.status.LastDeploy = time.Now()
	t.status.LastOutcome = outcome
	if err != nil {
		t.status.LastError = err.Error()
	} else {
		t.status.LastError = ""
	}
}

// Snapshot returns a copy of the current status.
func (t *StatusTracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Server exposes /healthz, /status and /metrics while watch mode runs.
type Server struct {
	server  *http.Server
	tracker *StatusTracker
}

// NewServer builds the HTTP server. metricsHandler may be nil, in which
// case /metrics is not registered.
func NewServer(addr string, tracker *StatusTracker, metricsHandler http.Handler) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tracker.Snapshot())
	})

	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		tracker: tracker,
	}
}

// Start serves in a background goroutine.
func (s *Server) Start() {
	slog.Info("Starting status endpoint", "addr", s.server.Addr)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Status endpoint failed", "error", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("Stopping status endpoint")
	return s.server.Shutdown(ctx)
}
