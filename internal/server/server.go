// Package server exposes the workflows and the standalone evaluators over
// HTTP with JSON request and response bodies.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/abhisek/mathsim/internal/improvement"
	"github.com/abhisek/mathsim/internal/workflow"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// Improvement serves /improvement-analysis. Nil disables the route.
	Improvement *improvement.Chain
	// Metrics serves /metrics. Nil disables the route.
	Metrics http.Handler
	Logger  zerolog.Logger
}

// Server routes HTTP requests to the orchestrator and evaluators.
type Server struct {
	orch        *workflow.Orchestrator
	improvement *improvement.Chain
	metrics     http.Handler
	logger      zerolog.Logger
	mux         *http.ServeMux
}

// New creates a Server with all routes registered.
func New(orch *workflow.Orchestrator, opts Options) *Server {
	s := &Server{
		orch:        orch,
		improvement: opts.Improvement,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}

	s.mux.HandleFunc("POST /full-workflow", s.handleFull)
	s.mux.HandleFunc("POST /generate-problem", s.handleGenerateProblem)
	s.mux.HandleFunc("POST /analysis", s.handleAnalysis)
	s.mux.HandleFunc("POST /workflow", s.handleWorkflow)
	s.mux.HandleFunc("POST /session", s.handleSession)

	for _, path := range []string{"/validate-consistency", "/validate_consistency"} {
		s.mux.HandleFunc("POST "+path, s.handleConsistency)
	}
	for _, path := range []string{"/adaptive-difficulty", "/adaptive_difficulty"} {
		s.mux.HandleFunc("POST "+path, s.handleAdaptive)
	}
	if s.improvement != nil {
		for _, path := range []string{"/improvement-analysis", "/improvement_analysis"} {
			s.mux.HandleFunc("POST "+path, s.handleImprovement)
		}
	}
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ListenAndServe serves on addr until ctx is canceled, then drains
// in-flight requests for up to shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(s.logger.WithContext(r.Context()))

		next.ServeHTTP(rec, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
