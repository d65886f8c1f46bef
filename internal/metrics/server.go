// Package metrics exposes Prometheus collectors and the health endpoints.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server provides HTTP endpoints for health checks and metrics
type Server struct {
	Address string
	// Ready reports readiness; nil means always ready.
	Ready func() bool
}

// NewServer creates a new metrics server
func NewServer(address string, ready func() bool) *Server {
	return &Server{
		Address: address,
		Ready:   ready,
	}
}

// Handler returns the mux serving /healthz, /readyz and /metrics
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.LivenessHandler)
	mux.HandleFunc("/readyz", s.ReadinessHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", s.Address).Msg("Starting metrics server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("address", s.Address).Msg("Metrics server error")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("Shutting down metrics server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down metrics server: %w", err)
	}
	return nil
}

// LivenessHandler handles liveness probe requests
func (s *Server) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadinessHandler answers 200 once the catalog has been loaded
func (s *Server) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	if s.Ready != nil && !s.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
