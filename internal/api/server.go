// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api exposes the optional status listener: liveness, run progress
// and Prometheus metrics. It is off unless a listen address is configured.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/demark/internal/log"
	"github.com/ManuGH/demark/internal/pipeline"
)

// Status is the payload served on /status.
type Status struct {
	State    string            `json:"state"`
	Input    string            `json:"input,omitempty"`
	Output   string            `json:"output,omitempty"`
	Progress pipeline.Snapshot `json:"progress"`
}

// StatusFunc supplies the current run state on demand.
type StatusFunc func() Status

// Server is the status HTTP listener.
type Server struct {
	httpServer *http.Server
}

// New builds a server bound to addr serving /healthz, /status and /metrics.
func New(addr string, status StatusFunc) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status()); err != nil {
			logger := log.WithComponent("api")
			logger.Error().Err(err).Msg("encode status response")
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run serves until ctx is canceled, then shuts down gracefully. A nil
// return means the listener closed cleanly.
func (s *Server) Run(ctx context.Context) error {
	logger := log.WithComponent("api")

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.httpServer.Addr).Msg("status listener started")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
