// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-biovault.
//
// go-biovault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package rest exposes the vault service over HTTP. Every gated endpoint
// waits on the same system-wide prompt lock as every other caller, so the
// server's write timeout must leave room for a user interacting with the
// prompt.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeremyhahn/go-biovault/pkg/logging"
	"github.com/jeremyhahn/go-biovault/pkg/ratelimit"
	"github.com/jeremyhahn/go-biovault/pkg/vault"
)

// Server represents the REST API server.
type Server struct {
	server   *http.Server
	handlers *HandlerContext
	limiter  *ratelimit.Limiter
	addr     string
	logger   *logging.Logger

	metricsEnabled bool
	metricsPath    string
	healthPath     string
}

// Config holds the REST server configuration.
type Config struct {
	// Host is the listen address (default: localhost)
	Host string

	// Port is the HTTP port to listen on (default: 8443)
	Port int

	// Service is the vault service. Required.
	Service *vault.Service

	// Version is the API version string
	Version string

	// Limiter rate limits API requests (optional)
	Limiter *ratelimit.Limiter

	// Logger receives server diagnostics (optional)
	Logger *logging.Logger

	// MetricsEnabled exposes the Prometheus endpoint
	MetricsEnabled bool

	// MetricsPath is the metrics endpoint path (default: /metrics)
	MetricsPath string

	// HealthPath is the health endpoint path (default: /health)
	HealthPath string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes.
	// Must cover the longest expected prompt interaction.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration
}

// NewServer creates a new REST API server.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Service == nil {
		return nil, fmt.Errorf("vault service is required")
	}

	// Set defaults
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 8443
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 120 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.HealthPath == "" {
		cfg.HealthPath = "/health"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	server := &Server{
		handlers:       NewHandlerContext(cfg.Service, cfg.Version),
		limiter:        cfg.Limiter,
		addr:           fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		logger:         logger,
		metricsEnabled: cfg.MetricsEnabled,
		metricsPath:    cfg.MetricsPath,
		healthPath:     cfg.HealthPath,
	}

	router := server.setupRouter()

	server.server = &http.Server{
		Addr:         server.addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return server, nil
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(s.RecoveryMiddleware())
	r.Use(s.CorrelationMiddleware()) // Add correlation ID before logging
	r.Use(s.LoggingMiddleware())
	r.Use(MetricsMiddleware)
	r.Use(CORSMiddleware)

	// Health endpoint (no rate limiting)
	r.Get(s.healthPath, s.handlers.HealthHandler)
	r.Head(s.healthPath, s.handlers.HealthHandler)

	if s.metricsEnabled {
		r.Handle(s.metricsPath, promhttp.Handler())
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(ratelimit.Middleware(s.limiter))
		}

		r.Get("/status", s.handlers.StatusHandler)
		r.Post("/authenticate", s.handlers.AuthenticateHandler)

		// Secret endpoints
		r.Get("/data/{domain}", s.handlers.ListDataHandler)
		r.Get("/data/{domain}/{name}", s.handlers.GetDataHandler)
		r.Get("/data/{domain}/{name}/exists", s.handlers.HasDataHandler)
		r.Put("/data/{domain}/{name}", s.handlers.SetDataHandler)
		r.Delete("/data/{domain}/{name}", s.handlers.RemoveDataHandler)
	})

	return r
}

// Handler returns the configured HTTP handler, for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start starts the REST API server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the REST API server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Errorf("failed to shutdown server: %v", err)
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
