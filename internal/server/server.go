// Package server exposes the inventory backend over JSON/HTTP: site listing,
// full room snapshots, and the authoritative move endpoint, plus health and
// metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"relocator/internal/infra/storage"
)

// Config holds server dependencies.
type Config struct {
	Port   int
	Sites  storage.SiteRepository
	Rooms  storage.RoomRepository
	Items  storage.ItemRepository
	Health func(ctx context.Context) error // optional backing-store check
	Logger *slog.Logger
}

// Server serves the inventory API.
type Server struct {
	cfg    Config
	log    *slog.Logger
	server *http.Server
}

// New creates a new inventory API server.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{
		cfg: cfg,
		log: cfg.Logger,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: mux,
		},
	}

	mux.HandleFunc("GET /api/sites", s.handleSites)
	mux.HandleFunc("GET /api/sites/{site}/rooms", s.handleRooms)
	mux.HandleFunc("POST /api/sites/{site}/moves", s.handleMove)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Handler returns the underlying handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if s.cfg.Health != nil {
		if err := s.cfg.Health(r.Context()); err != nil {
			status = "critical"
			code = http.StatusServiceUnavailable
			s.log.Warn("health check failed", "error", err)
		}
	}
	writeJSON(w, code, map[string]string{"status": status})
}
