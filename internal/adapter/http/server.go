package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/hechos-map-service/internal/domain"
	"github.com/couchcryptid/hechos-map-service/internal/view"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the session state the API reads and filters.
type Store interface {
	sharedobs.ReadinessChecker
	Apply(f domain.Filters) []domain.Event
	Clear() []domain.Event
	Categories() []string
	Lookup(id string) (domain.Event, bool)
	Snapshot() domain.Snapshot
	Filters() domain.Filters
}

// Server exposes the hechos API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	store      Store
	renderer   view.Renderer
	dates      domain.DateNormalizer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API and operational routes.
// Query-string dates are read with dates.
func NewServer(addr string, store Store, renderer view.Renderer, dates domain.DateNormalizer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:    store,
		renderer: renderer,
		dates:    dates,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(store))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/hechos", s.handleHechos)
	mux.HandleFunc("GET /api/hechos/{id}", s.handleHecho)
	mux.HandleFunc("GET /api/categorias", s.handleCategorias)
	mux.HandleFunc("GET /api/mapa", s.handleMapa)
	mux.HandleFunc("POST /api/filtros/limpiar", s.handleLimpiar)
	mux.HandleFunc("GET /api/estado", s.handleEstado)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
