package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/andygrunwald/fuel-prices/internal/models"
	"github.com/andygrunwald/fuel-prices/internal/prices"
)

// PriceService is the set of record operations the handlers need.
type PriceService interface {
	List(ctx context.Context) ([]models.PriceRecord, error)
	ListByFuelType(ctx context.Context, fuelType string) ([]models.PriceRecord, error)
	Get(ctx context.Context, id int64) (models.PriceRecord, error)
	Add(ctx context.Context, in prices.Input) (int64, error)
	Edit(ctx context.Context, id int64, in prices.Input) (models.PriceRecord, error)
	Delete(ctx context.Context, id int64) error
}

// ReportComputer builds the statistics report.
type ReportComputer interface {
	Compute(ctx context.Context) (models.Report, error)
}

// Dependencies are the collaborators of the HTTP server.
type Dependencies struct {
	Prices    PriceService
	Reports   ReportComputer
	Database  DatabaseChecker
	Scheduler SchedulerStatus
	Metrics   *Metrics
	Registry  *prometheus.Registry
	// Locale is a BCP 47 tag used to format numbers, e.g. "pt-BR".
	Locale string
}

// Server represents the HTTP server of the tracker.
type Server struct {
	server    *http.Server
	prices    PriceService
	reports   ReportComputer
	metrics   *Metrics
	templates *renderer
	logger    zerolog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(addr string, deps Dependencies, logger zerolog.Logger) (*Server, error) {
	templates, err := newRenderer(deps.Locale)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	if deps.Registry == nil {
		deps.Registry = NewRegistry()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(deps.Registry)
	}

	s := &Server{
		prices:    deps.Prices,
		reports:   deps.Reports,
		metrics:   deps.Metrics,
		templates: templates,
		logger:    logger.With().Str("component", "http").Logger(),
	}

	mux := http.NewServeMux()

	// HTML pages
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /tabela", s.handleTable)
	mux.HandleFunc("GET /estatisticas", s.handleStats)
	mux.HandleFunc("GET /api-docs", s.handleAPIDocs)
	mux.HandleFunc("GET /adicionar", s.handleAddForm)
	mux.HandleFunc("POST /adicionar", s.handleAdd)
	mux.HandleFunc("GET /editar/{id}", s.handleEditForm)
	mux.HandleFunc("POST /editar/{id}", s.handleEdit)
	mux.HandleFunc("POST /deletar/{id}", s.handleDelete)

	// JSON API
	mux.HandleFunc("GET /api/precos", s.handleAPIList)
	mux.HandleFunc("GET /api/precos/{id}", s.handleAPIGet)
	mux.HandleFunc("GET /api/precos/tipo/{tipo}", s.handleAPIByFuelType)
	mux.HandleFunc("GET /api/estatisticas", s.handleAPIStats)

	// Operations
	mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /status", NewStatusHandler(deps.Database, deps.Scheduler))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("writing health response")
		}
	})

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.instrument(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Metrics returns the Prometheus metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}
