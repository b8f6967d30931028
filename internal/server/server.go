// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"conversion-insight/internal/domain"
	"conversion-insight/internal/observability"
	"conversion-insight/internal/pipeline"
	"conversion-insight/internal/storage"
	"conversion-insight/internal/transfers"
)

// TransferFetcher retrieves transfer history when a request does not
// carry transfers inline.
type TransferFetcher interface {
	FetchOutbound(ctx context.Context, wallet string, params transfers.FetchParams) ([]domain.RawTransfer, error)
}

// Config holds server configuration.
type Config struct {
	Addr     string
	Log      zerolog.Logger
	Analyzer *pipeline.Analyzer
	Analyses storage.AnalysisStore
	// Archive, when set, persists the raw transfers each analysis consumed.
	Archive storage.TransferArchiveStore
	// Fetcher, when set, serves requests without inline transfers.
	Fetcher TransferFetcher
	Metrics *observability.Metrics
}

// Server is the HTTP front end.
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	analyzer *pipeline.Analyzer
	analyses storage.AnalysisStore
	archive  storage.TransferArchiveStore
	fetcher  TransferFetcher
	metrics  *observability.Metrics
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		analyzer: cfg.Analyzer,
		analyses: cfg.Analyses,
		archive:  cfg.Archive,
		fetcher:  cfg.Fetcher,
		metrics:  cfg.Metrics,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", observability.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Route("/analyses/{wallet}", func(r chi.Router) {
			r.Get("/", s.handleAnalysesByWallet)
			r.Get("/latest", s.handleLatestAnalysis)
		})
	})
}

// Start starts the HTTP server. Blocks until shutdown or listen failure.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// loggingMiddleware logs each request and records HTTP metrics.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")

		if s.metrics != nil {
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			s.metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
			s.metrics.HTTPRequestLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}
