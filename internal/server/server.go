// Package server provides the HTTP API for outline extraction, collection analysis, and section search.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jonathan/outline-ranker/internal/pipeline"
	"github.com/jonathan/outline-ranker/internal/store"
	"github.com/jonathan/outline-ranker/internal/types"
)

// ReaderExtractor turns an uploaded PDF into a document
type ReaderExtractor interface {
	ExtractReader(ctx context.Context, id string, r io.ReaderAt, size int64) (*types.Document, error)
}

// Config holds server configuration
type Config struct {
	Addr          string
	MaxUploadMB   int
	MaxConcurrent int
	Timeout       time.Duration
	InputName     string
	PDFDir        string
	// CollectionsRoot confines the collection directories /v1/analyze may read
	CollectionsRoot string
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     chi.Router
	pipeline   *pipeline.Pipeline
	extractor  ReaderExtractor
	db         *store.DB
	cfg        Config
	log        *slog.Logger
}

// New creates a new server. db may be nil, in which case search is unavailable.
func New(cfg Config, p *pipeline.Pipeline, extractor ReaderExtractor, db *store.DB, log *slog.Logger) *Server {
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 50
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.CollectionsRoot == "" {
		cfg.CollectionsRoot = "."
	}
	if cfg.InputName == "" {
		cfg.InputName = "collection_input.json"
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		pipeline:  p,
		extractor: extractor,
		db:        db,
		cfg:       cfg,
		log:       log,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.withLogging)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.Timeout))
		r.Use(middleware.Throttle(s.cfg.MaxConcurrent))

		r.Post("/outline", s.handleOutline)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/sections", s.handleSearchSections)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	s.router = r
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("server stopped")
	return nil
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
			"remote", r.RemoteAddr,
		)
	})
}
