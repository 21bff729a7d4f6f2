// Package server implements the ocifkit HTTP API.
//
// Routes:
//
//	GET  /healthz             liveness and build version
//	POST /v1/validate         validation report for the request body
//	POST /v1/export/{format}  artifact for the request body
//
// Export accepts the query parameters connector, engine, pinned, labels,
// scale and refresh, which override the configured defaults.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	ocerrors "github.com/ocifkit/ocifkit/pkg/errors"
	ocio "github.com/ocifkit/ocifkit/pkg/io"
	"github.com/ocifkit/ocifkit/pkg/pipeline"
)

const (
	defaultAddr            = ":8080"
	defaultShutdownTimeout = 10 * time.Second
	requestTimeout         = 60 * time.Second
)

// Config holds configuration for the API server.
type Config struct {
	Addr            string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	Runner          *pipeline.Runner
	// Defaults are the pipeline options requests start from.
	Defaults pipeline.Options
	Logger   *log.Logger
}

// Server is the HTTP API server.
type Server struct {
	addr            string
	maxBodyBytes    int64
	shutdownTimeout time.Duration
	runner          *pipeline.Runner
	defaults        pipeline.Options
	logger          *log.Logger
}

// New creates a server. Zero config fields take their defaults.
func New(cfg Config) *Server {
	s := &Server{
		addr:            cfg.Addr,
		maxBodyBytes:    cfg.MaxBodyBytes,
		shutdownTimeout: cfg.ShutdownTimeout,
		runner:          cfg.Runner,
		defaults:        cfg.Defaults,
		logger:          cfg.Logger,
	}
	if s.addr == "" {
		s.addr = defaultAddr
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = ocio.MaxDocumentSize
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = defaultShutdownTimeout
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		requestID,
		middleware.RealIP,
		s.logRequests,
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/export/{format}", s.handleExport)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, string(ocerrors.ErrCodeNotFound), "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting API server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
