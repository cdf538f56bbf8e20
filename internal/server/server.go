// Package server exposes the selectbox pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz            liveness and version
//	POST /v1/selectbox       build a selectbox from inline items
//	GET  /v1/sql             build a selectbox from the configured SQL table
//	GET  /v1/query           show the SELECT statement for a table
//	GET  /metrics            Prometheus metrics, when a gatherer is set
//
// Every response carries an X-Request-ID header, taken from the request when
// present. Errors are JSON [ErrorResponse] bodies whose status follows the
// error code, see errors.HTTPStatus.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/selecttree/pkg/config"
	"github.com/matzehuels/selecttree/pkg/pipeline"
	"github.com/matzehuels/selecttree/pkg/source"
	"github.com/matzehuels/selecttree/pkg/tree"
)

const shutdownTimeout = 10 * time.Second

// Options configures a [Server].
type Options struct {
	Runner *pipeline.Runner
	Logger *log.Logger
	Config config.Config

	// Normalizer is applied to names when a request sets "translate".
	Normalizer    tree.NameTransform
	NormalizerKey string

	// SQL backs GET /v1/sql. The route answers 404 when it is nil.
	SQL *source.SQL

	// Gatherer backs GET /metrics. The route is not mounted when it is nil.
	Gatherer prometheus.Gatherer
}

// Server handles selectbox requests. It is safe for concurrent use.
type Server struct {
	runner        *pipeline.Runner
	logger        *log.Logger
	cfg           config.Config
	normalizer    tree.NameTransform
	normalizerKey string
	sql           *source.SQL
	gatherer      prometheus.Gatherer
}

// New creates a server. A nil Runner gets an uncached runner.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	cfg := opts.Config
	cfg.SetDefaults()
	return &Server{
		runner:        runner,
		logger:        logger,
		cfg:           cfg,
		normalizer:    opts.Normalizer,
		normalizerKey: opts.NormalizerKey,
		sql:           opts.SQL,
		gatherer:      opts.Gatherer,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/selectbox", s.handleSelectbox)
		r.Get("/sql", s.handleSQL)
		r.Get("/query", s.handleQuery)
	})
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, notFound(r))
	})
	return r
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
