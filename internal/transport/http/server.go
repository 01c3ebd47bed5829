package http

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/fleshka4/cpamm/internal/config"
	"github.com/fleshka4/cpamm/internal/service"
)

// Server represents the HTTP transport layer.
type Server struct {
	svc    service.Service
	mux    *http.ServeMux
	logger *zap.Logger

	graceTimeout      time.Duration
	readHeaderTimeout time.Duration
	requestTimeout    time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler exposes h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		if h != nil {
			s.mux.Handle("GET /metrics", h)
		}
	}
}

// NewServer creates a new HTTP server with registered routes.
func NewServer(svc service.Service, cfg config.Config, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		mux:    http.NewServeMux(),
		logger: zap.NewNop(),

		graceTimeout:      cfg.GraceTimeout,
		readHeaderTimeout: cfg.ReadHeaderTimeout,
		requestTimeout:    cfg.RequestTimeout,
	}

	s.mux.HandleFunc("GET /ping", s.handlePing)
	s.mux.HandleFunc("GET /pools", s.handleListPools)
	s.mux.HandleFunc("POST /pools", s.handleCreatePool)
	s.mux.HandleFunc("GET /pools/{id}", s.handleGetPool)
	s.mux.HandleFunc("GET /pools/{id}/quote", s.handleQuote)
	s.mux.HandleFunc("POST /pools/{id}/add-liquidity", s.handleAddLiquidity)
	s.mux.HandleFunc("POST /pools/{id}/remove-liquidity", s.handleRemoveLiquidity)
	s.mux.HandleFunc("POST /pools/{id}/swap", s.handleSwap)
	s.mux.HandleFunc("GET /pools/{id}/lp/{holder}", s.handleLPBalance)

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.logMiddleware(s.mux)
}

// Run serves HTTP on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, "srv.ListenAndServe")
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.graceTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "srv.Shutdown")
	}
	s.logger.Info("server stopped gracefully")
	return nil
}

// logMiddleware logs each HTTP request, its status and the time taken to
// process it.
func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
