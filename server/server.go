// Package server serves the chinook GraphQL executor over HTTP.
//
//	POST /query     {"query": "...", "operationName": "...", "variables": {...}}
//	GET  /query     ?query=...&operationName=...&variables=...
//	GET  /health    storage ping
//	GET  /metrics   prometheus exposition, when metrics are configured
//
// Responses are JSON unless the Accept header asks for application/msgpack.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/syssam/chinook/graph"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MetricsSource is implemented by collectors that can be scraped and that
// observe served requests.
type MetricsSource interface {
	RequestObserver
	Handler() http.Handler
}

// Server is the HTTP front of an Executor.
type Server struct {
	router          *gin.Engine
	exec            *graph.Executor
	store           Pinger
	metrics         MetricsSource
	log             *slog.Logger
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	healthTimeout   time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// WithMetrics exposes m on /metrics and feeds it every request.
func WithMetrics(m MetricsSource) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithTimeouts sets the HTTP read and write timeouts and how long shutdown
// waits for in-flight requests. Zero keeps the current value.
func WithTimeouts(read, write, shutdown time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
		if shutdown > 0 {
			s.shutdownTimeout = shutdown
		}
	}
}

// New returns a Server executing requests with exec. store backs /health.
func New(exec *graph.Executor, store Pinger, opts ...Option) *Server {
	s := &Server{
		exec:            exec,
		store:           store,
		log:             slog.Default(),
		readTimeout:     10 * time.Second,
		writeTimeout:    30 * time.Second,
		shutdownTimeout: 10 * time.Second,
		healthTimeout:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	router := gin.New()
	router.Use(RequestID(), AccessLog(s.log, s.metrics), Recovery(s.log))
	s.router = router
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.POST("/query", s.handleQuery())
	s.router.GET("/query", s.handleQuery())
	s.router.GET("/health", s.handleHealth())
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Run listens on addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully, letting
// in-flight requests finish within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: s.readTimeout,
		WriteTimeout:      s.writeTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.log.InfoContext(ctx, "server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: serve: %w", err)
	case <-ctx.Done():
	}

	s.log.InfoContext(ctx, "server shutting down", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
