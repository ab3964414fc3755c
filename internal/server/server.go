// Package server exposes the resolution engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Konsultn-Engineering/valueset/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// HealthFunc reports whether the backing database is reachable.
type HealthFunc func(ctx context.Context) error

// Config holds configuration for the HTTP server.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	// Watch reloads the catalog when its file changes.
	Watch    bool
	Reloader *Reloader
	Health   HealthFunc
	Logger   *slog.Logger
}

// Server is the lookup HTTP server.
type Server struct {
	addr              string
	readHeaderTimeout time.Duration
	shutdownTimeout   time.Duration
	watch             bool
	reloader          *Reloader
	health            HealthFunc
	logger            *slog.Logger
	ids               *idGenerator
}

// New creates a server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		addr:              cfg.Addr,
		readHeaderTimeout: cfg.ReadHeaderTimeout,
		shutdownTimeout:   cfg.ShutdownTimeout,
		watch:             cfg.Watch,
		reloader:          cfg.Reloader,
		health:            cfg.Health,
		logger:            logger,
		ids:               newIDGenerator(),
	}
	if s.readHeaderTimeout <= 0 {
		s.readHeaderTimeout = 10 * time.Second
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 5 * time.Second
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		s.ids.requestID,
		s.accessLog,
		middleware.Recoverer,
	)

	r.Get("/lookup", s.handleLookup)
	r.Get("/catalog", s.handleCatalog)
	r.Get("/healthz", s.handleHealth)
	return r
}

// accessLog writes one line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				"request_id", RequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// Serve listens on the configured address and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	if s.watch {
		eg.Go(func() error {
			return s.reloader.Watch(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
