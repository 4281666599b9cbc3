package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/config"
	"github.com/mohammed-shakir/geotime-toolkit/internal/core/health"
	middleware "github.com/mohammed-shakir/geotime-toolkit/internal/core/middleware"
	"github.com/mohammed-shakir/geotime-toolkit/internal/core/router"
)

// Options carries what the HTTP surface needs besides the routes.
type Options struct {
	Metrics http.Handler
	Ready   map[string]health.Check
}

// Handler builds the full chi tree: middleware, probes, metrics and /v1.
func Handler(cfg config.Config, logger *slog.Logger, deps router.Deps, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger, cfg.ViewKind))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(opts.Ready))
	if opts.Metrics != nil {
		r.Get("/metrics", opts.Metrics.ServeHTTP)
	}
	r.Mount("/v1", router.New(logger, deps))
	return r
}

// sets up http and starts serving
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, deps router.Deps, opts Options) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           Handler(cfg, logger, deps, opts),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
