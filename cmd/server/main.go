// Command server starts the JD fit scoring HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpserver "github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/httpserver"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/observability"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/app"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/config"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/domain"
	"github.com/fairyhunter13/jd-fit-evaluator/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	scoring, err := app.BuildScoring(cfg)
	if err != nil {
		slog.Error("scoring stack init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := scoring.Close(); err != nil {
			slog.Error("failed to close embedding cache", slog.Any("error", err))
		}
	}()

	// Optional result persistence
	ctx := context.Background()
	var results domain.ResultRepository
	var dbCheck func(context.Context) error
	if cfg.DBURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DBURL)
		if err != nil {
			slog.Error("db connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			slog.Error("db schema init failed", slog.Any("error", err))
			os.Exit(1)
		}
		results = postgres.NewResultRepo(pool)
		dbCheck = func(ctx context.Context) error { return pool.Ping(ctx) }
	}

	batchSvc := usecase.NewBatchService(scoring.Score, results, cfg.BatchWorkers)

	var cacheCheck func(context.Context) error
	if scoring.Cache != nil {
		cacheCheck = func(ctx context.Context) error {
			_, err := scoring.Cache.Get(ctx, "readyz", "readyz", []string{"ping"})
			return err
		}
	}

	srv := httpserver.NewServer(cfg, scoring.Score, batchSvc, dbCheck, cacheCheck)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
