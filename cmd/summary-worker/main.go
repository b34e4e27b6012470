package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expenzy/internal/app"
	"expenzy/internal/config"
	"expenzy/internal/queue"
	"expenzy/internal/services"
	"expenzy/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	logger := slog.New(handler).With("component", "summary-worker")
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("summary worker stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := app.OpenBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			logger.Warn("failed to close record store", "error", err)
		}
	}()

	summaries := services.NewSummaryService(
		backend.Store.Users, backend.Store.Ledger, services.NewAccountLocks(),
		cfg.Schedule.WeekStart, services.NewPrometheusMetrics(), logger,
	)

	client, err := queue.NewClient(cfg.Queue.URL, cfg.Queue.Exchange, cfg.Queue.Queue, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	metricsServer := &http.Server{
		Addr:              cfg.Queue.WorkerMetricsAddr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving worker metrics", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("summary worker started", "queue", cfg.Queue.Queue, "store", backend.Name)

	err = client.ConsumeSummaryRequests(ctx, worker.NewSummaryWorker(summaries, logger).Handler())
	if errors.Is(err, context.Canceled) {
		logger.Info("summary worker shutting down")
		return nil
	}
	return err
}
