package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expenzy/internal/app"
	"expenzy/internal/config"
	"expenzy/internal/handlers"
	"expenzy/internal/middleware"
	"expenzy/internal/queue"
	"expenzy/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
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

	metrics := services.NewPrometheusMetrics()
	locks := services.NewAccountLocks()

	summaryService := services.NewSummaryService(
		backend.Store.Users, backend.Store.Ledger, locks, cfg.Schedule.WeekStart, metrics, logger,
	)

	var notifier services.SummaryNotifierInterface = services.NewInlineSummaryNotifier(summaryService)
	if cfg.Queue.Enabled {
		client, err := queue.NewClient(cfg.Queue.URL, cfg.Queue.Exchange, cfg.Queue.Queue, logger)
		if err != nil {
			logger.Warn("summary queue unavailable, recomputing inline", "error", err)
		} else {
			defer client.Close()
			notifier = services.NewQueueSummaryNotifier(
				client,
				services.NewCircuitBreaker(services.DefaultCircuitBreakerConfig()),
				notifier,
				metrics,
				logger,
			)
			logger.Info("publishing summary requests", "exchange", cfg.Queue.Exchange, "queue", cfg.Queue.Queue)
		}
	}

	passwordService := services.NewPasswordService(cfg.Security.BCryptCost, cfg.Security.PasswordMinLength)
	authService := services.NewAuthService(backend.Store.Users, passwordService, metrics, logger)
	expenseService := services.NewExpenseService(
		backend.Store.Users, backend.Store.Ledger, metrics, logger,
		services.WithAccountLocks(locks),
		services.WithSummaryNotifier(notifier),
	)

	if cfg.Schedule.Enabled {
		scheduler := services.NewSummaryScheduler(summaryService, cfg.Schedule.WeekStart, metrics, logger)
		if err := scheduler.Register(cfg.Schedule.WeeklySummaryCron, cfg.Schedule.MonthlySummaryCron); err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			<-scheduler.Stop().Done()
		}()
	}

	rateLimiter := middleware.NewRateLimiter(cfg.Security.RateLimitPerSecond, 0)
	go rateLimiter.RunCleanup(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.NewHTTPMetrics(prometheus.DefaultRegisterer).Middleware())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, middleware.TraceIDHeader},
	}))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(rateLimiter.Middleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	routes := handlers.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Expense: handlers.NewExpenseHandler(expenseService),
		Summary: handlers.NewSummaryHandler(authService, summaryService, cfg.Schedule.WeekStart),
		Health:  handlers.NewHealthCheckHandler(handlers.PingFunc(backend.Ping), backend.Name),
	}
	if cfg.IsDevelopment() {
		routes.Dev = handlers.NewDevHandler(expenseService)
		logger.Warn("development routes enabled", "path", "/api/dev")
	}
	handlers.RegisterRoutes(e, routes)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting expenzy API", "addr", addr, "env", cfg.Server.Environment, "store", backend.Name)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return e.Shutdown(shutdownCtx)
}
