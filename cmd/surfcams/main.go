package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/surfcams/internal/api/http"
	"github.com/i474232898/surfcams/internal/cams"
	"github.com/i474232898/surfcams/internal/config"
	"github.com/i474232898/surfcams/internal/forecast"
	"github.com/i474232898/surfcams/internal/forecast/surfline"
	"github.com/i474232898/surfcams/internal/logging"
	"github.com/i474232898/surfcams/internal/scheduler"
	"github.com/i474232898/surfcams/internal/store"
)

const appName = "surfcams"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr := logging.New(cfg, appName)
	slog.SetDefault(logr)

	repo, closeRepo, err := openStore(cfg)
	if err != nil {
		logr.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	// Surfline client with resilience (backoff + circuit breaker).
	client := surfline.NewClient(surfline.Options{
		BaseURL: cfg.SurflineBaseURL,
		Timeout: cfg.HTTPTimeout,
		Retry: surfline.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			Backoff: surfline.BackoffConfig{
				InitialInterval: cfg.RetryInitialInterval,
				MaxInterval:     cfg.RetryMaxInterval,
			},
			Retryable: surfline.IsTransient,
		},
		MaxConns: cfg.UpstreamMaxConns,
	})
	service := forecast.NewService(client, logr.With("component", "forecast"))

	// Liveness sweep, once now and every LIVENESS_INTERVAL.
	sweeper := cams.NewSweeper(repo, cams.SweeperConfig{
		Client:    &http.Client{},
		Referer:   cfg.ProxyReferer,
		BatchSize: cfg.LivenessBatchSize,
		Timeout:   cfg.LivenessTimeout,
		Logger:    logr.With("component", "liveness"),
	})
	sched := scheduler.New(sweeper, cfg.LivenessInterval, logr)
	if err := sched.Start(); err != nil {
		logr.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Cams:     repo,
		Forecast: service,
		Dev:      cfg.IsDev(),
		Logger:   logr.With("component", "http"),
		Streams:  &http.Client{Timeout: cfg.HTTPTimeout},
		Referer:  cfg.ProxyReferer,
	})

	go func() {
		logr.Info("listening", "port", cfg.Port, "env", cfg.AppEnv, "store", cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logr.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logr.Error("error during shutdown", "error", err)
	}
}

func openStore(cfg *config.AppConfig) (cams.Repository, func(), error) {
	if cfg.StoreDriver == "memory" {
		return store.NewMemoryStore(), func() {}, nil
	}

	s, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			slog.Error("closing store", "error", err)
		}
	}, nil
}
