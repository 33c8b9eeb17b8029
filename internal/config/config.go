package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	AppEnv   string // dev or prod
	LogLevel slog.Level
	Port     string

	// Surfline upstream.
	SurflineBaseURL      string
	HTTPTimeout          time.Duration // per upstream call
	RetryMaxAttempts     int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	UpstreamMaxConns     int

	// Cam catalog storage.
	StoreDriver string // sqlite or memory
	SQLitePath  string

	// Cam liveness sweep.
	LivenessInterval  time.Duration
	LivenessTimeout   time.Duration
	LivenessBatchSize int
	ProxyReferer      string
}

// IsDev reports whether the app runs in the dev environment.
func (c *AppConfig) IsDev() bool {
	return c.AppEnv == "dev"
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return fromEnv()
}

func fromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.SurflineBaseURL = strings.TrimRight(getenvDefault("SURFLINE_BASE_URL", "https://services.surfline.com/kbyg/spots/forecasts"), "/")
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.RetryMaxAttempts, err = getenvInt("RETRY_MAX_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.RetryMaxAttempts < 1 {
		return nil, fmt.Errorf("invalid RETRY_MAX_ATTEMPTS %d: must be at least 1", cfg.RetryMaxAttempts)
	}
	if cfg.RetryInitialInterval, err = getenvDuration("RETRY_INITIAL_INTERVAL", "500ms"); err != nil {
		return nil, err
	}
	if cfg.RetryMaxInterval, err = getenvDuration("RETRY_MAX_INTERVAL", "5s"); err != nil {
		return nil, err
	}
	if cfg.UpstreamMaxConns, err = getenvInt("UPSTREAM_MAX_CONNS", 4); err != nil {
		return nil, err
	}
	// One aggregation runs four requests at once.
	cfg.UpstreamMaxConns = max(cfg.UpstreamMaxConns, 4)

	cfg.StoreDriver = strings.ToLower(getenvDefault("STORE_DRIVER", "sqlite"))
	switch cfg.StoreDriver {
	case "sqlite", "memory":
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q (allowed: sqlite, memory)", cfg.StoreDriver)
	}
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "data/surfcams.db")

	if cfg.LivenessInterval, err = getenvDuration("LIVENESS_INTERVAL", "2h"); err != nil {
		return nil, err
	}
	if cfg.LivenessTimeout, err = getenvDuration("LIVENESS_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.LivenessBatchSize, err = getenvInt("LIVENESS_BATCH_SIZE", 10); err != nil {
		return nil, err
	}
	cfg.ProxyReferer = os.Getenv("PROXY_REFERER")

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}
