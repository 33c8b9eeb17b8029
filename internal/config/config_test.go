package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "PORT", "SURFLINE_BASE_URL", "HTTP_TIMEOUT",
		"RETRY_MAX_ATTEMPTS", "RETRY_INITIAL_INTERVAL", "RETRY_MAX_INTERVAL",
		"UPSTREAM_MAX_CONNS", "STORE_DRIVER", "SQLITE_PATH", "LIVENESS_INTERVAL",
		"LIVENESS_TIMEOUT", "LIVENESS_BATCH_SIZE", "PROXY_REFERER",
	} {
		t.Setenv(key, "")
	}

	cfg, err := fromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.AppEnv != "dev" || !cfg.IsDev() {
		t.Fatalf("expected dev env, got %q", cfg.AppEnv)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("expected info level, got %v", cfg.LogLevel)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.SurflineBaseURL != "https://services.surfline.com/kbyg/spots/forecasts" {
		t.Fatalf("unexpected base url %q", cfg.SurflineBaseURL)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.RetryMaxAttempts != 3 || cfg.RetryInitialInterval != 500*time.Millisecond || cfg.RetryMaxInterval != 5*time.Second {
		t.Fatalf("unexpected retry settings: %d %v %v", cfg.RetryMaxAttempts, cfg.RetryInitialInterval, cfg.RetryMaxInterval)
	}
	if cfg.UpstreamMaxConns != 4 {
		t.Fatalf("expected 4 upstream conns, got %d", cfg.UpstreamMaxConns)
	}
	if cfg.StoreDriver != "sqlite" || cfg.SQLitePath != "data/surfcams.db" {
		t.Fatalf("unexpected store settings: %q %q", cfg.StoreDriver, cfg.SQLitePath)
	}
	if cfg.LivenessInterval != 2*time.Hour || cfg.LivenessTimeout != 10*time.Second || cfg.LivenessBatchSize != 10 {
		t.Fatalf("unexpected liveness settings: %v %v %d", cfg.LivenessInterval, cfg.LivenessTimeout, cfg.LivenessBatchSize)
	}
	if cfg.ProxyReferer != "" {
		t.Fatalf("expected empty referer, got %q", cfg.ProxyReferer)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SURFLINE_BASE_URL", "http://localhost:9000/forecasts/")
	t.Setenv("UPSTREAM_MAX_CONNS", "2")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LIVENESS_INTERVAL", "30m")
	t.Setenv("PROXY_REFERER", "https://surfcams.example/")

	cfg, err := fromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IsDev() {
		t.Fatalf("expected prod env")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel)
	}
	if cfg.SurflineBaseURL != "http://localhost:9000/forecasts" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.SurflineBaseURL)
	}
	if cfg.UpstreamMaxConns != 4 {
		t.Fatalf("expected upstream conns raised to 4, got %d", cfg.UpstreamMaxConns)
	}
	if cfg.StoreDriver != "memory" {
		t.Fatalf("expected memory driver, got %q", cfg.StoreDriver)
	}
	if cfg.LivenessInterval != 30*time.Minute {
		t.Fatalf("expected 30m interval, got %v", cfg.LivenessInterval)
	}
	if cfg.ProxyReferer != "https://surfcams.example/" {
		t.Fatalf("unexpected referer %q", cfg.ProxyReferer)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"APP_ENV", "staging", "APP_ENV"},
		{"LOG_LEVEL", "loud", "LOG_LEVEL"},
		{"HTTP_TIMEOUT", "soon", "HTTP_TIMEOUT"},
		{"HTTP_TIMEOUT", "-1s", "HTTP_TIMEOUT"},
		{"RETRY_MAX_ATTEMPTS", "three", "RETRY_MAX_ATTEMPTS"},
		{"RETRY_MAX_ATTEMPTS", "0", "RETRY_MAX_ATTEMPTS"},
		{"STORE_DRIVER", "postgres", "STORE_DRIVER"},
		{"LIVENESS_BATCH_SIZE", "x", "LIVENESS_BATCH_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := fromEnv()
			if err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
