package config

import (
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

var configKeys = []string{
	"COINGECKO_API_URL", "COINGECKO_API_KEY", "COINGECKO_TOP_N", "COINGECKO_REQUESTS_PER_MIN",
	"RETRY_DELAYS", "PRELOAD_BATCH_SIZE", "PRELOAD_ROUNDS", "PRELOAD_BATCH_DELAY",
	"PRELOAD_ROUND_DELAY", "PRELOAD_CONCURRENCY", "REFRESH_INTERVAL_MINS",
	"REDIS_URL", "REDIS_TTL_SECS", "TELEGRAM_BOT_TOKEN", "HTTP_PORT", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.CoinGeckoAPIURL != "https://api.coingecko.com/api/v3" {
		t.Fatalf("unexpected api url: %s", cfg.CoinGeckoAPIURL)
	}
	if cfg.CoinGeckoTopN != 5 || cfg.CoinGeckoRequestsPerMin != 0 {
		t.Fatalf("unexpected provider defaults: %+v", cfg)
	}
	expected := []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second, 30 * time.Second}
	if len(cfg.RetryDelays) != len(expected) {
		t.Fatalf("unexpected ladder: %v", cfg.RetryDelays)
	}
	for i := range expected {
		if cfg.RetryDelays[i] != expected[i] {
			t.Fatalf("unexpected ladder: %v", cfg.RetryDelays)
		}
	}
	if cfg.PreloadBatchSize != 5 || cfg.PreloadRounds != 3 || cfg.PreloadConcurrency != 25 {
		t.Fatalf("unexpected preload defaults: %+v", cfg)
	}
	if cfg.PreloadBatchDelay != 5*time.Second || cfg.PreloadRoundDelay != 5*time.Second {
		t.Fatalf("unexpected preload delays: %+v", cfg)
	}
	if cfg.RedisURL != "" || cfg.RedisTTL() != 10*time.Minute || cfg.RefreshInterval() != 0 {
		t.Fatalf("unexpected redis/refresh defaults: %+v", cfg)
	}
	if cfg.HTTPPort != 8080 || cfg.LogLevel != log.InfoLevel {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("COINGECKO_API_URL", "http://localhost:9999")
	t.Setenv("COINGECKO_API_KEY", "key")
	t.Setenv("COINGECKO_TOP_N", "50")
	t.Setenv("COINGECKO_REQUESTS_PER_MIN", "30")
	t.Setenv("RETRY_DELAYS", "1s, 2s,500")
	t.Setenv("PRELOAD_BATCH_SIZE", "10")
	t.Setenv("PRELOAD_ROUNDS", "0")
	t.Setenv("PRELOAD_BATCH_DELAY", "0")
	t.Setenv("PRELOAD_ROUND_DELAY", "250ms")
	t.Setenv("PRELOAD_CONCURRENCY", "0")
	t.Setenv("REFRESH_INTERVAL_MINS", "15")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("REDIS_TTL_SECS", "60")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.CoinGeckoAPIURL != "http://localhost:9999" || cfg.CoinGeckoAPIKey != "key" || cfg.CoinGeckoTopN != 50 {
		t.Fatalf("unexpected provider config: %+v", cfg)
	}
	if len(cfg.RetryDelays) != 3 || cfg.RetryDelays[1] != 2*time.Second || cfg.RetryDelays[2] != 500*time.Millisecond {
		t.Fatalf("unexpected ladder: %v", cfg.RetryDelays)
	}

	svc := cfg.Service()
	if svc.TopN != 50 || svc.BatchSize != 10 || svc.RecoveryRounds != 0 || svc.Concurrency != 0 {
		t.Fatalf("unexpected service config: %+v", svc)
	}
	if svc.BatchDelay != 0 || svc.RoundDelay != 250*time.Millisecond {
		t.Fatalf("unexpected service delays: %+v", svc)
	}

	opts := cfg.Provider()
	if opts.BaseURL != "http://localhost:9999" || opts.APIKey != "key" || opts.RequestsPerMin != 30 {
		t.Fatalf("unexpected provider options: %+v", opts)
	}
	if cfg.RefreshInterval() != 15*time.Minute || cfg.RedisTTL() != time.Minute || cfg.HTTPPort != 9090 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.LogLevel != log.DebugLevel {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("COINGECKO_TOP_N", "-1")
	t.Setenv("RETRY_DELAYS", "10s,soon")
	t.Setenv("PRELOAD_BATCH_DELAY", "-5s")
	t.Setenv("HTTP_PORT", "bad")
	t.Setenv("LOG_LEVEL", "chatty")

	cfg := Load()
	if cfg.CoinGeckoTopN != 5 || len(cfg.RetryDelays) != 4 || cfg.PreloadBatchDelay != 5*time.Second {
		t.Fatalf("invalid values should fall back: %+v", cfg)
	}
	if cfg.HTTPPort != 8080 || cfg.LogLevel != log.InfoLevel {
		t.Fatalf("invalid values should fall back: %+v", cfg)
	}
}

func TestLoadRetriesDisabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("RETRY_DELAYS", "none")

	cfg := Load()
	if cfg.RetryDelays == nil || len(cfg.RetryDelays) != 0 {
		t.Fatalf("expected an empty ladder, got %v", cfg.RetryDelays)
	}
}
