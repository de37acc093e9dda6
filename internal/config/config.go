package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"cryptoboard/internal/provider"
	"cryptoboard/internal/retry"
	"cryptoboard/internal/service"

	"github.com/charmbracelet/log"
)

type Config struct {
	CoinGeckoAPIURL         string
	CoinGeckoAPIKey         string
	CoinGeckoTopN           int
	CoinGeckoRequestsPerMin int

	RetryDelays         []time.Duration
	PreloadBatchSize    int
	PreloadRounds       int
	PreloadBatchDelay   time.Duration
	PreloadRoundDelay   time.Duration
	PreloadConcurrency  int
	RefreshIntervalMins int

	RedisURL     string
	RedisTTLSecs int

	TelegramBotToken string
	HTTPPort         int
	LogLevel         log.Level
}

func Load() *Config {
	cfg := &Config{
		CoinGeckoAPIKey:  strings.TrimSpace(os.Getenv("COINGECKO_API_KEY")),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	cfg.CoinGeckoAPIURL = strings.TrimSpace(os.Getenv("COINGECKO_API_URL"))
	if cfg.CoinGeckoAPIURL == "" {
		cfg.CoinGeckoAPIURL = provider.DefaultBaseURL
	}
	if cfg.CoinGeckoAPIKey == "" {
		log.Info("COINGECKO_API_KEY not set, using the keyless public tier")
	}
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set, mirror disabled")
	}
	if cfg.TelegramBotToken == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	cfg.CoinGeckoTopN = positiveInt("COINGECKO_TOP_N", 5)
	cfg.CoinGeckoRequestsPerMin = nonNegativeInt("COINGECKO_REQUESTS_PER_MIN", 0)

	cfg.RetryDelays = retry.DefaultDelays()
	if v := strings.TrimSpace(os.Getenv("RETRY_DELAYS")); v != "" {
		if delays, ok := parseDelays(v); ok {
			cfg.RetryDelays = delays
		} else {
			log.Warn("invalid RETRY_DELAYS, using default ladder", "value", v)
		}
	}

	cfg.PreloadBatchSize = positiveInt("PRELOAD_BATCH_SIZE", 5)
	cfg.PreloadRounds = nonNegativeInt("PRELOAD_ROUNDS", 3)
	cfg.PreloadBatchDelay = duration("PRELOAD_BATCH_DELAY", 5*time.Second)
	cfg.PreloadRoundDelay = duration("PRELOAD_ROUND_DELAY", 5*time.Second)
	cfg.PreloadConcurrency = nonNegativeInt("PRELOAD_CONCURRENCY", 25)
	cfg.RefreshIntervalMins = nonNegativeInt("REFRESH_INTERVAL_MINS", 0)

	cfg.RedisTTLSecs = positiveInt("REDIS_TTL_SECS", 600)
	cfg.HTTPPort = positiveInt("HTTP_PORT", 8080)

	cfg.LogLevel = log.InfoLevel
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		if lvl, err := log.ParseLevel(v); err == nil {
			cfg.LogLevel = lvl
		} else {
			log.Warn("unsupported LOG_LEVEL, defaulting to info", "value", v)
		}
	}

	return cfg
}

// Service maps the loaded settings onto the orchestrator configuration.
func (c *Config) Service() service.Config {
	cfg := service.DefaultConfig()
	cfg.TopN = c.CoinGeckoTopN
	cfg.RetryDelays = c.RetryDelays
	cfg.BatchSize = c.PreloadBatchSize
	cfg.RecoveryRounds = c.PreloadRounds
	cfg.BatchDelay = c.PreloadBatchDelay
	cfg.RoundDelay = c.PreloadRoundDelay
	cfg.Concurrency = c.PreloadConcurrency
	return cfg
}

func (c *Config) Provider() provider.Options {
	return provider.Options{
		BaseURL:        c.CoinGeckoAPIURL,
		APIKey:         c.CoinGeckoAPIKey,
		RequestsPerMin: c.CoinGeckoRequestsPerMin,
	}
}

func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.RedisTTLSecs) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMins) * time.Minute
}

func positiveInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Warn("invalid value, using default", "key", key, "value", v, "default", def)
	}
	return def
}

func nonNegativeInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		log.Warn("invalid value, using default", "key", key, "value", v, "default", def)
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, ok := parseDuration(v); ok {
			return d
		}
		log.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
	}
	return def
}

// parseDuration accepts Go durations ("1500ms") and bare integers as
// milliseconds ("5000").
func parseDuration(v string) (time.Duration, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 {
			return 0, false
		}
		return time.Duration(n) * time.Millisecond, true
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

// parseDelays reads a comma-separated ladder. "none" disables retries.
func parseDelays(v string) ([]time.Duration, bool) {
	if strings.EqualFold(v, "none") {
		return []time.Duration{}, true
	}
	parts := strings.Split(v, ",")
	delays := make([]time.Duration, 0, len(parts))
	for _, p := range parts {
		d, ok := parseDuration(strings.TrimSpace(p))
		if !ok {
			return nil, false
		}
		delays = append(delays, d)
	}
	return delays, true
}
