package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Worker    WorkerConfig
	Sources   SourcesConfig
	DB        DatabaseConfig
	Logging   LoggingConfig
	Stats     StatsConfig
	RateLimit RateLimitConfig
	Views     Views
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type SourcesConfig struct {
	FixturePath      string
	FeedEnabled      bool
	FeedURL          string
	FeedPollInterval time.Duration
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// StatsConfig points at the backend serving /dashboard/stats and
// /dashboard/category_breakdown. An empty BaseURL means this service.
type StatsConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Sources: SourcesConfig{
			FixturePath:      getEnv("FIXTURE_PATH", ""),
			FeedEnabled:      getEnvBool("FEED_ENABLED", false),
			FeedURL:          getEnv("FEED_URL", ""),
			FeedPollInterval: getEnvDuration("FEED_POLL_INTERVAL", 5*time.Minute),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", ":memory:"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Stats: StatsConfig{
			BaseURL: getEnv("STATS_BASE_URL", ""),
			Timeout: getEnvDuration("STATS_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Views: DefaultViews(),
	}

	if path := getEnv("VIEWS_CONFIG_PATH", ""); path != "" {
		views, err := LoadViews(path)
		if err != nil {
			return nil, err
		}
		cfg.Views = views
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// StatsBaseURL falls back to this service's own dashboard endpoints.
func (c *Config) StatsBaseURL() string {
	if c.Stats.BaseURL != "" {
		return c.Stats.BaseURL
	}
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if c.Worker.BufferSize < 0 {
		return fmt.Errorf("worker buffer size must not be negative")
	}

	if c.Sources.FeedEnabled {
		if c.Sources.FeedURL == "" {
			return fmt.Errorf("FEED_URL is required when the feed is enabled")
		}
		if c.Sources.FeedPollInterval < time.Minute {
			return fmt.Errorf("feed poll interval must be at least 1 minute")
		}
	}

	if c.Stats.Timeout <= 0 {
		return fmt.Errorf("stats timeout must be positive")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("invalid rate limit: %g rps, burst %d", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}

	return c.Views.Validate()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
