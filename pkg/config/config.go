package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultMaxConcurrentFetches = 5
	DefaultMaxURLsPerBatch      = 10
	DefaultMaxCommentsPerVideo  = 1500
	DefaultMaxPagesPerVideo     = 50
	DefaultPageSize             = 30
)

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	TikHubAPIKey  string `mapstructure:"TIKHUB_API_KEY"`
	TikHubBaseURL string `mapstructure:"TIKHUB_BASE_URL"`

	UpstreamTimeoutSeconds int     `mapstructure:"UPSTREAM_TIMEOUT"`
	UpstreamRatePerSecond  float64 `mapstructure:"UPSTREAM_RATE_PER_SECOND"`
	PageSize               int     `mapstructure:"PAGE_SIZE"`

	MaxConcurrentFetches int `mapstructure:"MAX_CONCURRENT_FETCHES"`
	MaxURLsPerBatch      int `mapstructure:"MAX_URLS_PER_BATCH"`
	MaxCommentsPerVideo  int `mapstructure:"MAX_COMMENTS_PER_VIDEO"`
	MaxPagesPerVideo     int `mapstructure:"MAX_PAGES_PER_VIDEO"`

	RequestTimeoutSeconds int `mapstructure:"REQUEST_TIMEOUT"`

	PostgresURL     string `mapstructure:"POSTGRES_URL"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int    `mapstructure:"REDIS_DB"`
	FailureTTLHours int    `mapstructure:"FAILURE_TTL_HOURS"`
}

// Load reads configuration from an optional .env file and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Missing .env is fine, production config comes from the environment.
	_ = v.ReadInConfig()

	// Every key needs a default, otherwise AutomaticEnv never binds it during Unmarshal.
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIKHUB_API_KEY", "")
	v.SetDefault("TIKHUB_BASE_URL", "https://api.tikhub.io")
	v.SetDefault("UPSTREAM_TIMEOUT", 30) // in seconds
	v.SetDefault("UPSTREAM_RATE_PER_SECOND", 0)
	v.SetDefault("PAGE_SIZE", DefaultPageSize)
	v.SetDefault("MAX_CONCURRENT_FETCHES", DefaultMaxConcurrentFetches)
	v.SetDefault("MAX_URLS_PER_BATCH", DefaultMaxURLsPerBatch)
	v.SetDefault("MAX_COMMENTS_PER_VIDEO", DefaultMaxCommentsPerVideo)
	v.SetDefault("MAX_PAGES_PER_VIDEO", DefaultMaxPagesPerVideo)
	v.SetDefault("REQUEST_TIMEOUT", 300) // in seconds
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("FAILURE_TTL_HOURS", 24)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Validate()
	return &cfg, nil
}

// Validate replaces non-positive limits with their defaults.
func (c *Config) Validate() {
	c.MaxConcurrentFetches = positiveOr(c.MaxConcurrentFetches, DefaultMaxConcurrentFetches)
	c.MaxURLsPerBatch = positiveOr(c.MaxURLsPerBatch, DefaultMaxURLsPerBatch)
	c.MaxCommentsPerVideo = positiveOr(c.MaxCommentsPerVideo, DefaultMaxCommentsPerVideo)
	c.MaxPagesPerVideo = positiveOr(c.MaxPagesPerVideo, DefaultMaxPagesPerVideo)
	c.PageSize = positiveOr(c.PageSize, DefaultPageSize)
	c.UpstreamTimeoutSeconds = positiveOr(c.UpstreamTimeoutSeconds, 30)
	c.RequestTimeoutSeconds = positiveOr(c.RequestTimeoutSeconds, 300)
	c.FailureTTLHours = positiveOr(c.FailureTTLHours, 24)
	if c.UpstreamRatePerSecond < 0 {
		c.UpstreamRatePerSecond = 0
	}
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) FailureTTL() time.Duration {
	return time.Duration(c.FailureTTLHours) * time.Hour
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
