package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Events    EventsConfig    `mapstructure:"events"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort        int           `mapstructure:"http_port"` // HTTP server port
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects and configures the revenue data source
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres (lib/pq), pgx, clickhouse, memory
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
}

// CacheConfig configures the report cache
type CacheConfig struct {
	Type            string        `mapstructure:"type"` // memory, redis, none
	URL             string        `mapstructure:"url"`  // redis://localhost:6379/0
	TTL             time.Duration `mapstructure:"ttl"`
	Compress        bool          `mapstructure:"compress"`         // snappy-compress payloads (redis only)
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"` // memory janitor interval
}

// EventsConfig configures the analytics event publisher
type EventsConfig struct {
	Type          string `mapstructure:"type"` // nats, redis, kafka, memory, none
	URL           string `mapstructure:"url"`  // nats://localhost:4222, redis://localhost:6379
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	SubjectPrefix string `mapstructure:"subject_prefix"` // events are published to <prefix>.anomaly etc.

	// Redis-specific options
	RedisDB int `mapstructure:"redis_db"`

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// RateLimitConfig configures the per-IP request limiter
type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Max     int           `mapstructure:"max"`    // requests per window
	Window  time.Duration `mapstructure:"window"` // e.g. 1m
}

// AnalyticsConfig holds report defaults and rule thresholds
type AnalyticsConfig struct {
	MaxPeriods            int      `mapstructure:"max_periods"`
	DefaultPeriods        int      `mapstructure:"default_periods"`
	ForecastMethod        string   `mapstructure:"forecast_method"`
	MaxPeriodsAhead       int      `mapstructure:"max_periods_ahead"`
	MovingAverageWindow   int      `mapstructure:"moving_average_window"`
	AnomalyDropRatio      float64  `mapstructure:"anomaly_drop_ratio"`
	PremiumClasses        []string `mapstructure:"premium_classes"`
	ShareThresholdPercent float64  `mapstructure:"share_threshold_percent"`
	DeclineRatio          float64  `mapstructure:"decline_ratio"`
	LowTicketValue        float64  `mapstructure:"low_ticket_value"`
	MaxReviewLimit        int      `mapstructure:"max_review_limit"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events config: %w", err)
	}

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate_limit config: %w", err)
	}

	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	return nil
}

// Validate validates database configuration
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverMemory:
		return nil
	case DriverPostgres, DriverPgx, DriverClickHouse:
	default:
		return fmt.Errorf("database.driver must be one of: postgres, pgx, clickhouse, memory")
	}

	if c.DSN == "" {
		return fmt.Errorf("database.dsn is required for driver %s", c.Driver)
	}

	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return fmt.Errorf("database pool sizes cannot be negative")
	}

	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	switch c.Type {
	case "none", "":
		return nil
	case "memory":
	case "redis":
		if c.URL == "" {
			return fmt.Errorf("cache.url is required for redis")
		}
	default:
		return fmt.Errorf("cache.type must be one of: memory, redis, none")
	}

	if c.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}

	return nil
}

// Validate validates events configuration
func (c *EventsConfig) Validate() error {
	switch c.Type {
	case "none", "", "memory":
		return nil
	case "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("events.url is required for %s", c.Type)
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("events.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("events.type must be one of: nats, redis, kafka, memory, none")
	}

	if c.SubjectPrefix == "" {
		return fmt.Errorf("events.subject_prefix is required")
	}

	return nil
}

// Validate validates rate limit configuration
func (c *RateLimitConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Max < 1 {
		return fmt.Errorf("rate_limit.max must be at least 1")
	}
	if c.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}
	return nil
}

// Validate validates analytics configuration
func (c *AnalyticsConfig) Validate() error {
	if c.MaxPeriods < 1 {
		return fmt.Errorf("analytics.max_periods must be at least 1")
	}

	if c.DefaultPeriods < 1 || c.DefaultPeriods > c.MaxPeriods {
		return fmt.Errorf("analytics.default_periods must be between 1 and max_periods (%d)", c.MaxPeriods)
	}

	if c.MaxPeriodsAhead < 1 {
		return fmt.Errorf("analytics.max_periods_ahead must be at least 1")
	}

	if c.AnomalyDropRatio <= 0 || c.AnomalyDropRatio >= 1 {
		return fmt.Errorf("analytics.anomaly_drop_ratio must be in (0, 1)")
	}

	if c.ShareThresholdPercent <= 0 || c.ShareThresholdPercent > 100 {
		return fmt.Errorf("analytics.share_threshold_percent must be in (0, 100]")
	}

	if c.DeclineRatio <= 0 {
		return fmt.Errorf("analytics.decline_ratio must be positive")
	}

	if c.LowTicketValue < 0 {
		return fmt.Errorf("analytics.low_ticket_value cannot be negative")
	}

	if c.MaxReviewLimit < 1 {
		return fmt.Errorf("analytics.max_review_limit must be at least 1")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
