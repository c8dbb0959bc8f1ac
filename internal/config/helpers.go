package config

import (
	"net"
	"strconv"
)

// Database drivers
const (
	DriverPostgres   = "postgres" // database/sql + lib/pq through sqlx
	DriverPgx        = "pgx"      // database/sql + pgx stdlib through sqlx
	DriverClickHouse = "clickhouse"
	DriverMemory     = "memory" // built-in fixtures, for local development
)

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Logging.Level == "info" && c.Logging.Format == "json"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// IsSQL reports whether the driver goes through database/sql
func (c *DatabaseConfig) IsSQL() bool {
	return c.Driver == DriverPostgres || c.Driver == DriverPgx
}

// CacheEnabled reports whether reports should be cached
func (c *Config) CacheEnabled() bool {
	return c.Cache.Type != "" && c.Cache.Type != "none"
}

// EventsEnabled reports whether analytics events should be published
func (c *Config) EventsEnabled() bool {
	return c.Events.Type != "" && c.Events.Type != "none"
}
