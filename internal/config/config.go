// Package config provides centralized configuration for the datasheet tool.
// Values come from struct-tag defaults, an optional TOML file and the
// environment, in that order, and are validated before use.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig    `toml:"server"`
	Database DatabaseConfig  `toml:"database"`
	Import   ImportConfig    `toml:"import"`
	Rate     RateLimitConfig `toml:"rate_limit"`
	Security SecurityConfig  `toml:"security"`
	Logging  LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server settings for `datasheet serve`.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `toml:"host" env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `toml:"port" env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `toml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `toml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"2m"`
	IdleTimeout     time.Duration `toml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a whole request including the import run (default: 90s)
	RequestTimeout time.Duration `toml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// DatabaseConfig describes the persistence target.
type DatabaseConfig struct {
	// Target is a SQLite file path or a postgres:// URL. Empty means
	// imports can only run as dry runs.
	Target string `toml:"target" env:"DATASHEET_DB" envAlt:"DATABASE_URL"`

	// BusyTimeout is how long SQLite waits on a locked database (default: 5s)
	BusyTimeout time.Duration `toml:"busy_timeout" env:"DB_BUSY_TIMEOUT" default:"5s"`

	// MaxConns and MinConns size the PostgreSQL pool.
	MaxConns int `toml:"max_conns" env:"DB_MAX_CONNS" default:"10"`
	MinConns int `toml:"min_conns" env:"DB_MIN_CONNS" default:"1"`

	MaxConnLifetime time.Duration `toml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `toml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds import pipeline settings.
type ImportConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes (default: 100MB)
	MaxFileSize int64 `toml:"max_file_size" env:"IMPORT_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the number of imports the server runs at once (default: 4)
	MaxConcurrent int `toml:"max_concurrent" env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long an import waits for a free slot (default: 30s)
	MaxWaitTime time.Duration `toml:"max_wait_time" env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single import run (default: 10m)
	Timeout time.Duration `toml:"timeout" env:"IMPORT_TIMEOUT" default:"10m"`

	// IfExists is the policy used when a request does not name one.
	IfExists string `toml:"if_exists" env:"IMPORT_IF_EXISTS" default:"append"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled bool `toml:"enabled" env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the general limit per IP (default: 100)
	RequestsPerMinute int `toml:"requests_per_minute" env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ImportLimit is the per-minute limit on preview and import uploads (default: 10)
	ImportLimit int `toml:"import_limit" env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies lists proxy CIDRs whose X-Real-IP/X-Forwarded-For are honored.
	TrustedProxies []string `toml:"trusted_proxies" env:"TRUSTED_PROXIES"`

	EnableCSP bool `toml:"enable_csp" env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects the JSON API with X-API-Key.
	RequireAPIKey bool     `toml:"require_api_key" env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `toml:"api_keys" env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `toml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `toml:"format" env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
