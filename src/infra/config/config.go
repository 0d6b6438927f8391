// Package config handles application configuration via environment variables.
// It uses kelseyhightower/envconfig for parsing and provides sensible defaults.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
// Postgres settings use bare POSTGRES_* variable names; server and logging
// settings are prefixed with "APP" (APP_PORT, APP_LOG_LEVEL, ...).
type Config struct {
	// Server configuration (embedded to flatten env vars)
	Server ServerConfig

	// Postgres configuration
	Postgres PostgresConfig

	// Logging configuration (embedded to flatten env vars)
	Log LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// Host is the HTTP server host (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// ReadTimeout is the maximum duration for reading the entire request (default: 10s)
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`

	// WriteTimeout is the maximum duration before timing out writes of the response (default: 30s)
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout is the maximum duration to wait for active connections to finish (default: 30s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// PostgresConfig holds connection pool settings.
type PostgresConfig struct {
	// URL is the connection string (required). Startup aborts without it.
	URL string `envconfig:"POSTGRES_URL" required:"true"`

	// MaxPoolSize is the maximum number of pooled connections (default: 10)
	MaxPoolSize int `envconfig:"POSTGRES_MAX_POOL_SIZE" default:"10"`

	// MinPoolSize is the minimum number of pooled connections (default: 1)
	MinPoolSize int `envconfig:"POSTGRES_MIN_POOL_SIZE" default:"1"`

	// ConnectTimeout is the time allowed to establish a connection,
	// and also bounds waiting for a free connection from a saturated pool
	// (default: 10s)
	ConnectTimeout time.Duration `envconfig:"POSTGRES_CONNECT_TIMEOUT" default:"10s"`

	// ConnectionTTL is the maximum age before a pooled connection is
	// recycled (default: 5m)
	ConnectionTTL time.Duration `envconfig:"POSTGRES_CONNECTION_TTL" default:"5m"`

	// QueryTimeout is the per-statement default used when no explicit
	// timeout is given (default: 120s)
	QueryTimeout time.Duration `envconfig:"POSTGRES_QUERY_TIMEOUT" default:"120s"`

	// EnableHStore registers the hstore codec on each connection (default: false)
	EnableHStore bool `envconfig:"POSTGRES_HSTORE" default:"false"`

	// EnableJSON decodes json/jsonb column values into Go values (default: false)
	EnableJSON bool `envconfig:"POSTGRES_JSON" default:"false"`

	// EnableUUID renders uuid column values as canonical strings (default: true)
	EnableUUID bool `envconfig:"POSTGRES_UUID" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	// Level is the log level: debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is the log format: json, text (default: json)
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables.
// It returns an error if required variables are missing or invalid; a
// missing POSTGRES_URL fails here and stops the process.
func Load() (*Config, error) {
	var cfg Config

	// Load each config section separately to flatten env var names
	if err := envconfig.Process("APP", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := envconfig.Process("", &cfg.Postgres); err != nil {
		return nil, fmt.Errorf("failed to load postgres config: %w", err)
	}
	if err := envconfig.Process("APP", &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main.go during startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
