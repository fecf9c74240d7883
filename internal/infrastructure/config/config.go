package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Sandbox   SandboxConfig
	Library   LibraryConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string   `envconfig:"PORT" default:"8000"`
	Host         string   `envconfig:"HOST" default:"0.0.0.0"`
	AllowOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
	Compress     bool     `envconfig:"COMPRESS" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	Env         string `envconfig:"PLAYGROUND_ENV"`
}

// IsDevelopment reports whether development logging is selected, either by
// LOG_DEV or by PLAYGROUND_ENV naming a development environment.
func (c LogConfig) IsDevelopment() bool {
	if c.Development {
		return true
	}
	switch c.Env {
	case "dev", "development":
		return true
	}
	return false
}

// RateLimitConfig holds rate limiting configuration. The per-client limit
// applies to each remote address; the global limit, when GlobalRPS is
// positive, caps every snippet request together.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40"`
	GlobalRPS         int  `envconfig:"RATE_LIMIT_GLOBAL_RPS" default:"200"`
	GlobalBurst       int  `envconfig:"RATE_LIMIT_GLOBAL_BURST" default:"400"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// SandboxConfig holds in-process execution limits.
type SandboxConfig struct {
	PoolSize         int           `envconfig:"SANDBOX_POOL_SIZE" default:"4"`
	Timeout          time.Duration `envconfig:"SANDBOX_TIMEOUT" default:"5s"`
	MaxCallStackSize int           `envconfig:"SANDBOX_MAX_CALL_STACK" default:"1024"`
	AcquireTimeout   time.Duration `envconfig:"SANDBOX_ACQUIRE_TIMEOUT" default:"5s"`
}

// LibraryConfig holds the bound library location and output surface id.
type LibraryConfig struct {
	URL      string `envconfig:"LIBRARY_URL" default:"https://unpkg.com/rubico@1.5.15/es.js"`
	OutputID string `envconfig:"OUTPUT_ID" default:"sandbox-output"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8000",
			Host:         "0.0.0.0",
			AllowOrigins: []string{"*"},
			Compress:     true,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			GlobalRPS:         200,
			GlobalBurst:       400,
			Enabled:           true,
		},
		Sandbox: SandboxConfig{
			PoolSize:         4,
			Timeout:          5 * time.Second,
			MaxCallStackSize: 1024,
			AcquireTimeout:   5 * time.Second,
		},
		Library: LibraryConfig{
			URL:      "https://unpkg.com/rubico@1.5.15/es.js",
			OutputID: "sandbox-output",
		},
	}
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
