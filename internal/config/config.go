package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/parampare/storefront/pkg/config"
)

// Store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds all configuration for the storefront client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend API origin; the /api base path is appended by the gateway.
	APIBaseURL string `env:"STOREFRONT_API_URL" envDefault:"http://localhost:5000"`

	// Local store
	StateBackend string `env:"STOREFRONT_STATE_BACKEND" envDefault:"file"`
	StatePath    string `env:"STOREFRONT_STATE_PATH" envDefault:""`

	// Redis (only used when StateBackend is "redis")
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// HTTP
	HTTPTimeoutSeconds int `env:"STOREFRONT_HTTP_TIMEOUT_SECONDS" envDefault:"30"`
	HTTPMaxRetries     int `env:"STOREFRONT_HTTP_RETRIES" envDefault:"0"`

	// Synchronization policy. These started life as magic constants in the
	// web client; they are tunables here, not contracts.
	ReconcileDelayMs      int `env:"STOREFRONT_RECONCILE_DELAY_MS" envDefault:"100"`
	WishlistFetchWindowMs int `env:"STOREFRONT_WISHLIST_FETCH_WINDOW_MS" envDefault:"1000"`
	MaxQuantity           int `env:"STOREFRONT_MAX_QUANTITY" envDefault:"5"`

	// Debug listener (health + metrics); empty disables it.
	DebugAddr string `env:"STOREFRONT_DEBUG_ADDR" envDefault:""`

	// Tracing
	TracingEnabled  bool    `env:"STOREFRONT_TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	switch c.StateBackend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown state backend: %q", c.StateBackend)
	}
	if c.MaxQuantity < 1 {
		return fmt.Errorf("max quantity must be at least 1, got %d", c.MaxQuantity)
	}
	return nil
}

// ResolveStatePath returns the state file path, defaulting to
// ~/.parampare/state.json.
func (c *Config) ResolveStatePath() (string, error) {
	if c.StatePath != "" {
		return c.StatePath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".parampare", "state.json"), nil
}

// HTTPTimeout returns the HTTP timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// ReconcileDelay returns the cart reconcile delay as a duration.
func (c *Config) ReconcileDelay() time.Duration {
	return time.Duration(c.ReconcileDelayMs) * time.Millisecond
}

// WishlistFetchWindow returns the wishlist fetch rate-limit window as a duration.
func (c *Config) WishlistFetchWindow() time.Duration {
	return time.Duration(c.WishlistFetchWindowMs) * time.Millisecond
}
