package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, BackendFile, cfg.StateBackend)
	assert.Equal(t, 5, cfg.MaxQuantity)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 100*time.Millisecond, cfg.ReconcileDelay())
	assert.Equal(t, time.Second, cfg.WishlistFetchWindow())
	assert.Empty(t, cfg.DebugAddr)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "https://api.parampare.example")
	t.Setenv("STOREFRONT_STATE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("STOREFRONT_MAX_QUANTITY", "3")
	t.Setenv("STOREFRONT_RECONCILE_DELAY_MS", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.parampare.example", cfg.APIBaseURL)
	assert.Equal(t, BackendRedis, cfg.StateBackend)
	assert.Equal(t, "redis.internal:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.MaxQuantity)
	assert.Equal(t, 250*time.Millisecond, cfg.ReconcileDelay())
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STOREFRONT_STATE_BACKEND", "dynamo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown state backend")
}

func TestLoadRejectsZeroMaxQuantity(t *testing.T) {
	t.Setenv("STOREFRONT_MAX_QUANTITY", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max quantity")
}

func TestResolveStatePath(t *testing.T) {
	cfg := &Config{StatePath: "/var/lib/storefront/state.json"}
	path, err := cfg.ResolveStatePath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/storefront/state.json", path)

	cfg = &Config{}
	path, err = cfg.ResolveStatePath()
	require.NoError(t, err)
	assert.Contains(t, path, ".parampare")
	assert.Contains(t, path, "state.json")
}
