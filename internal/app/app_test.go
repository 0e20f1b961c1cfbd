package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parampare/storefront/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:  "test",
		LogLevel:     "error",
		APIBaseURL:   "http://localhost:5000",
		StateBackend: config.BackendFile,
		StatePath:    filepath.Join(t.TempDir(), "state.json"),
		MaxQuantity:  5,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWiresFileBackend(t *testing.T) {
	a, err := New(testConfig(t), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	assert.NotNil(t, a.Store)
	assert.NotNil(t, a.Session)
	assert.NotNil(t, a.Cart)
	assert.NotNil(t, a.Wishlist)
	assert.NotNil(t, a.Catalog)
	assert.NotNil(t, a.Account)
	assert.NotNil(t, a.Checkout)
	assert.NotNil(t, a.Addresses)
	assert.NotNil(t, a.Chat)
}

func TestNewWiresRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.StateBackend = config.BackendRedis
	cfg.RedisAddr = mr.Addr()

	a, err := New(cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	require.NoError(t, a.Store.Set(context.Background(), "probe", "v"))
	assert.True(t, mr.Exists("storefront:probe"))
}

func TestNewRejectsUnreachableRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.StateBackend = config.BackendRedis
	cfg.RedisAddr = "127.0.0.1:1" // nothing listens here

	_, err := New(cfg, testLogger())
	assert.Error(t, err)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	a, err := New(testConfig(t), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
