package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	URL     string `env:"LOADER_TEST_URL" envDefault:"http://localhost:5000"`
	Retries int    `env:"LOADER_TEST_RETRIES" envDefault:"0"`
	Debug   bool   `env:"LOADER_TEST_DEBUG" envDefault:"false"`
}

func TestLoadAppliesDefaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "http://localhost:5000", cfg.URL)
	assert.Equal(t, 0, cfg.Retries)
	assert.False(t, cfg.Debug)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("LOADER_TEST_URL", "https://example.com")
	t.Setenv("LOADER_TEST_RETRIES", "3")
	t.Setenv("LOADER_TEST_DEBUG", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "https://example.com", cfg.URL)
	assert.Equal(t, 3, cfg.Retries)
	assert.True(t, cfg.Debug)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("LOADER_TEST_RETRIES", "not-a-number")

	var cfg testConfig
	assert.Error(t, Load(&cfg))
}
