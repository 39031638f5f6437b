package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noticket/waf/core/config"
)

type sampleConfig struct {
	Name    string `env:"CONFIG_TEST_NAME" envDefault:"waf"`
	Retries int    `env:"CONFIG_TEST_RETRIES" envDefault:"3"`
	Enabled bool   `env:"CONFIG_TEST_ENABLED"`
}

type requiredConfig struct {
	Secret string `env:"CONFIG_TEST_SECRET,required"`
}

// Not parallel: these tests mutate the process environment and the cache.

func TestLoad_DefaultsAndEnv(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)
	t.Setenv("CONFIG_TEST_RETRIES", "7")
	t.Setenv("CONFIG_TEST_ENABLED", "true")

	var cfg sampleConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "waf", cfg.Name)
	assert.Equal(t, 7, cfg.Retries)
	assert.True(t, cfg.Enabled)
}

func TestLoad_Cached(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)
	t.Setenv("CONFIG_TEST_NAME", "first")

	var a sampleConfig
	require.NoError(t, config.Load(&a))

	t.Setenv("CONFIG_TEST_NAME", "second")
	var b sampleConfig
	require.NoError(t, config.Load(&b))
	assert.Equal(t, "first", b.Name)

	config.Reset()
	var c sampleConfig
	require.NoError(t, config.Load(&c))
	assert.Equal(t, "second", c.Name)
}

func TestLoad_Errors(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)

	var missing requiredConfig
	assert.Error(t, config.Load(&missing))
	assert.Panics(t, func() { config.MustLoad(&requiredConfig{}) })

	var nilPtr *sampleConfig
	assert.ErrorIs(t, config.Load(nilPtr), config.ErrNotPointer)

	n := 1
	assert.ErrorIs(t, config.Load(&n), config.ErrNotPointer)
}

func TestLoad_InvalidValue(t *testing.T) {
	config.Reset()
	t.Cleanup(config.Reset)
	t.Setenv("CONFIG_TEST_RETRIES", "many")

	var cfg sampleConfig
	assert.Error(t, config.Load(&cfg))
}
