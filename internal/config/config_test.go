package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, 30, cfg.AI.TimeoutSeconds)
	assert.Equal(t, 90, cfg.AI.ExtractTimeoutSeconds)
	assert.False(t, cfg.Enabled(), "no key means offline")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "test-key-123")
	t.Setenv("BOOKSNEO_LOG_LEVEL", "debug")
	t.Setenv("BOOKSNEO_AI_TIMEOUT_SECONDS", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Enabled())
	assert.Equal(t, "test-key-123", cfg.AI.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 12, cfg.AI.TimeoutSeconds)
}
