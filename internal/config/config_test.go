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
	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "fr", cfg.Language)
	assert.Equal(t, 7, cfg.DefaultHandSize)
	assert.Zero(t, cfg.SessionTTL)
	assert.Equal(t, 6*time.Second, cfg.PresenceTimeout)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.Console)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GEOBLUFF_ADDR", " 127.0.0.1:9000 ")
	t.Setenv("GEOBLUFF_LANGUAGE", "EN")
	t.Setenv("GEOBLUFF_SESSION_TTL", "2h")
	t.Setenv("GEOBLUFF_PRESENCE_TIMEOUT", "10s")
	t.Setenv("GEOBLUFF_DEFAULT_HAND_SIZE", "5")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.PresenceTimeout)
	assert.Equal(t, 5, cfg.DefaultHandSize)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("GEOBLUFF_PRESENCE_TIMEOUT", "0s")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnparsable(t *testing.T) {
	t.Setenv("GEOBLUFF_SESSION_TTL", "forever")
	_, err := Load()
	assert.Error(t, err)
}
