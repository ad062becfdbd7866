package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 256, cfg.ThumbnailSize)
	assert.Equal(t, 300.0, cfg.DefaultDPI)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DEFAULT_DPI", "150")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 150.0, cfg.DefaultDPI)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("THUMBNAIL_SIZE", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("THUMBNAIL_SIZE", "128")
	t.Setenv("PORT", "not-a-port")
	_, err = Load()
	assert.Error(t, err)
}

func TestOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: "http://localhost:5173, https://design.example.com,,"}
	assert.Equal(t, []string{"http://localhost:5173", "https://design.example.com"}, cfg.Origins())
	assert.Equal(t, []string{"localhost:5173", "design.example.com"}, cfg.OriginPatterns())
}
