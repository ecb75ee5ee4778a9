package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "development", cfg.Environment)
		assert.Equal(t, "http://localhost:3000/api", cfg.API.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.API.Timeout())
		assert.Equal(t, "/auth/refresh", cfg.Auth.RefreshPath)
		assert.Equal(t, time.Minute, cfg.Auth.ExpiryMargin)
		assert.Equal(t, 20*time.Minute, cfg.Scheduling.SlotInterval())
		assert.Equal(t, time.Hour, cfg.Scheduling.LeadTime())
		assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
		assert.False(t, cfg.OTEL.Enabled)
		assert.False(t, cfg.WhatsApp.Enabled)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("IPS_API_BASE_URL", "https://api.salucol.co")
		t.Setenv("SCHEDULING_SLOT_INTERVAL_MINUTES", "30")
		t.Setenv("REDIS_HOST", "redis.internal")
		t.Setenv("REDIS_PORT", "6380")
		t.Setenv("OTEL_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://api.salucol.co", cfg.API.BaseURL)
		assert.Equal(t, 30*time.Minute, cfg.Scheduling.SlotInterval())
		assert.Equal(t, "redis.internal:6380", cfg.Redis.RedisAddr())
		assert.True(t, cfg.OTEL.Enabled)
	})

	t.Run("malformed numbers fall back to defaults", func(t *testing.T) {
		t.Setenv("IPS_API_TIMEOUT_SECONDS", "not-a-number")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 30, cfg.API.TimeoutSeconds)
	})
}
