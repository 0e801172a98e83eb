package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://localhost/nudge")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("AI_BASE_URL", "")
	t.Setenv("CHECK_INTERVAL", "")
	t.Setenv("DEFAULT_TIMEZONE", "")
	t.Setenv("DEV_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/nudge", cfg.DatabaseURI)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.AIBaseURL)
	assert.Equal(t, time.Minute, cfg.CheckInterval)
	assert.Equal(t, "UTC", cfg.DefaultTimezone)
	assert.False(t, cfg.DevMode)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CHECK_INTERVAL", "30s")
	t.Setenv("DEFAULT_TIMEZONE", "Asia/Taipei")
	t.Setenv("METRICS_ADDR", ":9090")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.CheckInterval)
	assert.Equal(t, "Asia/Taipei", cfg.DefaultTimezone)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.True(t, cfg.DevMode)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("CHECK_INTERVAL", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CHECK_INTERVAL", "-1m")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("CHECK_INTERVAL", "1m")
	t.Setenv("DEFAULT_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.EqualError(t, (&Config{TelegramToken: "x"}).Validate(), "DATABASE_URI is required")
	assert.EqualError(t, (&Config{DatabaseURI: "x"}).Validate(), "TELEGRAM_TOKEN is required")
}
