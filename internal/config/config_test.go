package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	content := `
server:
  host: "127.0.0.1"
  port: 8080
  max_connections: 5000

redis:
  addr: "redis:6379"
  password: "secret"
  db: 1

game:
  grace_period: 30
  clock_sweep_interval: 2
  room_timeout: 15

security:
  allowed_origins:
    - "http://localhost:3000"
    - "https://example.com"
  rate_limit:
    max_per_second: 20
    max_per_minute: 120
    ban_duration: 120
  message_limit:
    max_per_second: 50
  chat_limit:
    max_per_second: 2
    max_per_minute: 60
    cooldown: 10
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5000, cfg.Server.MaxConnections)

	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 1, cfg.Redis.DB)

	assert.Equal(t, 30*time.Second, cfg.Game.GracePeriodDuration())
	assert.Equal(t, 2*time.Second, cfg.Game.ClockSweepIntervalDuration())
	assert.Equal(t, 15*time.Minute, cfg.Game.RoomTimeoutDuration())

	assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 120*time.Minute, cfg.Security.RateLimit.BanDurationTime())
	assert.Equal(t, 10*time.Second, cfg.Security.ChatLimit.CooldownDuration())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialConfigGetsDefaults(t *testing.T) {
	t.Parallel()

	content := `
server:
  port: 9000
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Explicit value preserved
	assert.Equal(t, 9000, cfg.Server.Port)

	// Everything else falls back to defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 1024, cfg.Server.MaxConnections)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 60*time.Second, cfg.Game.GracePeriodDuration())
	assert.Equal(t, time.Second, cfg.Game.ClockSweepIntervalDuration())
	assert.Equal(t, 30*time.Minute, cfg.Game.RoomTimeoutDuration())
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Game.GracePeriod)
	assert.NotZero(t, cfg.Security.RateLimit.MaxPerSecond)
	assert.NotZero(t, cfg.Security.ChatLimit.MaxPerSecond)
}
