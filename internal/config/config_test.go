package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Host)
	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, "0.0.0.0:5000", cfg.Addr())
	require.False(t, cfg.Debug)
	require.Equal(t, "info", cfg.Level())
	require.Equal(t, []string{"http://localhost:5173"}, cfg.Origins())
	require.Equal(t, ":memory:", cfg.DBPath)
	require.False(t, cfg.StrictRooms)
	require.Equal(t, 256, cfg.SendBuffer)
	require.EqualValues(t, 4096, cfg.MaxMessageSize)
	require.Equal(t, 10*time.Second, cfg.WriteWait)
	require.Equal(t, 60*time.Second, cfg.PongWait)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DB_PATH", "/tmp/rooms.db")
	t.Setenv("STRICT_ROOMS", "true")
	t.Setenv("PONG_WAIT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9090", cfg.Addr())
	require.Equal(t, "debug", cfg.Level())
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
	require.Equal(t, "/tmp/rooms.db", cfg.DBPath)
	require.True(t, cfg.StrictRooms)
	require.Equal(t, 30*time.Second, cfg.PongWait)
}

func TestLoadLogLevelOverridesDebug(t *testing.T) {
	t.Setenv("DEBUG", "true")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "warn", cfg.Level())
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("PORT", "notanumber")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadPortOutOfRange(t *testing.T) {
	t.Setenv("PORT", "70000")
	_, err := Load()
	require.ErrorContains(t, err, "PORT must be between")
}
