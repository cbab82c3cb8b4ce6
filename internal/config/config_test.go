package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := LoadClient("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, OnConflictAsk, cfg.OnConflict)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.LookupDebounce)
	assert.Equal(t, MoveConfig{
		Timeout:            5 * time.Second,
		DoubleMoveWindow:   2 * time.Second,
		BaseRetryDelay:     time.Second,
		MaxRetryDelay:      5 * time.Second,
		MaxPending:         10,
		MaxConcurrentPerID: 1,
		MaxAutoRetries:     2,
	}, cfg.Move)
}

func TestLoadClient_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server_url: http://board.local:9000
on_conflict: Discard
cache_ttl: 30s
move:
  timeout: 2s
  max_auto_retries: 4
`)
	t.Setenv("GARAGEBOARD_MOVE_MAX_PENDING", "3")
	t.Setenv("GARAGEBOARD_LOG_LEVEL", "debug")

	cfg, err := LoadClient(path)
	require.NoError(t, err)

	assert.Equal(t, "http://board.local:9000", cfg.ServerURL)
	assert.Equal(t, "discard", cfg.OnConflict)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 2*time.Second, cfg.Move.Timeout)
	assert.Equal(t, 4, cfg.Move.MaxAutoRetries)
	assert.Equal(t, 3, cfg.Move.MaxPending)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Не переопределенные значения остаются по умолчанию
	assert.Equal(t, time.Second, cfg.Move.BaseRetryDelay)
}

func TestLoadClient_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown conflict policy", body: "on_conflict: merge\n"},
		{name: "zero timeout", body: "move:\n  timeout: 0s\n"},
		{name: "max delay below base", body: "move:\n  base_retry_delay: 2s\n  max_retry_delay: 1s\n"},
		{name: "negative retries", body: "move:\n  max_auto_retries: -1\n"},
		{name: "bad log level", body: "log_level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadClient(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadClient_MissingFile(t *testing.T) {
	_, err := LoadClient(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadServer(t *testing.T) {
	cfg, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 12*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 120, cfg.RateLimit)

	t.Setenv("GARAGEBOARD_ADDR", ":9999")
	t.Setenv("GARAGEBOARD_JWT_SECRET", "s3cret")
	cfg, err = LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "s3cret", cfg.JWTSecret)

	_, err = LoadServer(writeConfig(t, "rate_limit: 0\n"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
