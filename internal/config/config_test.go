package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOCK_DB", "")
	t.Setenv("TOCK_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.DB)
	assert.Equal(t, time.Second, cfg.Tick)
	assert.Equal(t, time.Second, cfg.Poll)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("TOCK_DB", "/tmp/counters.db")
	t.Setenv("TOCK_DRIVER", "zombiezen")
	t.Setenv("TOCK_TICK", "250ms")
	t.Setenv("TOCK_POLL", "2s")
	t.Setenv("TOCK_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/counters.db", cfg.DB)
	assert.Equal(t, "zombiezen", cfg.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Tick)
	assert.Equal(t, 2*time.Second, cfg.Poll)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"bad duration", "TOCK_TICK", "soon", "parse env:"},
		{"zero tick", "TOCK_TICK", "0s", "TOCK_TICK must be positive"},
		{"negative poll", "TOCK_POLL", "-1s", "TOCK_POLL must be positive"},
		{"bad level", "TOCK_LOG_LEVEL", "loud", "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("error")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, level)

	level, err = ParseLevel(" INFO ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}
