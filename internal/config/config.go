// Package config reads tock settings from the environment. Command-line flags
// override whatever is set here.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-backed settings
type Config struct {
	DB       string        `env:"TOCK_DB"`
	Driver   string        `env:"TOCK_DRIVER" envDefault:"sqlite"`
	Tick     time.Duration `env:"TOCK_TICK" envDefault:"1s"`
	Poll     time.Duration `env:"TOCK_POLL" envDefault:"1s"`
	LogLevel string        `env:"TOCK_LOG_LEVEL" envDefault:"warn"`
}

// ParseEnv loads configuration from environment variables
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses a Config and validates it
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Tick <= 0 {
		return Config{}, fmt.Errorf("TOCK_TICK must be positive, got %s", cfg.Tick)
	}
	if cfg.Poll <= 0 {
		return Config{}, fmt.Errorf("TOCK_POLL must be positive, got %s", cfg.Poll)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseLevel maps debug, info, warn or error to a slog level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
