// Package config loads runtime settings for the ahss binary from the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds every environment-driven setting.
type Config struct {
	DataDir           string `env:"AHSS_DATA_DIR"`
	HTTPAddr          string `env:"AHSS_HTTP_ADDR"           envDefault:":8080"`
	DurationMonths    int    `env:"AHSS_DURATION_MONTHS"     envDefault:"24"`
	InterventionMonth int    `env:"AHSS_INTERVENTION_MONTH"  envDefault:"3"`
	Seed              int64  `env:"AHSS_SEED"                envDefault:"0"`
	CatalogFile       string `env:"AHSS_CATALOG_FILE"`
	FontPath          string `env:"AHSS_FONT_PATH"`
	LogLevel          string `env:"AHSS_LOG_LEVEL"           envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the environment, fills derived defaults and validates.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".ahss")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the simulator cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.DurationMonths <= 0 {
		errs = append(errs, fmt.Errorf("AHSS_DURATION_MONTHS must be > 0, got %d", c.DurationMonths))
	}
	if c.InterventionMonth <= 0 {
		errs = append(errs, fmt.Errorf("AHSS_INTERVENTION_MONTH must be > 0, got %d", c.InterventionMonth))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("AHSS_LOG_LEVEL %q: must be one of debug, info, warn, error", s)
	}
}
