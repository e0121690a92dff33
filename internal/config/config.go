// Package config loads process configuration from the environment.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/devstage/internal/store"
)

// Backend names a persistence backend.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

// Config is the process configuration. Every field can be set from the
// environment and overridden by CLI flags.
type Config struct {
	Backend       Backend `env:"DEVSTAGE_BACKEND" envDefault:"sqlite"`
	DBPath        string  `env:"DEVSTAGE_DB"`
	RedisAddr     string  `env:"DEVSTAGE_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB       int     `env:"DEVSTAGE_REDIS_DB" envDefault:"0"`
	Format        string  `env:"DEVSTAGE_FORMAT" envDefault:"text"`
	ComponentsDir string  `env:"DEVSTAGE_COMPONENTS" envDefault:"components"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Config from the environment and fills computed defaults.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	return cfg, nil
}

// DefaultDBPath returns the SQLite database location:
// $XDG_STATE_HOME/devstage/state.db, else ~/.local/state/devstage/state.db.
func DefaultDBPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "devstage", "state.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "devstage.db"
	}
	return filepath.Join(home, ".local", "state", "devstage", "state.db")
}

// Validate checks field values that the environment parser cannot.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("sqlite backend requires a database path")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis backend requires an address")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want sqlite, redis or memory)", c.Backend)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q (want text or json)", c.Format)
	}
	return nil
}

// OpenBackend opens the configured persistence backend. The caller
// closes it.
func (c Config) OpenBackend(ctx context.Context) (store.Backend, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Backend {
	case BackendRedis:
		return store.DialRedis(ctx, c.RedisAddr, c.RedisDB)
	case BackendMemory:
		return store.NewMemory(), nil
	}

	if err := os.MkdirAll(filepath.Dir(c.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return store.OpenSQLite(c.DBPath)
}
