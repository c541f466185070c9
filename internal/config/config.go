// Package config provides configuration structures and loading for the fuel price tracker.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable pointing to an optional YAML config file.
const FileEnv = "CONFIG_FILE"

// Config holds all configuration for the fuel price tracker.
type Config struct {
	// Database driver (sqlite, postgres, memory)
	DatabaseDriver string `yaml:"database_driver" env:"DATABASE_DRIVER"`
	// Database DSN; a file path for sqlite
	DatabaseDSN string `yaml:"database_dsn" env:"DATABASE_DSN"`
	// Log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// Log format (json, console)
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
	// HTTP server address
	HTTPAddr string `yaml:"http_addr" env:"HTTP_ADDR"`
	// Interval between statistics gauge refreshes
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"REFRESH_INTERVAL"`
	// Grace period for in-flight requests on shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// Locale for number formatting in HTML pages
	Locale string `yaml:"locale" env:"LOCALE"`
	// Seed settings
	Seed SeedConfig `yaml:"seed" envPrefix:"SEED_"`
}

// SeedConfig holds configuration for populating the store with sample data.
type SeedConfig struct {
	// Keep existing records instead of replacing them
	Keep bool `yaml:"keep" env:"KEEP"`
	// Random seed; 0 picks a time based one
	RandomSeed int64 `yaml:"random_seed" env:"RANDOM_SEED"`
	// How far back sample timestamps may go
	MaxAge time.Duration `yaml:"max_age" env:"MAX_AGE"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DatabaseDriver:  "sqlite",
		DatabaseDSN:     "precos_combustivel.db",
		LogLevel:        "info",
		LogFormat:       "json",
		HTTPAddr:        ":5000",
		RefreshInterval: 5 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
		Locale:          "pt-BR",
		Seed: SeedConfig{
			MaxAge: 30 * 24 * time.Hour,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, a .env file in the working directory and the environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile overlays values from a YAML file.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decoding config file: %w", err)
	}
	return nil
}

// LoadFromEnv overlays values from environment variables. Unset variables
// leave the current value untouched.
func (c *Config) LoadFromEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("--database-dsn is required for driver %s", c.DatabaseDriver)
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver %q (sqlite, postgres, memory)", c.DatabaseDriver)
	}

	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.RefreshInterval)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}
