// Package main provides the entry point for the fuel price tracker CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/andygrunwald/fuel-prices/internal/config"
	"github.com/andygrunwald/fuel-prices/internal/database"
	"github.com/andygrunwald/fuel-prices/internal/models"
	"github.com/andygrunwald/fuel-prices/internal/prices"
)

var (
	// Version is set at build time.
	Version = "dev"
	// Commit is set at build time.
	Commit = "none"
	// BuildDate is set at build time.
	BuildDate = "unknown"
)

var cfg *config.Config

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "fuelprices",
		Short: "Fuel Prices - Track gas station prices in Montes Claros",
		Long: `Fuel Prices is a small web application to record, browse and analyse
fuel prices per gas station.

Features:
  - HTML pages to add, edit and delete prices
  - JSON API for prices and statistics
  - SQLite, PostgreSQL or in-memory storage
  - Sample data generator
  - Prometheus metrics endpoint
  - Status endpoint for operational visibility`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.DatabaseDriver, "database-driver", cfg.DatabaseDriver, "Storage driver (sqlite, postgres, memory)")
	rootCmd.PersistentFlags().StringVar(&cfg.DatabaseDSN, "database-dsn", cfg.DatabaseDSN, "Database DSN, a file path for sqlite")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (json, console)")
	rootCmd.PersistentFlags().StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for number formatting")

	// Add subcommands
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger() zerolog.Logger {
	var logger zerolog.Logger

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set log format
	if cfg.LogFormat == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	return logger
}

// store is what the commands need from a storage backend.
type store interface {
	prices.Store
	Driver() string
	Ping(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	InsertAll(ctx context.Context, records []models.PriceRecord) (int, error)
	ReplaceAll(ctx context.Context, records []models.PriceRecord) (int, error)
	Close() error
}

func openStore(logger zerolog.Logger) (store, error) {
	if cfg.DatabaseDriver == database.DriverMemory {
		logger.Warn().Msg("using in-memory storage, records are lost on exit")
		return database.NewMemory(), nil
	}

	db, err := database.New(cfg.DatabaseDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}
