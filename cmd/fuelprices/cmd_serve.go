package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andygrunwald/fuel-prices/internal/http"
	"github.com/andygrunwald/fuel-prices/internal/prices"
	"github.com/andygrunwald/fuel-prices/internal/report"
	"github.com/andygrunwald/fuel-prices/internal/scheduler"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web application",
		Long:  "Starts the HTML pages, the JSON API and a background refresher that publishes price statistics as metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()

			logger.Info().
				Str("version", Version).
				Str("commit", Commit).
				Str("buildDate", BuildDate).
				Str("httpAddr", cfg.HTTPAddr).
				Str("databaseDriver", cfg.DatabaseDriver).
				Dur("refreshInterval", cfg.RefreshInterval).
				Msg("starting fuel price tracker")

			// Connect to database
			db, err := openStore(logger)
			if err != nil {
				return err
			}
			defer db.Close()

			registry := http.NewRegistry()
			metrics := http.NewMetrics(registry)

			svc := prices.New(db, logger)
			svc.SetMetrics(metrics)
			engine := report.NewEngine(svc)

			// Create scheduler
			sched := scheduler.New(engine, metrics, cfg.RefreshInterval, logger)

			// Create HTTP server
			httpServer, err := http.NewServer(cfg.HTTPAddr, http.Dependencies{
				Prices:    svc,
				Reports:   engine,
				Database:  db,
				Scheduler: sched,
				Metrics:   metrics,
				Registry:  registry,
				Locale:    cfg.Locale,
			}, logger)
			if err != nil {
				return err
			}

			// Setup signal handling
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			// Start HTTP server in goroutine
			go func() {
				if err := httpServer.Start(); err != nil {
					logger.Error().Err(err).Msg("HTTP server error")
					cancel()
				}
			}()

			// Start scheduler in goroutine
			go func() {
				if err := sched.Start(ctx); err != nil && err != context.Canceled {
					logger.Error().Err(err).Msg("scheduler error")
					cancel()
				}
			}()

			// Wait for signal
			select {
			case sig := <-sigCh:
				logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
			case <-ctx.Done():
			}

			// Graceful shutdown
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer shutdownCancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("HTTP server shutdown error")
			}

			logger.Info().Msg("shutdown complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address")
	cmd.Flags().DurationVar(&cfg.RefreshInterval, "refresh-interval", cfg.RefreshInterval, "Interval between statistics refreshes")
	cmd.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Grace period for in-flight requests on shutdown")

	return cmd
}
