package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/andygrunwald/fuel-prices/internal/models"
	"github.com/andygrunwald/fuel-prices/internal/report"
	"github.com/andygrunwald/fuel-prices/internal/seed"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the store with sample prices",
		Long:  "Generates two to four prices for each sample gas station in Montes Claros - MG. Existing records are replaced unless --keep is set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()

			randomSeed := cfg.Seed.RandomSeed
			if randomSeed == 0 {
				randomSeed = time.Now().UnixNano()
			}

			logger.Info().
				Int64("randomSeed", randomSeed).
				Bool("keep", cfg.Seed.Keep).
				Dur("maxAge", cfg.Seed.MaxAge).
				Msg("starting seed")

			// Connect to database
			db, err := openStore(logger)
			if err != nil {
				return err
			}
			defer db.Close()

			records := seed.NewGenerator(randomSeed, cfg.Seed.MaxAge).Generate()

			ctx := context.Background()
			if cfg.Seed.Keep {
				if _, err := db.InsertAll(ctx, records); err != nil {
					return fmt.Errorf("inserting sample prices: %w", err)
				}
			} else {
				if _, err := db.ReplaceAll(ctx, records); err != nil {
					return fmt.Errorf("replacing prices: %w", err)
				}
			}

			if err := printSeedSummary(cmd.OutOrStdout(), records); err != nil {
				return err
			}

			logger.Info().Int("records", len(records)).Msg("seed completed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&cfg.Seed.Keep, "keep", cfg.Seed.Keep, "Keep existing records")
	cmd.Flags().Int64Var(&cfg.Seed.RandomSeed, "random-seed", cfg.Seed.RandomSeed, "Random seed (0 picks one)")
	cmd.Flags().DurationVar(&cfg.Seed.MaxAge, "max-age", cfg.Seed.MaxAge, "How far back sample timestamps may go")

	return cmd
}

// printSeedSummary reports what was generated, with the same statistics the
// stats command prints.
func printSeedSummary(w io.Writer, records []models.PriceRecord) error {
	fmt.Fprintf(w, "Generated %d sample prices\n\n", len(records))
	return printReport(w, report.Build(records))
}
