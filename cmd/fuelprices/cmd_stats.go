package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/andygrunwald/fuel-prices/internal/models"
	"github.com/andygrunwald/fuel-prices/internal/prices"
	"github.com/andygrunwald/fuel-prices/internal/report"
)

func statsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print price statistics",
		Long:  "Prints the totals and the per fuel type statistics of the stored prices.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()

			db, err := openStore(logger)
			if err != nil {
				return err
			}
			defer db.Close()

			r, err := report.NewEngine(prices.New(db, logger)).Compute(context.Background())
			if err != nil {
				return fmt.Errorf("computing statistics: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report.JSON(r))
			}

			return printReport(out, r)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

// printReport writes the totals and per fuel type statistics, formatting
// numbers for the configured locale.
func printReport(w io.Writer, r models.Report) error {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return fmt.Errorf("parsing locale %q: %w", cfg.Locale, err)
	}
	p := message.NewPrinter(tag)

	p.Fprintf(w, "Total prices:   %d\n", r.TotalRecords)
	p.Fprintf(w, "Total stations: %d\n", r.TotalStations)
	for _, s := range r.ByFuelType {
		p.Fprintf(w, "\n%s (%d)\n", s.FuelType, s.Count)
		p.Fprintf(w, "  min R$ %.2f  max R$ %.2f  avg R$ %.2f\n", s.Min, s.Max, s.Avg)
		p.Fprintf(w, "  %s\n", strings.Join(s.Stations, ", "))
	}
	return nil
}
