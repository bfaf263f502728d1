package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/susu3304/taru/internal/config"
	"github.com/susu3304/taru/internal/db"
)

var settlementsLimit int

var settlementsCmd = &cobra.Command{
	Use:   "settlements",
	Short: "List archived settlements from DATABASE_URL",
	Args:  cobra.NoArgs,
	RunE:  runSettlements,
}

func init() {
	settlementsCmd.Flags().IntVarP(&settlementsLimit, "limit", "n", 20, "Maximum number of settlements to show")
	rootCmd.AddCommand(settlementsCmd)
}

func runSettlements(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if !cfg.ArchiveEnabled() {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	rows, err := database.ListSettlements(ctx, settlementsLimit)
	if err != nil {
		return err
	}
	printSettlements(os.Stdout, rows)
	return nil
}

func printSettlements(w io.Writer, rows []db.Settlement) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No archived settlements.")
		return
	}
	bold := color.New(color.Bold)
	for _, row := range rows {
		var total float64
		for _, v := range row.Consumed {
			total += v
		}
		bold.Fprintf(w, "#%d %s", row.ID, row.Label)
		fmt.Fprintf(w, "  payer=%s closed=%s consumed=%.2f/%.2f price/unit=%.4f\n",
			row.Payer, row.ClosedAt.Format("2006-01-02 15:04"), total, row.NominalVolume, row.PricePerUnit)
	}
}
