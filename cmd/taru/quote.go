package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/susu3304/taru/internal/barrel"
)

var (
	quotePrice    float64
	quoteVolume   float64
	quoteConsumed string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a hypothetical close without starting a server",
	Long:  `Apply the closing rule to the given per-participant consumption and print what each participant would owe.`,
	Example: `  taru quote --price 10000 --volume 10 --consumed alice=2.5,bob=1
  taru quote --price 10 --volume 10 --consumed A=2`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().Float64Var(&quotePrice, "price", 0, "Price paid for the barrel (required)")
	quoteCmd.Flags().Float64Var(&quoteVolume, "volume", 0, "Nominal barrel volume (required)")
	quoteCmd.Flags().StringVar(&quoteConsumed, "consumed", "", "Comma separated name=amount pairs")
	quoteCmd.MarkFlagRequired("price")
	quoteCmd.MarkFlagRequired("volume")
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	if err := validateQuoteInputs(quotePrice, quoteVolume); err != nil {
		return err
	}

	consumed, err := parseConsumption(quoteConsumed)
	if err != nil {
		return err
	}

	printQuote(os.Stdout, quotePrice, quoteVolume, barrel.Settle(quotePrice, quoteVolume, consumed))
	return nil
}

func validateQuoteInputs(price, volume float64) error {
	if !isPositive(price) {
		return fmt.Errorf("--price must be a positive finite number")
	}
	if !isPositive(volume) {
		return fmt.Errorf("--volume must be a positive finite number")
	}
	if math.IsInf(price/volume, 0) {
		return fmt.Errorf("--volume is too small for --price")
	}
	return nil
}

func isPositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// parseConsumption reads "name=amount,name=amount". Repeated names accumulate.
func parseConsumption(s string) (map[string]float64, error) {
	consumed := make(map[string]float64)
	if strings.TrimSpace(s) == "" {
		return consumed, nil
	}

	for _, pair := range strings.Split(s, ",") {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid consumption %q: want name=amount", pair)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount for %s: %w", name, err)
		}
		if err := barrel.ValidateAmount(amount); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		consumed[name] += amount
	}
	return consumed, nil
}

func printQuote(w io.Writer, price, volume float64, s barrel.Settlement) {
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow)

	cyan.Fprintln(w, "BARREL QUOTE")
	fmt.Fprintf(w, "Price:          %.2f\n", price)
	fmt.Fprintf(w, "Volume:         %.2f\n", volume)
	fmt.Fprintf(w, "Consumed:       %.2f\n", s.TotalConsumed)
	fmt.Fprintf(w, "Price per unit: %.4f\n", s.PricePerUnit)
	if s.TotalConsumed > volume {
		yellow.Fprintln(w, "Consumption exceeds the nominal volume; pricing by volume.")
	}
	fmt.Fprintln(w)

	names := make([]string, 0, len(s.Owed))
	for name := range s.Owed {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s.Owed[names[i]] != s.Owed[names[j]] {
			return s.Owed[names[i]] > s.Owed[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %8.2f -> %10.2f\n", name, s.Consumed[name], s.Owed[name])
	}
}
