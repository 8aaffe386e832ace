package main

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"energy_dashboard/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the dashboard statistics for the cached dataset",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c, db, err := openCache(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := c.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading %s: %w", c.Key(), err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No cached energy data")
		return nil
	}

	s := stats.Compute(records)
	fmt.Fprintf(out, "Records:            %s\n", humanize.Comma(int64(s.RecordCount)))
	fmt.Fprintf(out, "Unique days:        %s\n", humanize.Comma(int64(s.UniqueDays)))
	fmt.Fprintf(out, "Total solar energy: %s kWh\n", formatNumber(s.TotalSolarEnergy.Float()))
	return nil
}

// formatNumber renders v with thousands separators and two decimals, or
// "NaN" when it is not a number.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	return humanize.FormatFloat("#,###.##", v)
}
