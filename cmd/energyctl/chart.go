package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"energy_dashboard/internal/chart"
)

var (
	chartLimit int
	chartRate  float64
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Print the consumption and cost series of the cached dataset",
	Long: `Prints the time / consumption / cost rows the dashboard table and chart
are built from. Cost uses --rate, then the flat_rate from the config; without
either it is NaN.`,
	RunE: runChart,
}

func init() {
	chartCmd.Flags().IntVar(&chartLimit, "limit", 0, "print at most this many rows (0 for all)")
	chartCmd.Flags().Float64Var(&chartRate, "rate", 0, "tariff in ₹/kWh used for cost")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
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

	var rates chart.RateFunc
	switch {
	case chartRate > 0:
		rates = chart.FlatRate(chartRate)
	case cfg.FlatRate > 0:
		rates = chart.FlatRate(cfg.FlatRate)
	}

	rows := chart.Table(chart.Project(records, rates))
	if chartLimit > 0 && len(rows) > chartLimit {
		rows = rows[:chartLimit]
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-20s  %12s  %12s\n", "Time", "kWh", "Cost (₹)")
	fmt.Fprintln(out, "----------------------------------------------")
	for _, r := range rows {
		fmt.Fprintf(out, "%-20s  %12s  %12s\n", r.Time, r.Consumption, r.Cost)
	}
	fmt.Fprintf(out, "%d of %d rows\n", len(rows), len(records))
	return nil
}
