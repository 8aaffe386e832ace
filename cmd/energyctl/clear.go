package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached dataset",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c, db, err := openCache(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := c.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clearing %s: %w", c.Key(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", c.Key())
	return nil
}
