package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"energy_dashboard/internal/ingest"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Parse a CSV export and store it as the cached dataset",
	Long: `Parses an energy CSV export (SendDate, Solar Power (kW),
Solar energy Generation  (kWh), consumptionValue (kW)) and replaces the
cached dataset with it. The dashboard picks it up on its next start.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	records, err := ingest.Load(&ingest.CSVParser{}, f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	c, db, err := openCache(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := c.Save(cmd.Context(), records); err != nil {
		return fmt.Errorf("saving %s: %w", c.Key(), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %s records from %s (%s)\n",
		humanize.Comma(int64(len(records))), filepath.Base(path), humanize.Bytes(uint64(info.Size())))
	if invalid := ingest.InvalidFields(records); invalid > 0 {
		fmt.Fprintf(out, "%s fields could not be parsed as numbers\n", humanize.Comma(int64(invalid)))
	}
	return nil
}
