package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"energy_dashboard/internal/cache"
	"energy_dashboard/internal/config"
	"energy_dashboard/internal/database"
)

var (
	cfgFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "energyctl",
	Short: "Manage the energy dashboard's cached data",
	Long: `energyctl imports energy CSV exports into the dashboard cache and prints
the statistics and consumption series the dashboard shows for them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default from config, else ./data.db)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the configuration file and applies the --db flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// openCache opens the database and the cache configured on top of it. The
// caller closes the returned DB.
func openCache(ctx context.Context, cfg *config.Config) (*cache.Cache, *database.DB, error) {
	db, err := database.Open(ctx, cfg.GetDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	backend := cache.NewBackend(cfg.GetCacheBackend(), cfg.GetCacheDir(), db.Conn())
	var opts []cache.Option
	if cfg.Cache.Key != "" {
		opts = append(opts, cache.WithKey(cfg.Cache.Key))
	}
	if cfg.Cache.MaxRecords > 0 {
		opts = append(opts, cache.WithMaxRecords(cfg.Cache.MaxRecords))
	}
	return cache.New(backend, opts...), db, nil
}
