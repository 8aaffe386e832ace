package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"energy_dashboard/internal/database"
	"energy_dashboard/internal/model"
	"energy_dashboard/internal/profile"
)

var (
	profileName     string
	profileProvider string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage user profiles shown on the dashboard",
}

var profileSetCmd = &cobra.Command{
	Use:   "set USER_ID",
	Short: "Create or update a user profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileSet,
}

var profileShowCmd = &cobra.Command{
	Use:   "show USER_ID",
	Short: "Print a user profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

func init() {
	profileSetCmd.Flags().StringVar(&profileName, "name", "", "display name")
	profileSetCmd.Flags().StringVar(&profileProvider, "provider", "", "electricity provider (DISCOM id)")
	profileCmd.AddCommand(profileSetCmd, profileShowCmd)
	rootCmd.AddCommand(profileCmd)
}

func openProfiles(cmd *cobra.Command) (*profile.SQLiteStore, *database.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := database.Open(cmd.Context(), cfg.GetDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return profile.NewSQLiteStore(db.Conn()), db, nil
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	store, db, err := openProfiles(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	p := model.UserProfile{ID: args[0], Name: profileName, ElectricityProvider: profileProvider}
	if err := store.Put(cmd.Context(), p); err != nil {
		return fmt.Errorf("saving profile %s: %w", p.ID, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s\n", p.ID)
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	store, db, err := openProfiles(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := store.Get(cmd.Context(), args[0])
	if errors.Is(err, profile.ErrNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "No profile for %s\n", args[0])
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading profile %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:       %s\n", p.ID)
	fmt.Fprintf(out, "Name:     %s\n", p.Name)
	fmt.Fprintf(out, "Provider: %s\n", p.ElectricityProvider)
	return nil
}
