package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rights-console/pkg/config"
	"github.com/doodlesbykumbi/rights-console/pkg/db"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database",
	Long:  `Manage the schema used by the database backend and the audit store.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'db' requires a subcommand (migrate, down, status)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
}

// databaseURL returns the configured database URL
func databaseURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	url := cfg.DatabaseURL
	if url == "" {
		url = db.URL()
	}
	if url == "" {
		return "", fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return url, nil
}
