package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rightsctl",
	Short: "Inspect and edit the menu permissions of users and roles",
	Long: `rightsctl resolves the effective menu permissions of users from their
role defaults and per-user overrides, applies YAML rights documents and runs
the rights console server.

The permission backend is selected by the "backend" configuration attribute:
"api" talks to the remote permission API, "database" reads and writes the
schema directly.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
