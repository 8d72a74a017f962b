package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rights-console/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending database migrations to bring the schema
up to date. Migrations are embedded in the binary.

Example:
  rightsctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrations(); err != nil {
			fail("Migration failed: %v", err)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  rightsctl db down      # Rollback 1 migration
  rightsctl db down 3    # Rollback 3 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			_, _ = fmt.Sscanf(args[0], "%d", &steps)
		}

		if err := runMigrationsDown(steps); err != nil {
			fail("Rollback failed: %v", err)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version and the embedded migrations.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showMigrationStatus(); err != nil {
			fail("Failed to get status: %v", err)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

func runMigrations() error {
	url, err := databaseURL()
	if err != nil {
		return err
	}

	from, to, err := db.MigrateUp(url)
	if err != nil {
		return err
	}
	if from == to {
		fmt.Println("No migrations to run - database is up to date")
		return nil
	}
	fmt.Printf("Migrated from version %d to %d\n", from, to)
	return nil
}

func runMigrationsDown(steps int) error {
	url, err := databaseURL()
	if err != nil {
		return err
	}

	fmt.Printf("Rolling back %d migration(s)...\n", steps)
	version, err := db.MigrateDown(url, steps)
	if err != nil {
		return err
	}
	fmt.Printf("Rolled back to version: %d\n", version)
	return nil
}

func showMigrationStatus() error {
	url, err := databaseURL()
	if err != nil {
		return err
	}

	version, dirty, ok, err := db.MigrationStatus(url)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("No migrations have been applied yet")
	} else {
		fmt.Printf("Current version: %d\n", version)
		if dirty {
			fmt.Println("Warning: Database is in a dirty state")
		}
	}

	files, err := db.MigrationFiles()
	if err != nil {
		return err
	}
	fmt.Printf("%d migration(s) embedded:\n", len(files))
	for _, f := range files {
		fmt.Printf("  %s\n", f)
	}
	return nil
}
