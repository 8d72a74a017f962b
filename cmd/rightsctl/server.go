package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rights-console/pkg/config"
	"github.com/doodlesbykumbi/rights-console/pkg/db"
	"github.com/doodlesbykumbi/rights-console/pkg/logging"
	"github.com/doodlesbykumbi/rights-console/pkg/server"
	"github.com/doodlesbykumbi/rights-console/pkg/server/endpoints"
)

const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the rights console server",
	Long: `Run the rights console server.

The server holds edit sessions for the user override editor and the role menu
editor and exposes them over HTTP. With the database backend, migrations are
run on startup unless --no-migrate is set.

Example:
  rightsctl server
  rightsctl server --port 9000 --read-only`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fail("Failed to load configuration: %v", err)
		}
		if cmd.Flags().Changed("bind-address") {
			cfg.ListenAddress, _ = cmd.Flags().GetString("bind-address")
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if readOnly, _ := cmd.Flags().GetBool("read-only"); readOnly {
			cfg.ReadOnly = true
		}
		if err := cfg.Validate(); err != nil {
			fail("Invalid configuration: %v", err)
		}

		logger, err := logging.New(cfg.LogLevel, logging.FormatJSON)
		if err != nil {
			fail("%v", err)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if cfg.Backend == config.BackendDatabase && !noMigrate {
			logger.Info("Running database migrations...")
			from, to, err := db.MigrateUp(cfg.DatabaseURL)
			if err != nil {
				fail("Migration failed: %v", err)
			}
			logger.WithField("from", from).WithField("to", to).Info("Database schema is up to date")
		}

		b, err := openBackend(cfg)
		if err != nil {
			fail("Unable to open backend: %v", err)
		}

		s := server.NewServer(b, cfg, logger)
		endpoints.RegisterAll(s)

		errCh := make(chan error, 1)
		go func() {
			logger.Infof("Running server at http://%s...", s.Addr())
			errCh <- s.Start()
		}()

		ctx, stop := commandContext()
		defer stop()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				fail("Server failed: %v", err)
			}
		case <-ctx.Done():
			logger.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.Shutdown(shutdownCtx); err != nil {
				fmt.Fprintf(os.Stderr, "Shutdown failed: %v\n", err)
				os.Exit(1)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().IntP("port", "p", 8080, "server listen port (overrides configuration)")
	serverCmd.Flags().StringP("bind-address", "b", "127.0.0.1", "server bind address (overrides configuration)")
	serverCmd.Flags().Bool("read-only", false, "reject every mutation")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}
