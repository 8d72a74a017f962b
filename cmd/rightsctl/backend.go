package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/doodlesbykumbi/rights-console/pkg/audit"
	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	gormbackend "github.com/doodlesbykumbi/rights-console/pkg/backend/gorm"
	"github.com/doodlesbykumbi/rights-console/pkg/client"
	"github.com/doodlesbykumbi/rights-console/pkg/config"
	"github.com/doodlesbykumbi/rights-console/pkg/db"
	"github.com/doodlesbykumbi/rights-console/pkg/logging"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

// loadConfig loads and validates the configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openBackend connects to the permission backend the configuration selects
func openBackend(cfg *config.Config) (backend.Backend, error) {
	if cfg.Backend == config.BackendDatabase {
		database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
		if err != nil {
			return nil, err
		}
		return gormbackend.New(database), nil
	}

	c, err := client.New(client.Config{
		BaseURL: cfg.APIURL,
		Token:   cfg.APIToken,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	return c, nil
}

// setup loads the configuration, a text logger and the backend of a CLI
// command
func setup() (*config.Config, *logrus.Logger, backend.Backend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, logging.FormatText)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := openBackend(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.WithField("backend", cfg.Backend).Debug("backend ready")
	return cfg, logger, b, nil
}

// commandContext is cancelled on SIGINT or SIGTERM
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// editorOptions returns the resolver options the configuration asks for
func editorOptions(cfg *config.Config) []permission.Option {
	if cfg.ReadOnly {
		return []permission.Option{permission.ReadOnly()}
	}
	return nil
}

// actor names the operator in audit records written by the CLI
func actor() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "rightsctl"
}

// cliOrigin attributes audit records to the local user
func cliOrigin() audit.Origin {
	return audit.Origin{Actor: actor(), UserAgent: "rightsctl"}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
