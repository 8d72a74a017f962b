package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// policyWatchCmd represents the policy watch command
var policyWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a rights document and reapply it when it changes",
	Long: `Watch a rights document and reapply it whenever it is written.

The document is applied once on start. The directory holding it is watched,
so editors that replace the file on save are picked up too.

Example:
  rightsctl policy watch /etc/rights-console/rights.d/staff.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchPolicy(args[0]); err != nil {
			fail("Failed to watch policy: %v", err)
		}
	},
}

func init() {
	policyCmd.AddCommand(policyWatchCmd)
}

func watchPolicy(filename string) error {
	cfg, logger, b, err := setup()
	if err != nil {
		return err
	}
	if cfg.ReadOnly {
		return errReadOnly
	}

	path, err := filepath.Abs(filename)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	ctx, cancel := commandContext()
	defer cancel()

	reload := func() {
		file, err := os.Open(path)
		if err != nil {
			logger.WithError(err).Error("Error reading policy")
			return
		}
		defer func() { _ = file.Close() }()

		result, err := applyPolicy(ctx, b, path, file, false)
		if err != nil {
			logger.WithError(err).Error("Error loading policy")
			return
		}
		logger.WithField("roles", len(result.Roles)).WithField("users", len(result.Users)).
			Infof("Policy loaded from %s", path)
	}

	reload()
	logger.Infof("Watching %s for policy changes", path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Infof("[%s] File modified, reloading policy...", time.Now().Format(time.RFC3339))
				reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("Watcher error")
		case <-ctx.Done():
			logger.Info("Shutting down...")
			return nil
		}
	}
}
