package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rights-console/pkg/audit"
	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/policy"
)

// policyLoadCmd represents the policy load command
var policyLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Apply a rights document",
	Long: `Apply a YAML rights document.

Every menu reference in the document is resolved against the menu tree
first. If any reference cannot be resolved nothing is written. Role
statements replace the menus of the role, user statements replace the
overrides of the user.

Use "-" to read the document from stdin.

Example:
  rightsctl policy load rights.yml
  rightsctl policy load --dry-run rights.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		result, err := loadPolicyFile(args[0], dryRun)
		if err != nil {
			fail("Failed to load policy: %v", err)
		}

		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	},
}

func init() {
	policyCmd.AddCommand(policyLoadCmd)
	policyLoadCmd.Flags().Bool("dry-run", false, "Resolve the document without writing anything")
}

func loadPolicyFile(filename string, dryRun bool) (*policy.LoadResult, error) {
	cfg, _, b, err := setup()
	if err != nil {
		return nil, err
	}
	if cfg.ReadOnly && !dryRun {
		return nil, errReadOnly
	}

	var r io.Reader = os.Stdin
	if filename != "-" {
		file, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open policy file: %w", err)
		}
		defer func() { _ = file.Close() }()
		r = file
	}

	ctx, cancel := commandContext()
	defer cancel()

	result, err := applyPolicy(ctx, b, filename, r, dryRun)
	if err != nil {
		return nil, err
	}

	verb := "applied"
	if dryRun {
		verb = "validated"
	}
	fmt.Fprintf(os.Stderr, "Policy %s: %d role(s), %d user(s)\n", verb, len(result.Roles), len(result.Users))
	return result, nil
}

// applyPolicy loads one document and records it in the audit log
func applyPolicy(ctx context.Context, b backend.Backend, source string, r io.Reader, dryRun bool) (*policy.LoadResult, error) {
	result, err := policy.NewLoader(b).WithDryRun(dryRun).LoadFromReader(ctx, r)

	event := audit.PolicyEvent{Origin: cliOrigin(), Source: source, DryRun: dryRun, Success: err == nil}
	if result != nil {
		event.Roles = len(result.Roles)
		event.Users = len(result.Users)
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)

	var unresolved *policy.UnresolvedError
	if errors.As(err, &unresolved) {
		return nil, unresolved
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	return result, nil
}
