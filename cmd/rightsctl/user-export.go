package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rights-console/pkg/editor"
	"github.com/doodlesbykumbi/rights-console/pkg/policy"
)

// userExportCmd represents the user export command
var userExportCmd = &cobra.Command{
	Use:   "export <user-id>...",
	Short: "Export the overrides of users as a rights document",
	Long: `Export the stored overrides of one or more users as a YAML rights
document that "rightsctl policy load" accepts.

Example:
  rightsctl user export 12 13 > overrides.yml`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ids := make([]uint, 0, len(args))
		for _, arg := range args {
			id, err := parseID("user id", arg)
			if err != nil {
				fail("%v", err)
			}
			ids = append(ids, id)
		}

		if err := exportUsers(ids); err != nil {
			fail("Export failed: %v", err)
		}
	},
}

func init() {
	userCmd.AddCommand(userExportCmd)
}

func exportUsers(ids []uint) error {
	_, _, b, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	statements := make(policy.Statements, 0, len(ids))
	for _, id := range ids {
		e, err := editor.LoadUserRights(ctx, b, id)
		if err != nil {
			return err
		}
		statements = append(statements, policy.ExportUser(id, e.Table()))
	}

	out, err := policy.Marshal(statements)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(os.Stdout, string(out))
	return err
}
