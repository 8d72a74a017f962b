package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rights-console/pkg/editor"
)

// userRightsCmd represents the user rights command
var userRightsCmd = &cobra.Command{
	Use:   "rights <user-id>",
	Short: "Show the effective rights of a user",
	Long: `Show the effective rights of a user, resolved from the role defaults
and the user's overrides. Values set by an override are marked with "*".

Use --role to preview the rights against another role without changing it.

Example:
  rightsctl user rights 12
  rightsctl user rights 12 --role 3
  rightsctl user rights 12 --output json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		userID, err := parseID("user id", args[0])
		if err != nil {
			fail("%v", err)
		}
		roleID, _ := cmd.Flags().GetUint("role")
		output, _ := cmd.Flags().GetString("output")

		if err := showUserRights(userID, roleID, output); err != nil {
			fail("Failed to show rights: %v", err)
		}
	},
}

func init() {
	userCmd.AddCommand(userRightsCmd)
	userRightsCmd.Flags().Uint("role", 0, "Resolve against this role instead of the user's")
	userRightsCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func parseID(name, s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return uint(id), nil
}

func showUserRights(userID, roleID uint, output string) error {
	cfg, _, b, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	e, err := editor.LoadUserRights(ctx, b, userID, editorOptions(cfg)...)
	if err != nil {
		return err
	}
	if roleID != 0 && roleID != e.RoleID() {
		if err := e.ChangeRole(ctx, roleID); err != nil {
			return err
		}
	}

	table := e.Table()
	if output == "json" {
		out, err := json.MarshalIndent(map[string]interface{}{
			"user":             e.User(),
			"role_id":          e.RoleID(),
			"rows":             table.Rows(),
			"customized_count": table.CustomizedCount(),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	u := e.User()
	fmt.Fprintf(os.Stdout, "Rights of %s (user %d, role %d)\n", u.Username, u.ID, e.RoleID())
	fmt.Println(rightsTable(table.Rows()))
	fmt.Printf("%d customized menu(s)\n", table.CustomizedCount())
	return nil
}
