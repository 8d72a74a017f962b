package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rights-console/pkg/editor"
	"github.com/doodlesbykumbi/rights-console/pkg/policy"
)

// roleCmd represents the role command
var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Inspect roles and their menus",
	Long:  `Inspect roles and the menus assigned to them.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'role' requires a subcommand (menus, list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

// roleMenusCmd represents the role menus command
var roleMenusCmd = &cobra.Command{
	Use:   "menus <role-id>",
	Short: "Show the menus assigned to a role",
	Long: `Show the menus assigned to a role with their default permissions.

With --output yaml the assignment is printed as a rights document.

Example:
  rightsctl role menus 3
  rightsctl role menus 3 --output yaml > staff.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		roleID, err := parseID("role id", args[0])
		if err != nil {
			fail("%v", err)
		}
		output, _ := cmd.Flags().GetString("output")

		if err := showRoleMenus(roleID, output); err != nil {
			fail("Failed to show role menus: %v", err)
		}
	},
}

// roleListCmd represents the role list command
var roleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active roles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := listRoles(); err != nil {
			fail("Failed to list roles: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(roleCmd)
	roleCmd.AddCommand(roleMenusCmd)
	roleCmd.AddCommand(roleListCmd)
	roleMenusCmd.Flags().StringP("output", "o", "text", "Output format (text, json or yaml)")
}

func showRoleMenus(roleID uint, output string) error {
	_, _, b, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	e, err := editor.LoadRoleMenus(ctx, b, roleID)
	if err != nil {
		return err
	}
	selection := e.Selection()

	switch output {
	case "json":
		out, err := json.MarshalIndent(map[string]interface{}{
			"role":           e.Role(),
			"rows":           selection.Rows(),
			"selected_count": selection.SelectedCount(),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "yaml":
		out, err := policy.Marshal(policy.Statements{policy.ExportRole(roleID, selection)})
		if err != nil {
			return err
		}
		fmt.Print(string(out))
	default:
		fmt.Printf("Menus of %s (role %d)\n", e.Role().Name, roleID)
		fmt.Println(selectionTable(selection.Rows()))
		fmt.Printf("%d menu(s) selected\n", selection.SelectedCount())
	}
	return nil
}

func listRoles() error {
	_, _, b, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	roles, err := b.ActiveRoles(ctx)
	if err != nil {
		return err
	}
	for _, r := range roles {
		name := r.Name
		if r.DisplayName != "" {
			name = fmt.Sprintf("%s (%s)", r.Name, r.DisplayName)
		}
		fmt.Printf("%-4d %s\n", r.ID, name)
	}
	return nil
}
