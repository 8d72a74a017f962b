package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
)

// userListCmd represents the user list command
var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Long: `List one page of users.

Example:
  rightsctl user list --search ann
  rightsctl user list --page 2 --page-size 50 --sort-by username --desc`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		params := backend.ListParams{}
		params.Page, _ = cmd.Flags().GetInt("page")
		params.PageSize, _ = cmd.Flags().GetInt("page-size")
		params.Search, _ = cmd.Flags().GetString("search")
		params.SortBy, _ = cmd.Flags().GetString("sort-by")
		params.SortDesc, _ = cmd.Flags().GetBool("desc")
		output, _ := cmd.Flags().GetString("output")

		if err := listUsers(params, output); err != nil {
			fail("Failed to list users: %v", err)
		}
	},
}

func init() {
	userCmd.AddCommand(userListCmd)
	userListCmd.Flags().Int("page", 1, "Page number")
	userListCmd.Flags().Int("page-size", 20, "Users per page")
	userListCmd.Flags().String("search", "", "Filter by username, name or email")
	userListCmd.Flags().String("sort-by", "", "Sort column")
	userListCmd.Flags().Bool("desc", false, "Sort descending")
	userListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func listUsers(params backend.ListParams, output string) error {
	_, _, b, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	page, err := b.ListUsers(ctx, params)
	if err != nil {
		return err
	}

	if output == "json" {
		out, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Print(usersTable(page))
	return nil
}
