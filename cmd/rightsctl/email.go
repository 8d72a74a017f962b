package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
)

// emailCmd represents the email command
var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Browse the emails sent by the backend",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'email' requires a subcommand (list, show)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var emailListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sent emails",
	Long: `List one page of sent emails, newest first.

Example:
  rightsctl email list --status failed
  rightsctl email list --search welcome --page 2`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		q := backend.EmailLogQuery{}
		q.Page, _ = cmd.Flags().GetInt("page")
		q.PageSize, _ = cmd.Flags().GetInt("page-size")
		q.Search, _ = cmd.Flags().GetString("search")
		q.Status, _ = cmd.Flags().GetString("status")
		output, _ := cmd.Flags().GetString("output")

		if err := listEmailLogs(q, output); err != nil {
			fail("Failed to list emails: %v", err)
		}
	},
}

var emailShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one sent email",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseID("email id", args[0])
		if err != nil {
			fail("%v", err)
		}
		if err := showEmailLog(id); err != nil {
			fail("Failed to show email %d: %v", id, err)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)
	emailCmd.AddCommand(emailListCmd, emailShowCmd)
	emailListCmd.Flags().Int("page", 1, "Page number")
	emailListCmd.Flags().Int("page-size", 10, "Emails per page")
	emailListCmd.Flags().String("search", "", "Filter by recipient, subject, template or sender")
	emailListCmd.Flags().String("status", "", "Filter by status (pending, sent or failed)")
	emailListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func listEmailLogs(q backend.EmailLogQuery, output string) error {
	_, _, b, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	page, err := b.EmailLogs(ctx, q)
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
	fmt.Print(emailTable(page))
	return nil
}

func showEmailLog(id uint) error {
	_, _, b, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	l, err := b.EmailLog(ctx, id)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
