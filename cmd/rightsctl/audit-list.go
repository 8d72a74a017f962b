package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
)

// auditListCmd represents the audit list command
var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit records",
	Long: `List one page of audit records, newest first.

Dates are RFC3339 timestamps or plain dates (2006-01-02).

Example:
  rightsctl audit list --username ali --resource-type rights_access
  rightsctl audit list --user-id 4 --since 2024-01-01 --limit 50`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		q, err := auditLogQuery(cmd)
		if err != nil {
			fail("Invalid filter: %v", err)
		}
		output, _ := cmd.Flags().GetString("output")

		if err := listAuditLogs(q, output); err != nil {
			fail("Failed to list audit records: %v", err)
		}
	},
}

func init() {
	auditCmd.AddCommand(auditListCmd)
	addAuditFilterFlags(auditListCmd)
	auditListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func addAuditFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Uint("user-id", 0, "Filter by the id of the acting user")
	cmd.Flags().String("username", "", "Filter by acting username (substring)")
	cmd.Flags().String("action", "", "Filter by action, e.g. UPDATE or SAVE_FAILED")
	cmd.Flags().String("resource-type", "", "Filter by resource type")
	cmd.Flags().String("resource-id", "", "Filter by resource id")
	cmd.Flags().String("correlation-id", "", "Filter by request correlation id")
	cmd.Flags().String("since", "", "Only records at or after this time")
	cmd.Flags().String("until", "", "Only records at or before this time")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("limit", backend.DefaultAuditLogLimit, "Records per page")
	cmd.Flags().Bool("asc", false, "Oldest first")
}

// parseDate accepts an RFC3339 timestamp or a plain date in UTC
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func auditLogQuery(cmd *cobra.Command) (backend.AuditLogQuery, error) {
	flags := cmd.Flags()
	q := backend.AuditLogQuery{SortBy: "timestamp", SortOrder: "desc"}
	if id, _ := flags.GetUint("user-id"); id != 0 {
		q.UserID = &id
	}
	q.Username, _ = flags.GetString("username")
	q.Action, _ = flags.GetString("action")
	q.ResourceType, _ = flags.GetString("resource-type")
	q.ResourceID, _ = flags.GetString("resource-id")
	q.CorrelationID, _ = flags.GetString("correlation-id")
	q.Page, _ = flags.GetInt("page")
	q.Limit, _ = flags.GetInt("limit")
	if asc, _ := flags.GetBool("asc"); asc {
		q.SortOrder = "asc"
	}

	var err error
	since, _ := flags.GetString("since")
	if q.StartDate, err = parseDate(since); err != nil {
		return q, err
	}
	until, _ := flags.GetString("until")
	if q.EndDate, err = parseDate(until); err != nil {
		return q, err
	}
	if !q.StartDate.IsZero() && !q.EndDate.IsZero() && q.EndDate.Before(q.StartDate) {
		return q, fmt.Errorf("--until %s is before --since %s", until, since)
	}
	return q.Normalized(), nil
}

func listAuditLogs(q backend.AuditLogQuery, output string) error {
	_, _, b, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	page, err := b.AuditLogs(ctx, q)
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
	fmt.Print(auditTable(page))
	return nil
}
