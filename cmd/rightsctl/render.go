package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/doodlesbykumbi/rights-console/pkg/audit"
	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/menu"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
	overriddenStyle = cellStyle.Bold(true).Foreground(lipgloss.Color("3"))
	failedStyle     = cellStyle.Foreground(lipgloss.Color("1"))
)

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func actionHeaders(leading ...string) []string {
	headers := append([]string{}, leading...)
	for _, a := range permission.ActionValues() {
		headers = append(headers, a.Label())
	}
	return headers
}

// rightsTable renders the effective permissions of a user. Values set by an
// override are highlighted and marked with an asterisk.
func rightsTable(rows []permission.Row) string {
	actions := permission.ActionValues()
	overridden := make([][]bool, len(rows))
	data := make([][]string, len(rows))
	for i, r := range rows {
		effective := r.Effective()
		record := []string{r.MenuName, r.MenuPath}
		overridden[i] = make([]bool, len(record)+len(actions))
		for j, a := range actions {
			value := yesNo(effective.Get(a))
			if !r.IsInherited(a) {
				value += "*"
				overridden[i][len(record)+j] = true
			}
			record = append(record, value)
		}
		data[i] = record
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(actionHeaders("Menu", "Path")...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(overridden) && overridden[row][col]:
				return overriddenStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}

// selectionTable renders the menus of a role with their flags
func selectionTable(rows []permission.SelectionRow) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		record := []string{r.MenuName, yesNo(r.Selected)}
		for _, a := range permission.ActionValues() {
			record = append(record, yesNo(r.Get(a)))
		}
		data = append(data, record)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(actionHeaders("Menu", "Selected")...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}

// usersTable renders one page of users
func usersTable(page *backend.Page[backend.User]) string {
	data := make([][]string, 0, len(page.Data))
	for _, u := range page.Data {
		role := ""
		if u.Role != nil {
			role = u.Role.Name
		} else if id := u.EffectiveRoleID(); id != 0 {
			role = strconv.FormatUint(uint64(id), 10)
		}
		data = append(data, []string{strconv.FormatUint(uint64(u.ID), 10), u.Username, u.Name, u.Email, role, yesNo(u.IsActive)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Username", "Name", "Email", "Role", "Active").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return fmt.Sprintf("%s\nPage %d, %d of %d users\n", t.String(), page.Page, len(page.Data), page.Total)
}

// auditTable renders one page of audit records. Failed attempts are
// highlighted.
func auditTable(page *backend.Page[backend.AuditLog]) string {
	data := make([][]string, 0, len(page.Data))
	for _, l := range page.Data {
		data = append(data, []string{
			l.Timestamp.Local().Format(time.DateTime),
			l.Username,
			l.Action,
			l.ResourceType,
			l.ResourceID,
			l.IPAddress,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Time", "User", "Action", "Resource", "ID", "IP").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(page.Data) && strings.HasSuffix(page.Data[row].Action, audit.FailedSuffix):
				return failedStyle
			default:
				return cellStyle
			}
		})
	return fmt.Sprintf("%s\nPage %d, %d of %d records\n", t.String(), page.Page, len(page.Data), page.Total)
}

// emailTable renders one page of sent emails
func emailTable(page *backend.Page[backend.EmailLog]) string {
	data := make([][]string, 0, len(page.Data))
	for _, l := range page.Data {
		sent := ""
		if l.SentAt != nil {
			sent = l.SentAt.Local().Format(time.DateTime)
		}
		data = append(data, []string{
			strconv.FormatUint(uint64(l.ID), 10),
			strings.Join(l.To, ", "),
			l.Subject,
			l.TemplateName,
			l.Status,
			sent,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "To", "Subject", "Template", "Status", "Sent").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(page.Data) && page.Data[row].Status == backend.EmailStatusFailed:
				return failedStyle
			default:
				return cellStyle
			}
		})
	return fmt.Sprintf("%s\nPage %d, %d of %d emails\n", t.String(), page.Page, len(page.Data), page.Total)
}

// menuTree renders the menu tree one entry per line, children indented
// under their parent
func menuTree(nodes []menu.Node) string {
	var b strings.Builder
	for _, e := range menu.Flatten(nodes) {
		fmt.Fprintf(&b, "%-4d %s", e.ID, e.Indented())
		if e.Path != "" {
			fmt.Fprintf(&b, "  %s", e.Path)
		}
		b.WriteString("\n")
	}
	return b.String()
}
