package endpoints

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/doodlesbykumbi/rights-console/pkg/editor"
	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// userRightsMarkdown renders the resolved table as a GFM document.
// Overridden values are bold.
func userRightsMarkdown(e *editor.UserRights) string {
	var b strings.Builder
	table := e.Table()

	name := fmt.Sprintf("user %d", e.User().ID)
	if e.User().Username != "" {
		name = e.User().Username
	}
	fmt.Fprintf(&b, "# Rights of %s\n\n", escapeMarkdown(name))
	fmt.Fprintf(&b, "Role %d. %d of %d menus customized.\n\n", e.RoleID(), table.CustomizedCount(), table.Len())

	b.WriteString("| Menu | Path |")
	for _, a := range permission.ActionValues() {
		fmt.Fprintf(&b, " %s |", a.Label())
	}
	b.WriteString("\n|---|---|")
	for range permission.ActionValues() {
		b.WriteString(":---:|")
	}
	b.WriteString("\n")

	for _, row := range table.Rows() {
		effective := row.Effective()
		fmt.Fprintf(&b, "| %s | %s |", escapeMarkdown(row.MenuName), escapeMarkdown(row.MenuPath))
		for _, a := range permission.ActionValues() {
			cell := "no"
			if effective.Get(a) {
				cell = "yes"
			}
			if !row.IsInherited(a) {
				cell = "**" + cell + "**"
			}
			fmt.Fprintf(&b, " %s |", cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func escapeMarkdown(s string) string {
	return strings.NewReplacer(`\`, `\\`, "|", `\|`, "*", `\*`, "_", `\_`, "<", "&lt;", ">", "&gt;").Replace(s)
}

func renderUserRights(e *editor.UserRights) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(userRightsMarkdown(e)), &body); err != nil {
		return nil, fmt.Errorf("failed to render rights: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <link rel="stylesheet" href="/css/rights.css">
    <title>Rights of user %d</title>
  </head>
  <body>
`, e.User().ID)
	page.Write(body.Bytes())
	page.WriteString("  </body>\n</html>\n")
	return page.Bytes(), nil
}
