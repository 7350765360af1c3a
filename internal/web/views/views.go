// Package views holds the HTML pages of the datasheet server. The
// components are written in views.templ; run `templ generate` after
// editing it.
package views

import (
	"fmt"

	"github.com/JonMunkholm/datasheet/internal/core"
)

//go:generate templ generate -f views.templ

// previewRows caps how many rows of each table the preview page shows.
const previewRows = 20

func mappingLines(m core.MappingReport) []string {
	var out []string
	for _, role := range core.Roles {
		if col, ok := m.Column(role); ok {
			out = append(out, fmt.Sprintf("%s <- %s", role, col))
		}
	}
	return out
}

func shownRows(t core.Table) [][]core.Value {
	if len(t.Rows) > previewRows {
		return t.Rows[:previewRows]
	}
	return t.Rows
}

func hiddenRows(t core.Table) string {
	return fmt.Sprintf("%d more rows not shown", t.Len()-previewRows)
}
