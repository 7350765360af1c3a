package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/datasheet/internal/core"
)

// maxSanitizeLines caps the sanitize log lines printed per table.
const maxSanitizeLines = 6

var separator = strings.Repeat("-", 60)

// writeReport prints an import report for a terminal.
func writeReport(w io.Writer, r *core.ImportReport) {
	fmt.Fprintf(w, "File: %s\n", r.File)
	if r.DryRun {
		fmt.Fprintln(w, "Mode: dry run")
	}

	for _, t := range r.Tables {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "Table (file): %s -> DB name: %s\n", t.FileTableName, t.TargetTable)
		writeList(w, "Parse notes", t.ParseNotes)
		writeMapping(w, t.MappingReport)
		writeSanitizeLogs(w, t.SanitizeLogs)
		writeValidation(w, "Validation before", t.ValidationBefore)
		writeValidation(w, "Validation after", t.ValidationAfter)
		writeList(w, "Schema warnings", t.SchemaWarnings)
		writeList(w, "Actions", t.Actions)
		fmt.Fprintf(w, "Rows written: %d\n", t.RowsWritten)
		writeList(w, "Errors", t.Errors)
	}

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Total rows written: %d (%d tables, %s)\n",
		r.RowsWritten(), len(r.Tables), r.Duration.Round(time.Millisecond))
}

// writePreviews prints the analysis of every table in file.
func writePreviews(w io.Writer, file string, previews []core.TablePreview, schema *core.InventorySchema) {
	fmt.Fprintf(w, "File: %s\n", file)

	for _, p := range previews {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "Table (file): %s -> DB name: %s\n", p.FileTableName, p.MappedTableName)
		fmt.Fprintf(w, "Columns: %s\n", strings.Join(p.Sanitized.Columns, ", "))
		writeList(w, "Parse notes", p.ParseNotes)
		writeMapping(w, p.MappingReport)
		writeSanitizeLogs(w, p.SanitizeLogs)
		writeValidation(w, "Validation", p.Validation)
		if schema != nil {
			writeList(w, "Schema warnings", core.CheckSchema(p.Sanitized, *schema))
		}
	}
}

func writeMapping(w io.Writer, m core.MappingReport) {
	parts := make([]string, 0, len(core.Roles))
	for _, role := range core.Roles {
		col, ok := m.Column(role)
		if !ok {
			col = "(none)"
		}
		parts = append(parts, fmt.Sprintf("%s <- %s", role, col))
	}
	fmt.Fprintf(w, "Mapping: %s\n", strings.Join(parts, ", "))
	writeList(w, "Notes", m.Notes)
}

func writeSanitizeLogs(w io.Writer, logs []string) {
	fmt.Fprintln(w, "Sanitize logs:")
	for i, l := range logs {
		if i == maxSanitizeLines {
			fmt.Fprintf(w, "   ... %d more\n", len(logs)-maxSanitizeLines)
			break
		}
		fmt.Fprintf(w, "   %s\n", l)
	}
}

func writeValidation(w io.Writer, title string, v core.ValidationResult) {
	fmt.Fprintf(w, "%s: %d errors, %d warnings, %d rows\n", title, len(v.Errors), len(v.Warnings), v.Stats.Rows)
	for _, e := range v.Errors {
		fmt.Fprintf(w, "   error: %s\n", e)
	}
	for _, e := range v.Warnings {
		fmt.Fprintf(w, "   warning: %s\n", e)
	}
}

// writeList prints title and items, or nothing when items is empty.
func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "   %s\n", it)
	}
}
