package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Table is an ordered set of named columns over rows of cells.
//
// Every row has exactly len(Columns) cells. Pipeline stages treat a Table
// as immutable and return modified copies.
type Table struct {
	Name    string    `json:"name"`
	Columns []string  `json:"columns"`
	Rows    [][]Value `json:"rows"`
}

// RawTable is a Table as produced by a parser.
//
// Degraded is nil for a structured parse. When the parser fell back to a
// more conservative shape it holds an error wrapping ErrParseDegraded.
type RawTable struct {
	Table
	Degraded error `json:"-"`
}

// NewTable builds a rectangular table from string records.
//
// Header cells are trimmed; empty header cells become col_<position> and
// duplicates receive numeric suffixes. Short rows are padded with Missing.
// Long rows extend the header so that no cell is dropped.
func NewTable(name string, header []string, records [][]string) Table {
	width := len(header)
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}

	cols := make([]string, width)
	for i := range cols {
		if i < len(header) {
			cols[i] = strings.TrimSpace(header[i])
		}
		if cols[i] == "" {
			cols[i] = "col_" + strconv.Itoa(i+1)
		}
	}

	rows := make([][]Value, len(records))
	for r, rec := range records {
		row := make([]Value, width)
		for c, cell := range rec {
			row[c] = Text(cell)
		}
		rows[r] = row
	}

	return Table{Name: name, Columns: uniqueNames(cols), Rows: rows}
}

// uniqueNames suffixes repeated names with _1, _2, ... in order of appearance.
func uniqueNames(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		candidate := n
		for k := 1; seen[candidate]; k++ {
			candidate = fmt.Sprintf("%s_%d", n, k)
		}
		seen[candidate] = true
		out[i] = candidate
	}
	return out
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column, or -1.
func (t Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has reports whether the table has the named column.
func (t Table) Has(col string) bool { return t.Index(col) >= 0 }

// Column returns a copy of the named column's cells, or nil if absent.
func (t Table) Column(col string) []Value {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	rows := make([][]Value, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]Value, len(row))
		copy(r, row)
		rows[i] = r
	}
	return Table{Name: t.Name, Columns: cols, Rows: rows}
}

// withColumn returns a copy of t where col holds values, appending the
// column when it does not exist yet. len(values) must equal t.Len().
func (t Table) withColumn(col string, values []Value) Table {
	out := t.Clone()
	idx := out.Index(col)
	if idx < 0 {
		out.Columns = append(out.Columns, col)
		for i := range out.Rows {
			out.Rows[i] = append(out.Rows[i], values[i])
		}
		return out
	}
	for i := range out.Rows {
		out.Rows[i][idx] = values[i]
	}
	return out
}

// countPresent returns how many cells are not Missing.
func countPresent(values []Value) int {
	n := 0
	for _, v := range values {
		if !v.IsMissing() {
			n++
		}
	}
	return n
}
