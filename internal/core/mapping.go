package core

import (
	"fmt"
	"strings"
)

// roleCandidates lists, per role, the header names that identify it in
// priority order. "amount" deliberately appears for both quantity and price.
var roleCandidates = map[Role][]string{
	RoleID:       {"id", "item_id", "product_id", "sku"},
	RoleName:     {"name", "product", "item", "description", "title"},
	RoleQuantity: {"quantity", "qty", "stock", "count", "amount"},
	RolePrice:    {"price", "cost", "amount", "rate", "unit_price", "mrp"},
}

// Candidates returns the candidate header names for role.
func Candidates(role Role) []string {
	c := roleCandidates[role]
	out := make([]string, len(c))
	copy(out, c)
	return out
}

// GuessColumnFor picks the column most likely to hold role. An exact
// case-insensitive match wins, preferring earlier candidates; failing that,
// the first column (in order) whose lowercase name contains any candidate.
func GuessColumnFor(role Role, columns []string) (string, bool) {
	candidates := roleCandidates[role]

	for _, cand := range candidates {
		for _, col := range columns {
			if strings.ToLower(col) == cand {
				return col, true
			}
		}
	}

	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, cand := range candidates {
			if strings.Contains(lower, cand) {
				return col, true
			}
		}
	}

	return "", false
}

// MapToInventory restructures t into the role columns id, name, quantity
// and price, followed by a meta_<slug> column for every source column no
// role claimed. Unmatched roles become all-Missing columns. Row order and
// count are unchanged.
func MapToInventory(t Table) (Table, MappingReport) {
	report := MappingReport{Mapping: make(map[Role]string), Notes: []string{}}
	out := Table{Name: t.Name, Columns: make([]string, 0, len(Roles)+len(t.Columns))}

	sources := make([]int, 0, cap(out.Columns)) // source index per output column, -1 for placeholders
	claimed := make(map[string]bool)

	for _, role := range Roles {
		col, ok := GuessColumnFor(role, t.Columns)
		out.Columns = append(out.Columns, string(role))
		if ok {
			report.Mapping[role] = col
			claimed[col] = true
			sources = append(sources, t.Index(col))
			continue
		}

		sources = append(sources, -1)
		switch role {
		case RoleName:
			report.Notes = append(report.Notes, "No candidate found for 'name'; placeholders may be generated.")
		case RoleQuantity, RolePrice:
			report.Notes = append(report.Notes,
				fmt.Sprintf("No candidate found for '%s'; values will be missing (NaN) by default.", role))
		}
	}

	taken := make(map[string]bool, cap(out.Columns))
	for _, c := range out.Columns {
		taken[c] = true
	}
	for i, col := range t.Columns {
		if claimed[col] {
			continue
		}
		meta := "meta_" + SlugifyColumn(col, i+1)
		if taken[meta] {
			k := 1
			for taken[fmt.Sprintf("%s_%d", meta, k)] {
				k++
			}
			meta = fmt.Sprintf("%s_%d", meta, k)
		}
		taken[meta] = true
		out.Columns = append(out.Columns, meta)
		sources = append(sources, i)
	}

	out.Rows = make([][]Value, len(t.Rows))
	for r, src := range t.Rows {
		row := make([]Value, len(sources))
		for c, idx := range sources {
			if idx >= 0 {
				row[c] = src[idx]
			}
		}
		out.Rows[r] = row
	}

	return out, report
}
