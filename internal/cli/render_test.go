package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/datasheet/internal/core"
)

func TestWriteReport(t *testing.T) {
	report := &core.ImportReport{
		File:     "stock.csv",
		Duration: 1500 * time.Microsecond,
		Tables: []core.TableReport{{
			FileTableName: "Stock",
			TargetTable:   "stock",
			MappingReport: core.MappingReport{
				Mapping: map[core.Role]string{core.RoleName: "Item", core.RolePrice: "Cost"},
				Notes:   []string{"Dropped duplicate column 'Cost'"},
			},
			SanitizeLogs: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
			ValidationBefore: core.ValidationResult{
				Errors: []string{"1 rows have negative 'price' values."},
				Stats:  core.ValidationStats{Rows: 2},
			},
			ValidationAfter: core.ValidationResult{Stats: core.ValidationStats{Rows: 2}},
			Actions:         []string{"Rounded 'price' to 2 decimals."},
			RowsWritten:     2,
			Errors:          []string{},
		}},
	}

	var buf bytes.Buffer
	writeReport(&buf, report)

	want := `File: stock.csv
------------------------------------------------------------
Table (file): Stock -> DB name: stock
Mapping: id <- (none), name <- Item, quantity <- (none), price <- Cost
Notes:
   Dropped duplicate column 'Cost'
Sanitize logs:
   a
   b
   c
   d
   e
   f
   ... 2 more
Validation before: 1 errors, 0 warnings, 2 rows
   error: 1 rows have negative 'price' values.
Validation after: 0 errors, 0 warnings, 2 rows
Actions:
   Rounded 'price' to 2 decimals.
Rows written: 2
------------------------------------------------------------
Total rows written: 2 (1 tables, 2ms)
`
	assert.Equal(t, want, buf.String())
}
