package core

import (
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ParseExcel reads every sheet of a workbook into its own table. Rows whose
// cells are all blank are skipped and, when more than one row remains, the
// first is the header. Multi-sheet workbooks name tables <stem>_<sheet>.
func ParseExcel(path string) ([]RawTable, error) {
	name := tableName(path)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return []RawTable{emptyTextTable(name, degraded("open workbook %s: %v", filepath.Base(path), err))}, nil
	}
	defer f.Close()

	sheets := f.GetSheetList()
	tables := make([]RawTable, 0, len(sheets))

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			tables = append(tables, emptyTextTable(sheetTableName(name, sheet, len(sheets)),
				degraded("read sheet %q: %v", sheet, err)))
			continue
		}

		records := make([][]string, 0, len(rows))
		for _, row := range rows {
			if !isEmptyRow(row) {
				records = append(records, row)
			}
		}
		if len(records) == 0 {
			continue
		}

		tname := sheetTableName(name, sheet, len(sheets))
		if len(records) > 1 {
			tables = append(tables, RawTable{Table: NewTable(tname, records[0], records[1:])})
		} else {
			tables = append(tables, RawTable{Table: NewTable(tname, nil, records)})
		}
	}

	return tables, nil
}

func sheetTableName(stem, sheet string, sheetCount int) string {
	if sheetCount > 1 {
		return stem + "_" + sheet
	}
	return stem
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
