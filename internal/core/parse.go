package core

// parse.go turns files into RawTables.
//
// Dispatch is by lowercase file extension through a Registry. Parsers never
// fail on malformed content: they fall back to a one-column "text" table
// (or an empty one) and record the fallback in RawTable.Degraded. Only a
// missing file or an unregistered extension is an error.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// textColumn is the single column of an unstructured table.
const textColumn = "text"

// structureProbeLines is how many lines must agree on their field count
// before plain text is treated as delimited.
const structureProbeLines = 10

// ParseFunc reads the file at path into one or more tables.
type ParseFunc func(path string) ([]RawTable, error)

// Registry maps file extensions to parsers.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]ParseFunc
}

// NewRegistry returns a registry with the built-in parsers for delimited
// text and Excel workbooks.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]ParseFunc)}
	r.Register(".csv", ParseDelimited)
	r.Register(".tsv", ParseDelimited)
	r.Register(".txt", ParseText)
	r.Register(".xlsx", ParseExcel)
	r.Register(".xlsm", ParseExcel)
	return r
}

// Register adds a parser for ext. External producers (PDF tables, OCR)
// plug in here. Panics if ext is already registered.
func (r *Registry) Register(ext string, fn ParseFunc) {
	ext = normalizeExt(ext)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[ext]; exists {
		panic(fmt.Sprintf("parser already registered: %s", ext))
	}
	r.parsers[ext] = fn
}

// Supported returns the registered extensions, sorted.
func (r *Registry) Supported() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Parse reads path with the parser registered for its extension.
func (r *Registry) Parse(path string) ([]RawTable, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	ext := normalizeExt(filepath.Ext(path))

	r.mu.RLock()
	fn, ok := r.parsers[ext]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnsupportedFormatError{Ext: ext, Supported: r.Supported()}
	}
	return fn(path)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// tableName is the file name without directory or extension.
func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ----------------------------------------------------------------------------
// Delimited text (CSV/TSV)
// ----------------------------------------------------------------------------

// ParseDelimited reads a CSV or TSV file. The delimiter is detected from
// the first kilobyte; the first row is a header when LooksLikeHeader says
// so, otherwise columns are named col_1..col_N.
func ParseDelimited(path string) ([]RawTable, error) {
	name := tableName(path)

	text, err := readText(path)
	if err != nil {
		return []RawTable{emptyTextTable(name, degraded("read %s: %v", filepath.Base(path), err))}, nil
	}

	sample := text
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	records, err := readRecords(text, DetectDelimiter(sample))
	if err != nil {
		return []RawTable{linesTable(name, text, degraded("csv: %v", err))}, nil
	}

	if len(records) == 0 {
		return []RawTable{emptyTextTable(name, nil)}, nil
	}
	return []RawTable{{Table: tableFromRecords(name, records)}}, nil
}

func readRecords(text string, delim rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// tableFromRecords applies header detection to non-empty records.
func tableFromRecords(name string, records [][]string) Table {
	if len(records) > 1 && LooksLikeHeader(records[0], records[1]) {
		return NewTable(name, records[0], records[1:])
	}
	return NewTable(name, nil, records)
}

// ----------------------------------------------------------------------------
// Plain text
// ----------------------------------------------------------------------------

// ParseText reads a .txt file. Content is treated as delimited only when
// the detected delimiter splits the first ten non-empty lines into the
// same number of fields, and more than one. Anything else becomes a
// one-column table with a line per row.
func ParseText(path string) ([]RawTable, error) {
	name := tableName(path)

	text, err := readText(path)
	if err != nil {
		return []RawTable{emptyTextTable(name, degraded("read %s: %v", filepath.Base(path), err))}, nil
	}

	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return []RawTable{emptyTextTable(name, nil)}, nil
	}

	probe := lines
	if len(probe) > 5 {
		probe = probe[:5]
	}
	delim := string(DetectDelimiter(strings.Join(probe, "\n")))

	if n, ok := uniformFieldCount(lines, delim); !ok || n < 2 {
		return []RawTable{linesTable(name, text, degraded("no consistent %q-delimited structure", delim))}, nil
	}

	records := make([][]string, len(lines))
	for i, line := range lines {
		records[i] = strings.Split(line, delim)
	}
	return []RawTable{{Table: tableFromRecords(name, records)}}, nil
}

// uniformFieldCount returns the shared field count of the leading lines.
func uniformFieldCount(lines []string, delim string) (int, bool) {
	if len(lines) > structureProbeLines {
		lines = lines[:structureProbeLines]
	}
	want := strings.Count(lines[0], delim) + 1
	for _, line := range lines[1:] {
		if strings.Count(line, delim)+1 != want {
			return 0, false
		}
	}
	return want, true
}

// ----------------------------------------------------------------------------
// Fallback shapes
// ----------------------------------------------------------------------------

func emptyTextTable(name string, reason error) RawTable {
	return RawTable{
		Table:    Table{Name: name, Columns: []string{textColumn}, Rows: [][]Value{}},
		Degraded: reason,
	}
}

// linesTable holds each trimmed non-empty line of text as a row.
func linesTable(name, text string, reason error) RawTable {
	lines := nonEmptyLines(text)
	rows := make([][]Value, len(lines))
	for i, line := range lines {
		rows[i] = []Value{Text(line)}
	}
	return RawTable{
		Table:    Table{Name: name, Columns: []string{textColumn}, Rows: rows},
		Degraded: reason,
	}
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ----------------------------------------------------------------------------
// Decoding
// ----------------------------------------------------------------------------

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readText loads a file as UTF-8, dropping a leading BOM and any invalid
// byte sequences.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return decodeUTF8(data), nil
}

func decodeUTF8(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}
