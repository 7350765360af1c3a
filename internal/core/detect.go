package core

import (
	"errors"
	"strconv"
	"strings"
)

// sampleSize is how many leading bytes delimiter detection looks at.
const sampleSize = 1024

// delimiters in tie-break order.
var delimiters = []rune{'\t', ',', ';', '|'}

// DetectDelimiter guesses the field separator of a text sample by counting
// each candidate over the sample's first five lines. Ties go to the earlier
// candidate in tab, comma, semicolon, pipe order; no candidate at all
// yields a comma.
func DetectDelimiter(sample string) rune {
	lines := strings.Split(sample, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	head := strings.Join(lines, "\n")

	best, bestCount := ',', 0
	for _, d := range delimiters {
		if n := strings.Count(head, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// LooksLikeHeader reports whether first should be read as a header row:
// any of its cells fails the numeric test, or its length differs from the
// row that follows. A nil next means there is no following row.
func LooksLikeHeader(first, next []string) bool {
	if next != nil && len(first) != len(next) {
		return true
	}
	for _, cell := range first {
		if !IsNumeric(cell) {
			return true
		}
	}
	return false
}

// IsNumeric reports whether s parses as a float once trimmed. Overflowing
// values such as "1e999" count as numeric.
func IsNumeric(s string) bool {
	_, ok := parseFloat(s)
	return ok
}

// parseFloat is the lenient float conversion used across the pipeline.
func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}
