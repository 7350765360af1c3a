package core

import (
	"fmt"
	"regexp"
	"strings"
)

// ParseStatus classifies the outcome of ParseNumberLike.
type ParseStatus string

const (
	StatusOK      ParseStatus = "ok"      // already numeric
	StatusCoerced ParseStatus = "coerced" // text converted to a number
	StatusNA      ParseStatus = "na"      // missing or blank
	StatusFail    ParseStatus = "fail"    // text that is not a number
)

// numericColumns are the role columns the sanitizer coerces.
var numericColumns = []string{string(RoleQuantity), string(RolePrice)}

// maxFailExamples caps the literal failures quoted per column.
const maxFailExamples = 5

var nonNumberChars = regexp.MustCompile(`[^\d.\-,()]`)

// ParseNumberLike converts a number-looking cell to a Number. Currency
// symbols and letters are dropped and "(123)" is negative. Several commas,
// or a comma ahead of the dot, are thousands separators; a lone comma
// without a dot is a decimal point.
// On failure the original value is returned with StatusFail.
func ParseNumberLike(v Value) (Value, ParseStatus) {
	switch v.Kind() {
	case KindMissing:
		return v, StatusNA
	case KindNumber:
		return v, StatusOK
	}

	s, _ := v.Str()
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing(), StatusNA
	}

	s2 := nonNumberChars.ReplaceAllString(s, "")
	if s2 == "" {
		return v, StatusFail
	}
	if len(s2) >= 2 && strings.HasPrefix(s2, "(") && strings.HasSuffix(s2, ")") {
		s2 = "-" + s2[1:len(s2)-1]
	}
	switch comma, dot := strings.Index(s2, ","), strings.Index(s2, "."); {
	case strings.Count(s2, ",") > 1:
		s2 = strings.ReplaceAll(s2, ",", "")
	case comma >= 0 && dot < 0:
		s2 = strings.Replace(s2, ",", ".", 1)
	case comma >= 0 && comma < dot:
		// 1,234.50
		s2 = strings.Replace(s2, ",", "", 1)
	}

	f, ok := parseFloat(s2)
	if !ok {
		return v, StatusFail
	}
	return Number(f), StatusCoerced
}

// Sanitize trims every text cell and coerces the quantity and price
// columns with ParseNumberLike. It returns a new table and a log of what
// changed.
func Sanitize(t Table) (Table, []string) {
	out := t.Clone()
	logs := []string{}

	for c, col := range out.Columns {
		before := 0
		for _, row := range out.Rows {
			if !row[c].IsMissing() {
				before++
			}
			if s, ok := row[c].Str(); ok {
				if s = strings.TrimSpace(s); s == "" {
					row[c] = Missing()
				} else {
					row[c] = Text(s)
				}
			}
		}
		if after := countPresent(out.Column(col)); after != before {
			logs = append(logs, fmt.Sprintf("Stripped column '%s': non-null %d -> %d", col, before, after))
		}
	}

	for _, col := range numericColumns {
		idx := out.Index(col)
		if idx < 0 {
			continue
		}

		counts := map[ParseStatus]int{}
		var fails []string
		for _, row := range out.Rows {
			parsed, status := ParseNumberLike(row[idx])
			row[idx] = parsed
			counts[status]++
			if status == StatusFail && len(fails) < maxFailExamples {
				fails = append(fails, row[idx].String())
			}
		}

		logs = append(logs, fmt.Sprintf("Column '%s' parse summary: {'ok': %d, 'coerced': %d, 'na': %d, 'fail': %d}",
			col, counts[StatusOK], counts[StatusCoerced], counts[StatusNA], counts[StatusFail]))
		if len(fails) > 0 {
			logs = append(logs, fmt.Sprintf("Column '%s' parse failures (examples): %s", col, quoteList(fails)))
		}
	}

	return out, logs
}

// quoteList renders strings as ['a', 'b'].
func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
