package core

// value.go defines the cell type shared by every pipeline stage.
//
// A cell is exactly one of Missing, Number or Text. Stages switch on Kind
// instead of inspecting dynamic types, so every stage handles the full
// input domain explicitly.

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single table cell. The zero Value is Missing.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Missing returns the empty cell.
func Missing() Value { return Value{} }

// Number returns a numeric cell. NaN collapses to Missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Text returns a string cell.
func Text(s string) Value { return Value{kind: KindText, text: s} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric payload and whether the cell is a Number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Str returns the text payload and whether the cell is Text.
func (v Value) Str() (string, bool) {
	return v.text, v.kind == KindText
}

// IsInteger reports whether v is a Number with no fractional part.
func (v Value) IsInteger() bool {
	return v.kind == KindNumber && !math.IsInf(v.num, 0) && v.num == math.Trunc(v.num)
}

// String renders the cell for reports. Missing renders as "NaN".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return formatNumber(v.num)
	case KindText:
		return v.text
	default:
		return "NaN"
	}
}

// MarshalJSON encodes Missing as null and non-finite numbers as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsInf(v.num, 0) {
			return json.Marshal(formatNumber(v.num))
		}
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
