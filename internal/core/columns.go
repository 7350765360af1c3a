package core

import "math"

// maxExactInteger is the largest magnitude at which every whole float64
// still converts to int64 without loss.
const maxExactInteger = 1 << 53

// InferFieldType picks the storage type for a column: INTEGER when every
// present cell is a whole Number within ±2^53, REAL when every present cell
// is a Number, TEXT otherwise. An all-Missing column is TEXT.
func InferFieldType(values []Value) FieldType {
	typ, seen := FieldInteger, false
	for _, v := range values {
		switch v.Kind() {
		case KindMissing:
			continue
		case KindText:
			return FieldText
		}
		seen = true
		if f, _ := v.Float(); !v.IsInteger() || math.Abs(f) > maxExactInteger {
			typ = FieldReal
		}
	}
	if !seen {
		return FieldText
	}
	return typ
}

// FieldTypes returns the inferred storage type of every column of t.
func (t Table) FieldTypes() []FieldType {
	out := make([]FieldType, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = InferFieldType(t.Column(col))
	}
	return out
}
