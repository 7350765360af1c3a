package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AutoFix applies conservative corrections and logs each one:
//
//  1. name: placeholders item_<row> for absent or blank names
//  2. quantity: numbers rounded to integers, or a column of 0
//  3. price: numbers rounded to two decimals, or a column of 0.0
//  4. with removeBadRows, rows still lacking name, quantity or price are dropped
//
// Values that cannot be converted are left as they are for Validate to flag.
// Running AutoFix on its own output changes nothing.
func AutoFix(t Table, removeBadRows bool) (Table, []string) {
	out := t.Clone()
	actions := []string{}

	name := string(RoleName)
	if !out.Has(name) {
		values := make([]Value, out.Len())
		for i := range values {
			values[i] = Text(placeholderName(i))
		}
		out = out.withColumn(name, values)
		actions = append(actions, "Created 'name' column with placeholders for all rows.")
	} else {
		idx, filled := out.Index(name), 0
		for i, row := range out.Rows {
			if isBlank(row[idx]) {
				row[idx] = Text(placeholderName(i))
				filled++
			}
		}
		if filled > 0 {
			actions = append(actions, fmt.Sprintf("Filled %d missing 'name' values with placeholders.", filled))
		}
	}

	qty := string(RoleQuantity)
	if idx := out.Index(qty); idx >= 0 {
		before := out.Len() - countPresent(out.Column(qty))
		for _, row := range out.Rows {
			row[idx] = coerceQuantity(row[idx])
		}
		after := out.Len() - countPresent(out.Column(qty))
		actions = append(actions, fmt.Sprintf("Coerced 'quantity' values; NaNs %d -> %d.", before, after))
	} else {
		out = out.withColumn(qty, constant(out.Len(), Number(0)))
		actions = append(actions, "Inserted 'quantity' column with default 0 for all rows.")
	}

	price := string(RolePrice)
	if idx := out.Index(price); idx >= 0 {
		for _, row := range out.Rows {
			row[idx] = coercePrice(row[idx])
		}
		actions = append(actions, "Attempted to coerce 'price' to float and rounded to 2 decimals where possible.")
	} else {
		out = out.withColumn(price, constant(out.Len(), Number(0)))
		actions = append(actions, "Inserted 'price' column with default 0.0 for all rows.")
	}

	if removeBadRows {
		ni, qi, pi := out.Index(name), out.Index(qty), out.Index(price)
		kept := out.Rows[:0]
		for _, row := range out.Rows {
			if isBlank(row[ni]) || row[qi].IsMissing() || row[pi].IsMissing() {
				continue
			}
			kept = append(kept, row)
		}
		removed := out.Len() - len(kept)
		out.Rows = kept
		actions = append(actions, fmt.Sprintf("Removed %d rows with irrecoverable problems via remove_bad_rows=True.", removed))
	}

	return out, actions
}

// placeholderName names the row at 0-based position i.
func placeholderName(i int) string {
	return "item_" + strconv.Itoa(i+1)
}

func isBlank(v Value) bool {
	if v.IsMissing() {
		return true
	}
	s, ok := v.Str()
	return ok && strings.TrimSpace(s) == ""
}

func constant(n int, v Value) []Value {
	out := make([]Value, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// coerceQuantity rounds a numeric cell half to even. Cells that do not
// evaluate to a finite number are returned unchanged.
func coerceQuantity(v Value) Value {
	f, ok := numericValue(v)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return v
	}
	r := math.RoundToEven(f)
	if r == 0 {
		r = 0 // no negative zero
	}
	return Number(r)
}

// coercePrice rounds a numeric cell to two decimals. Cells that do not
// evaluate to a number are returned unchanged.
func coercePrice(v Value) Value {
	f, ok := numericValue(v)
	if !ok {
		return v
	}
	return Number(round2(f))
}

// round2 rounds to two decimal places from the exact binary value, so
// 0.125 becomes 0.12 and 2.675 becomes 2.67.
func round2(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return f
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 2, 64), 64)
	if err != nil {
		return f
	}
	return r
}
