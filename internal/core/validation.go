package core

// validation.go checks a mapped table against the inventory business rules.
//
// Validate never mutates its input and never fails: every finding is
// returned as data in a ValidationResult.

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// IntCoerceEpsilon is how close a float must be to an integer to count as one.
const IntCoerceEpsilon = 1e-6

var integerText = regexp.MustCompile(`^-?\d+$`)

// Validate reports missing names, non-integer or negative quantities, and
// non-numeric or negative prices.
func Validate(t Table) ValidationResult {
	res := ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
		Stats:    ValidationStats{Rows: t.Len()},
	}

	if names := t.Column(string(RoleName)); names == nil {
		res.Warnings = append(res.Warnings, "Missing 'name' column.")
	} else if n := len(names) - countPresent(names); n > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d rows missing 'name'", n))
	}

	if qty := t.Column(string(RoleQuantity)); qty != nil {
		bad := 0
		for _, v := range qty {
			if !v.IsMissing() && !IsIntegerLike(v) {
				bad++
			}
		}
		if bad > 0 {
			res.Errors = append(res.Errors, fmt.Sprintf("%d rows have non-integer-like 'quantity' values.", bad))
		}
		res.Errors = append(res.Errors, negativeErrors("quantity", qty)...)
	} else {
		res.Warnings = append(res.Warnings, "No 'quantity' column present; default behavior will set quantity=0 if auto-fixed.")
	}

	if price := t.Column(string(RolePrice)); price != nil {
		bad := 0
		for _, v := range price {
			if v.Kind() == KindText {
				bad++
			}
		}
		if bad > 0 {
			res.Errors = append(res.Errors, fmt.Sprintf("%d rows have non-numeric 'price' values.", bad))
		}
		res.Errors = append(res.Errors, negativeErrors("price", price)...)
	} else {
		res.Warnings = append(res.Warnings, "No 'price' column present; default behavior will set price=0.0 if auto-fixed.")
	}

	return res
}

// IsIntegerLike reports whether v is a Number within IntCoerceEpsilon of an
// integer, or Text spelling an integer.
func IsIntegerLike(v Value) bool {
	switch v.Kind() {
	case KindNumber:
		f, _ := v.Float()
		if math.IsInf(f, 0) {
			return false
		}
		return math.Abs(f-math.RoundToEven(f)) < IntCoerceEpsilon
	case KindText:
		s, _ := v.Str()
		return integerText.MatchString(strings.TrimSpace(s))
	default:
		return false
	}
}

// negativeErrors flags cells that evaluate below zero. Text that does not
// evaluate to a number cannot be checked and is reported once per column.
func negativeErrors(column string, values []Value) []string {
	var errs []string
	negative, unknown := 0, false
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		f, ok := numericValue(v)
		switch {
		case !ok:
			unknown = true
		case f < 0:
			negative++
		}
	}
	if negative > 0 {
		errs = append(errs, fmt.Sprintf("%d rows have negative '%s' values.", negative, column))
	}
	if unknown {
		errs = append(errs, fmt.Sprintf("Could not evaluate numeric values for '%s' to check negativity.", column))
	}
	return errs
}

// numericValue returns the float a cell evaluates to.
func numericValue(v Value) (float64, bool) {
	switch v.Kind() {
	case KindNumber:
		return v.Float()
	case KindText:
		s, _ := v.Str()
		return parseFloat(s)
	default:
		return 0, false
	}
}
