package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferFieldType(t *testing.T) {
	tests := []struct {
		name   string
		values []Value
		want   FieldType
	}{
		{name: "whole numbers", values: []Value{Number(1), Missing(), Number(-3)}, want: FieldInteger},
		{name: "fractional number", values: []Value{Number(1), Number(2.5)}, want: FieldReal},
		{name: "largest exact integer", values: []Value{Number(1 << 53), Number(-(1 << 53))}, want: FieldInteger},
		{name: "whole number past 2^53 is real", values: []Value{Number(5), Number(1e20)}, want: FieldReal},
		{name: "infinity is real", values: []Value{Number(math.Inf(1))}, want: FieldReal},
		{name: "any text", values: []Value{Number(1), Text("abc")}, want: FieldText},
		{name: "all missing", values: []Value{Missing(), Missing()}, want: FieldText},
		{name: "empty", values: nil, want: FieldText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferFieldType(tt.values))
		})
	}
}

func TestTable_FieldTypes(t *testing.T) {
	sanitized, _ := Sanitize(e2eMapped())
	fixed, _ := AutoFix(sanitized, false)

	assert.Equal(t, []FieldType{FieldText, FieldText, FieldText, FieldInteger}, fixed.FieldTypes())
}
