package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		sample string
		want   rune
	}{
		{name: "comma", sample: "a,b,c\n1,2,3\n4,5,6", want: ','},
		{name: "tab", sample: "a\tb\tc\n1\t2\t3", want: '\t'},
		{name: "semicolon", sample: "a;b;c\n1;2;3", want: ';'},
		{name: "pipe", sample: "a|b|c\n1|2|3", want: '|'},
		{name: "no delimiter defaults to comma", sample: "hello world", want: ','},
		{name: "empty defaults to comma", sample: "", want: ','},
		{name: "tie prefers tab over comma", sample: "a\tb,c", want: '\t'},
		{name: "tie prefers comma over pipe", sample: "a|b,c", want: ','},
		{name: "only first five lines count", sample: "a\nb\nc\nd\ne\nf;g;h;i", want: ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, string(tt.want), string(DetectDelimiter(tt.sample)))
		})
	}
}

func TestLooksLikeHeader(t *testing.T) {
	tests := []struct {
		name  string
		first []string
		next  []string
		want  bool
	}{
		{name: "text over numbers", first: []string{"name", "qty"}, next: []string{"bolt", "4"}, want: true},
		{name: "numbers over numbers", first: []string{"1", "2"}, next: []string{"3", "4"}, want: false},
		{name: "length differs", first: []string{"1", "2"}, next: []string{"3"}, want: true},
		{name: "decimals and exponents are numeric", first: []string{"1.5", "-2", "3e4"}, next: []string{"1", "2", "3"}, want: false},
		{name: "empty cell is not numeric", first: []string{"1", ""}, next: []string{"1", "2"}, want: true},
		{name: "no following row", first: []string{"7"}, next: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeHeader(tt.first, tt.next))
		})
	}
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric(" 42 "))
	assert.True(t, IsNumeric("1e999"))
	assert.False(t, IsNumeric("$5"))
	assert.False(t, IsNumeric(""))
}
