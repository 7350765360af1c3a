package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "missing file",
			err:         fmt.Errorf("%w: /tmp/stock.csv", ErrNotFound),
			wantCode:    "FILE006",
			wantMessage: "File not found",
		},
		{
			name:        "unsupported format",
			err:         &UnsupportedFormatError{Ext: ".pdf", Supported: []string{".csv"}},
			wantCode:    "FILE007",
			wantMessage: "This file type cannot be imported",
		},
		{
			name:        "existing table",
			err:         fmt.Errorf("persist stock: %w", ErrTableExists),
			wantCode:    "DB008",
			wantMessage: "The target table already exists",
		},
		{
			name:        "no target",
			err:         ErrNoTarget,
			wantCode:    "DB009",
			wantMessage: "No database is configured for this import",
		},
		{
			name:        "sqlite column mismatch",
			err:         errors.New("table stock has no column named meta_color"),
			wantCode:    "DB011",
			wantMessage: "Columns do not match the existing table",
		},
		{
			name:        "postgres column mismatch",
			err:         errors.New(`ERROR: column "meta_color" of relation "stock" does not exist`),
			wantCode:    "DB011",
			wantMessage: "Columns do not match the existing table",
		},
		{
			name:        "connection refused",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "deadline maps before generic timeout",
			err:         context.DeadlineExceeded,
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "timeout",
			err:         errors.New("i/o timeout"),
			wantCode:    "DB006",
			wantMessage: "Operation timed out",
		},
		{
			name:        "invalid options",
			err:         errors.New("invalid import options: IfExists"),
			wantCode:    "VAL007",
			wantMessage: "The import options are not valid",
		},
		{
			name:        "rate limit",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DATABASE IS LOCKED"),
			wantCode:    "DB010",
			wantMessage: "The database is busy with another write",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrTableExists)

	expected := "The target table already exists (Code: DB008). Choose another table name or use if-exists=append or replace"
	assert.Equal(t, expected, result)
	assert.Empty(t, FormatUserError(nil))
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrNoTarget,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUserFacing(tt.err))
		})
	}
}
