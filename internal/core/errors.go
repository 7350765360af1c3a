package core

import (
	"errors"
	"fmt"
	"strings"
)

// Only ErrNotFound, ErrUnsupportedFormat and bad options stop a run.
// Everything else surfaces as data in the report.
var (
	ErrNotFound          = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrParseDegraded     = errors.New("parse degraded")
	ErrTableExists       = errors.New("table already exists")
	ErrNoTarget          = errors.New("no persistence target configured")
	ErrInvalidOptions    = errors.New("invalid import options")
	ErrUnknownType       = errors.New("unknown inventory type")
)

// UnsupportedFormatError names the rejected extension and the formats
// the registry can read.
type UnsupportedFormatError struct {
	Ext       string
	Supported []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("Unsupported file type: %s. Supported formats: [%s]",
		e.Ext, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// degraded records a parse fallback.
func degraded(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParseDegraded, fmt.Sprintf(format, args...))
}
