package core

// error_messages.go maps technical errors to user-facing messages.
//
// Users can quote the code to support staff. Codes by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File exceeds the upload size limit
//	FILE004 - No file was provided
//	FILE006 - File not found
//	FILE007 - Unsupported file type
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	DB007 - Deadlock
//	DB008 - Target table already exists (if-exists=fail)
//	DB009 - No database target configured
//	DB010 - Database file is locked by another writer
//	DB011 - Columns do not match the existing table (append)
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL007 - Invalid import options
//	VAL008 - Unknown inventory type
//
// # Import Errors (UPL001-UPL099)
//
//	UPL002 - Too many concurrent imports
//	UPL004 - Request cancelled
//	UPL005 - Request timed out
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// Anything else maps to ERR000.

import (
	"fmt"
	"strings"
)

// UserMessage is a user-facing description of an error.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// catalogue entries are tried in order; the first entry with any pattern
// contained in the lowercased error text wins.
var catalogue = []struct {
	patterns []string
	msg      UserMessage
}{
	{[]string{"file too large"}, UserMessage{"File exceeds the maximum upload size", "Split the datasheet into smaller files", "FILE001"}},
	{[]string{"no file provided"}, UserMessage{"No file was selected", "Please select a datasheet to upload", "FILE004"}},
	{[]string{"file not found"}, UserMessage{"File not found", "Check the path and try again", "FILE006"}},
	{[]string{"unsupported file type"}, UserMessage{"This file type cannot be imported", "Save the datasheet as CSV, TSV, TXT or XLSX", "FILE007"}},

	{[]string{"table already exists"}, UserMessage{"The target table already exists", "Choose another table name or use if-exists=append or replace", "DB008"}},
	{[]string{"no persistence target"}, UserMessage{"No database is configured for this import", "Pass --db or set DATASHEET_DB", "DB009"}},
	{[]string{"database is locked"}, UserMessage{"The database is busy with another write", "Please try again", "DB010"}},
	// SQLite and PostgreSQL word a column mismatch differently.
	{[]string{"has no column named", "of relation"}, UserMessage{"Columns do not match the existing table", "Import into a new table or use if-exists=replace", "DB011"}},
	{[]string{"connection refused"}, UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{[]string{"connection reset"}, UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{[]string{"deadlock"}, UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},

	{[]string{"invalid import options"}, UserMessage{"The import options are not valid", "Use if-exists fail, replace or append", "VAL007"}},
	{[]string{"unknown inventory type"}, UserMessage{"Unknown inventory type", "Run 'datasheet types' to list the available types", "VAL008"}},

	{[]string{"too many concurrent imports"}, UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "UPL002"}},
	{[]string{"context canceled"}, UserMessage{"Request was cancelled", "Please try again", "UPL004"}},
	{[]string{"context deadline exceeded"}, UserMessage{"Request timed out", "Try a smaller file or check your connection", "UPL005"}},
	// Must follow the context deadline entry.
	{[]string{"timeout"}, UserMessage{"Operation timed out", "Try a smaller file or try again later", "DB006"}},

	{[]string{"rate limit"}, UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

var unknownError = UserMessage{"An unexpected error occurred", "Please try again or contact support", "ERR000"}

// MapError converts a technical error into a UserMessage. A nil error maps
// to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	text := strings.ToLower(err.Error())
	for _, entry := range catalogue {
		for _, p := range entry.patterns {
			if strings.Contains(text, p) {
				return entry.msg
			}
		}
	}
	return unknownError
}

// FormatUserError renders err as "Message (Code: X). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Code == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != unknownError.Code
}
