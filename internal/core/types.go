package core

import (
	"context"
	"time"
)

// Role is one of the canonical inventory columns.
type Role string

const (
	RoleID       Role = "id"
	RoleName     Role = "name"
	RoleQuantity Role = "quantity"
	RolePrice    Role = "price"
)

// Roles lists the canonical roles in resolution order.
var Roles = []Role{RoleID, RoleName, RoleQuantity, RolePrice}

// MappingReport records which source column was chosen for each role.
// A role absent from Mapping matched no column.
type MappingReport struct {
	Mapping map[Role]string `json:"mapping"`
	Notes   []string        `json:"notes"`
}

// Column returns the source column mapped to role.
func (m MappingReport) Column(role Role) (string, bool) {
	col, ok := m.Mapping[role]
	return col, ok
}

// ValidationStats summarizes the validated table.
type ValidationStats struct {
	Rows int `json:"rows"`
}

// ValidationResult is the outcome of Validate. Errors are business-rule
// violations; warnings are tolerable gaps.
type ValidationResult struct {
	Errors   []string        `json:"errors"`
	Warnings []string        `json:"warnings"`
	Stats    ValidationStats `json:"stats"`
}

// TablePreview is the side-effect-free analysis of one parsed table.
type TablePreview struct {
	FileTableName   string           `json:"file_table_name"`
	MappedTableName string           `json:"mapped_table_name"`
	Original        Table            `json:"original"`
	Mapped          Table            `json:"mapped"`
	Sanitized       Table            `json:"sanitized"`
	SanitizeLogs    []string         `json:"sanitize_logs"`
	Validation      ValidationResult `json:"validation"`
	MappingReport   MappingReport    `json:"mapping_report"`
	ParseNotes      []string         `json:"parse_notes,omitempty"`
}

// TableReport is the outcome of importing one parsed table.
type TableReport struct {
	FileTableName    string           `json:"file_table_name"`
	MappedTableName  string           `json:"mapped_table_name"`
	TargetTable      string           `json:"target_table"`
	MappingReport    MappingReport    `json:"mapping_report"`
	SanitizeLogs     []string         `json:"sanitize_logs"`
	ValidationBefore ValidationResult `json:"validation_before"`
	Actions          []string         `json:"actions"`
	ValidationAfter  ValidationResult `json:"validation_after"`
	RowsWritten      int              `json:"rows_written"`
	Errors           []string         `json:"errors"`
	ParseNotes       []string         `json:"parse_notes,omitempty"`
	SchemaWarnings   []string         `json:"schema_warnings,omitempty"`
	Output           Table            `json:"output"`
}

// Failed reports whether persisting this table raised an error.
func (r TableReport) Failed() bool { return len(r.Errors) > 0 }

// ImportReport covers one source file.
type ImportReport struct {
	RunID     string        `json:"run_id"`
	File      string        `json:"file"`
	DryRun    bool          `json:"dry_run"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Tables    []TableReport `json:"tables"`
}

// RowsWritten sums rows persisted across tables.
func (r ImportReport) RowsWritten() int {
	n := 0
	for _, t := range r.Tables {
		n += t.RowsWritten
	}
	return n
}

// IfExists is the policy for a target table that already exists.
type IfExists string

const (
	IfExistsFail    IfExists = "fail"
	IfExistsReplace IfExists = "replace"
	IfExistsAppend  IfExists = "append"
)

// ParseIfExists validates a policy name.
func ParseIfExists(s string) (IfExists, bool) {
	switch p := IfExists(s); p {
	case IfExistsFail, IfExistsReplace, IfExistsAppend:
		return p, true
	}
	return "", false
}

// ImportOptions control ProcessAndImport.
type ImportOptions struct {
	// TableName, when set, is slugified and used for every table in the file.
	TableName string `validate:"omitempty,max=128"`

	DryRun        bool
	AutoFix       bool
	RemoveBadRows bool
	IfExists      IfExists `validate:"required,oneof=fail replace append"`

	// InventoryType optionally names a catalog schema to check tables against.
	InventoryType string `validate:"omitempty,oneof=warehouse retail library restaurant electronics"`
}

// DefaultImportOptions is a dry run with auto-fix that appends on commit.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		DryRun:   true,
		AutoFix:  true,
		IfExists: IfExistsAppend,
	}
}

// Persister writes one table under a name. Implementations must serialize
// writes to the same table name.
type Persister interface {
	Persist(ctx context.Context, name string, t Table, mode IfExists) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, name string, t Table, mode IfExists) error

func (f PersisterFunc) Persist(ctx context.Context, name string, t Table, mode IfExists) error {
	return f(ctx, name, t, mode)
}
