// Package sqlite persists imported tables into a SQLite database file.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation, so the
// binary needs no CGO. Each Persist call runs in one transaction: the
// table is created (or dropped and recreated) and every row inserted, or
// nothing changes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/JonMunkholm/datasheet/internal/core"
)

// Persister writes tables to one database file.
type Persister struct {
	db *sql.DB
}

var _ core.Persister = (*Persister)(nil)

// Open opens or creates the database at path. busyTimeout is how long a
// writer waits on a lock held by another process.
func Open(path string, busyTimeout time.Duration) (*Persister, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	return &Persister{db: db}, nil
}

// Close closes the database connection.
func (p *Persister) Close() error {
	return p.db.Close()
}

// Persist writes t as table name according to mode.
func (p *Persister) Persist(ctx context.Context, name string, t core.Table, mode core.IfExists) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := tableExists(ctx, tx, name)
	if err != nil {
		return err
	}

	create := !exists
	switch mode {
	case core.IfExistsFail:
		if exists {
			return fmt.Errorf("%w: %s", core.ErrTableExists, name)
		}
	case core.IfExistsReplace:
		if exists {
			if _, err := tx.ExecContext(ctx, "DROP TABLE "+quoteIdent(name)); err != nil {
				return fmt.Errorf("drop table %s: %w", name, err)
			}
		}
		create = true
	case core.IfExistsAppend:
	default:
		return fmt.Errorf("unknown if-exists policy %q", mode)
	}

	types := t.FieldTypes()
	if create {
		if _, err := tx.ExecContext(ctx, createStatement(name, t.Columns, types)); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}

	if t.Len() > 0 {
		stmt, err := tx.PrepareContext(ctx, insertStatement(name, t.Columns))
		if err != nil {
			return fmt.Errorf("prepare insert into %s: %w", name, err)
		}
		defer stmt.Close()

		for i, row := range t.Rows {
			if _, err := stmt.ExecContext(ctx, rowArgs(row, types)...); err != nil {
				return fmt.Errorf("insert row %d into %s: %w", i+1, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func tableExists(ctx context.Context, tx *sql.Tx, name string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking table %s: %w", name, err)
	}
	return n > 0, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func createStatement(name string, columns []string, types []core.FieldType) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quoteIdent(col) + " " + types[i].String()
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
}

func insertStatement(name string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

// rowArgs converts cells to driver values for columns of the given types.
func rowArgs(row []core.Value, types []core.FieldType) []any {
	args := make([]any, len(row))
	for i, v := range row {
		switch v.Kind() {
		case core.KindMissing:
			args[i] = nil
		case core.KindNumber:
			f, _ := v.Float()
			switch types[i] {
			case core.FieldInteger:
				args[i] = int64(f)
			case core.FieldReal:
				args[i] = f
			default:
				args[i] = v.String()
			}
		default:
			args[i] = v.String()
		}
	}
	return args
}
