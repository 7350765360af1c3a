// Package postgres persists imported tables into PostgreSQL.
//
// Rows are bulk-loaded with COPY inside one transaction per table.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/datasheet/internal/config"
	"github.com/JonMunkholm/datasheet/internal/core"
)

// Persister writes tables through a connection pool.
type Persister struct {
	pool *pgxpool.Pool
}

var _ core.Persister = (*Persister)(nil)

// Open connects to the database at url, sizing the pool from cfg.
func Open(ctx context.Context, url string, cfg config.DatabaseConfig) (*Persister, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Persister{pool: pool}, nil
}

// Close releases the pool.
func (p *Persister) Close() error {
	p.pool.Close()
	return nil
}

// Persist writes t as table name according to mode.
func (p *Persister) Persist(ctx context.Context, name string, t core.Table, mode core.IfExists) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ident := pgx.Identifier{name}

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", ident.Sanitize()).Scan(&exists); err != nil {
		return fmt.Errorf("checking table %s: %w", name, err)
	}

	create := !exists
	switch mode {
	case core.IfExistsFail:
		if exists {
			return fmt.Errorf("%w: %s", core.ErrTableExists, name)
		}
	case core.IfExistsReplace:
		if exists {
			if _, err := tx.Exec(ctx, "DROP TABLE "+ident.Sanitize()); err != nil {
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
		if _, err := tx.Exec(ctx, createStatement(name, t.Columns, types)); err != nil {
			return fmt.Errorf("create table %s: %w", name, err)
		}
	}

	if t.Len() > 0 {
		n, err := tx.CopyFrom(ctx, ident, t.Columns, pgx.CopyFromRows(copyRows(t, types)))
		if err != nil {
			return fmt.Errorf("copy into %s: %w", name, err)
		}
		if int(n) != t.Len() {
			return fmt.Errorf("copy into %s: wrote %d of %d rows", name, n, t.Len())
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// sqlType maps an inferred field type to a column type.
func sqlType(f core.FieldType) string {
	switch f {
	case core.FieldInteger:
		return "BIGINT"
	case core.FieldReal:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

func createStatement(name string, columns []string, types []core.FieldType) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = pgx.Identifier{col}.Sanitize() + " " + sqlType(types[i])
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", pgx.Identifier{name}.Sanitize(), strings.Join(defs, ", "))
}

// copyRows encodes every cell as the pgtype matching its column type.
func copyRows(t core.Table, types []core.FieldType) [][]any {
	rows := make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]any, len(row))
		for i, v := range row {
			out[i] = encode(v, types[i])
		}
		rows[r] = out
	}
	return rows
}

func encode(v core.Value, typ core.FieldType) any {
	f, isNum := v.Float()
	switch typ {
	case core.FieldInteger:
		return pgtype.Int8{Int64: int64(f), Valid: isNum}
	case core.FieldReal:
		return pgtype.Float8{Float64: f, Valid: isNum}
	default:
		if v.IsMissing() {
			return pgtype.Text{}
		}
		return pgtype.Text{String: v.String(), Valid: true}
	}
}
