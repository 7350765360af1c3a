package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datasheet/internal/config"
	"github.com/JonMunkholm/datasheet/internal/core"
)

func stockTable() core.Table {
	return core.Table{
		Name:    "stock",
		Columns: []string{"id", "name", "quantity", "price"},
		Rows: [][]core.Value{
			{core.Missing(), core.Text("Widget"), core.Number(5), core.Number(10.5)},
			{core.Missing(), core.Text("item_2"), core.Missing(), core.Number(-2)},
		},
	}
}

func TestCreateStatement(t *testing.T) {
	got := createStatement("Stock 1", []string{"name", "quantity", "price"},
		[]core.FieldType{core.FieldText, core.FieldInteger, core.FieldReal})

	assert.Equal(t, `CREATE TABLE "Stock 1" ("name" TEXT, "quantity" BIGINT, "price" DOUBLE PRECISION)`, got)
}

func TestCopyRows(t *testing.T) {
	tbl := stockTable()

	rows := copyRows(tbl, tbl.FieldTypes())

	require.Len(t, rows, 2)
	assert.Equal(t, []any{
		pgtype.Text{},
		pgtype.Text{String: "Widget", Valid: true},
		pgtype.Int8{Int64: 5, Valid: true},
		pgtype.Float8{Float64: 10.5, Valid: true},
	}, rows[0])
	assert.Equal(t, pgtype.Int8{}, rows[1][2])
}

func TestEncode_NumberInTextColumn(t *testing.T) {
	assert.Equal(t, pgtype.Text{String: "7", Valid: true}, encode(core.Number(7), core.FieldText))
}

// TestPersist_Integration runs against a live server named by
// DATASHEET_TEST_POSTGRES_URL.
func TestPersist_Integration(t *testing.T) {
	url := os.Getenv("DATASHEET_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("DATASHEET_TEST_POSTGRES_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p, err := Open(ctx, url, config.DatabaseConfig{MaxConns: 2, MinConns: 0, MaxConnLifetime: time.Minute, MaxConnIdleTime: time.Minute})
	require.NoError(t, err)
	defer p.Close()

	name := fmt.Sprintf("datasheet_test_%d", time.Now().UnixNano())
	defer p.pool.Exec(context.Background(), "DROP TABLE IF EXISTS "+name)

	count := func() int {
		var n int
		require.NoError(t, p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+name).Scan(&n))
		return n
	}

	require.NoError(t, p.Persist(ctx, name, stockTable(), core.IfExistsFail))
	assert.Equal(t, 2, count())

	assert.ErrorIs(t, p.Persist(ctx, name, stockTable(), core.IfExistsFail), core.ErrTableExists)

	require.NoError(t, p.Persist(ctx, name, stockTable(), core.IfExistsAppend))
	assert.Equal(t, 4, count())

	require.NoError(t, p.Persist(ctx, name, stockTable(), core.IfExistsReplace))
	assert.Equal(t, 2, count())
}

func TestCopyRows_HugeWholeNumberIsDouble(t *testing.T) {
	tbl := core.Table{
		Columns: []string{"quantity"},
		Rows:    [][]core.Value{{core.Number(5)}, {core.Number(1e20)}},
	}
	types := tbl.FieldTypes()

	assert.Equal(t, []core.FieldType{core.FieldReal}, types)
	assert.Equal(t, []any{pgtype.Float8{Float64: 1e20, Valid: true}}, copyRows(tbl, types)[1])
	assert.Contains(t, createStatement("stock", tbl.Columns, types), `"quantity" DOUBLE PRECISION`)
}
