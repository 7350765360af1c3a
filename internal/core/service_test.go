package core

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stockCSV = "name,qty,cost\nWidget,5,$10.00\n,3,-2\nGadget,abc,7"

type persistCall struct {
	name string
	rows int
	mode IfExists
}

// fakePersister records calls and fails for names listed in failFor.
type fakePersister struct {
	mu      sync.Mutex
	calls   []persistCall
	failFor map[string]error
}

func (f *fakePersister) Persist(_ context.Context, name string, t Table, mode IfExists) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, persistCall{name: name, rows: t.Len(), mode: mode})
	return f.failFor[name]
}

type recordedTable struct {
	report TableReport
	dryRun bool
}

type fakeRecorder struct {
	previews []TablePreview
	tables   []recordedTable
}

func (r *fakeRecorder) RecordPreview(p TablePreview) { r.previews = append(r.previews, p) }
func (r *fakeRecorder) RecordTable(tr TableReport, dryRun bool) {
	r.tables = append(r.tables, recordedTable{report: tr, dryRun: dryRun})
}

func TestService_PreviewAndAnalyze(t *testing.T) {
	svc := NewService(nil)

	previews, err := svc.PreviewAndAnalyze(context.Background(), writeFile(t, "stock.csv", stockCSV))
	require.NoError(t, err)
	require.Len(t, previews, 1)

	p := previews[0]
	assert.Equal(t, "stock", p.FileTableName)
	assert.Equal(t, "stock", p.MappedTableName)
	assert.Equal(t, []string{"name", "qty", "cost"}, p.Original.Columns)
	assert.Equal(t, map[Role]string{RoleName: "name", RoleQuantity: "qty", RolePrice: "cost"}, p.MappingReport.Mapping)
	assert.Equal(t, []string{"1 rows missing 'name'"}, p.Validation.Warnings)
	assert.Equal(t, []string{
		"1 rows have non-integer-like 'quantity' values.",
		"Could not evaluate numeric values for 'quantity' to check negativity.",
		"1 rows have negative 'price' values.",
	}, p.Validation.Errors)
	assert.Empty(t, p.ParseNotes)
}

func TestService_ProcessAndImport_DryRun(t *testing.T) {
	persister := &fakePersister{}
	svc := NewService(persister)

	report, err := svc.ProcessAndImport(context.Background(), writeFile(t, "stock.csv", stockCSV), DefaultImportOptions())
	require.NoError(t, err)
	require.Len(t, report.Tables, 1)

	tr := report.Tables[0]
	assert.True(t, report.DryRun)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "stock", tr.TargetTable)
	assert.Equal(t, []string{
		"Filled 1 missing 'name' values with placeholders.",
		"Coerced 'quantity' values; NaNs 0 -> 0.",
		"Attempted to coerce 'price' to float and rounded to 2 decimals where possible.",
		"Dry run: would write 3 rows to stock",
	}, tr.Actions)
	assert.Equal(t, []string{
		"1 rows have non-integer-like 'quantity' values.",
		"Could not evaluate numeric values for 'quantity' to check negativity.",
		"1 rows have negative 'price' values.",
	}, tr.ValidationAfter.Errors)
	assert.Empty(t, tr.ValidationAfter.Warnings)
	assert.Equal(t, []string{"1 rows missing 'name'"}, tr.ValidationBefore.Warnings)

	assert.Equal(t, []Value{Text("Widget"), Text("item_2"), Text("Gadget")}, tr.Output.Column("name"))
	assert.Equal(t, []Value{Number(5), Number(3), Text("abc")}, tr.Output.Column("quantity"))
	assert.Equal(t, []Value{Number(10), Number(-2), Number(7)}, tr.Output.Column("price"))

	assert.Zero(t, tr.RowsWritten)
	assert.Zero(t, report.RowsWritten())
	assert.Empty(t, tr.Errors)
	assert.Empty(t, persister.calls, "dry run must not persist")
}

func TestService_ProcessAndImport_Commit(t *testing.T) {
	persister := &fakePersister{}
	svc := NewService(persister)

	opts := DefaultImportOptions()
	opts.DryRun = false
	opts.TableName = "Warehouse 1"
	opts.IfExists = IfExistsReplace

	report, err := svc.ProcessAndImport(context.Background(), writeFile(t, "stock.csv", stockCSV), opts)
	require.NoError(t, err)
	require.Len(t, report.Tables, 1)

	assert.Equal(t, "warehouse_1", report.Tables[0].TargetTable)
	assert.Equal(t, "warehouse_1", report.Tables[0].Output.Name)
	assert.Equal(t, 3, report.Tables[0].RowsWritten)
	assert.Equal(t, []persistCall{{name: "warehouse_1", rows: 3, mode: IfExistsReplace}}, persister.calls)
}

func TestService_ProcessAndImport_PartialFailure(t *testing.T) {
	reg := NewRegistry()
	reg.Register(".two", func(string) ([]RawTable, error) {
		return []RawTable{
			{Table: NewTable("north", []string{"name", "qty", "price"}, [][]string{{"bolt", "4", "1"}})},
			{Table: NewTable("south", []string{"name", "qty", "price"}, [][]string{{"nut", "2", "1"}, {"pin", "1", "1"}})},
		}, nil
	})
	persister := &fakePersister{failFor: map[string]error{"south": errors.New("disk full")}}
	rec := &fakeRecorder{}
	svc := NewService(persister, WithRegistry(reg), WithRecorder(rec))

	opts := DefaultImportOptions()
	opts.DryRun = false

	report, err := svc.ProcessAndImport(context.Background(), writeFile(t, "book.two", "x"), opts)
	require.NoError(t, err)
	require.Len(t, report.Tables, 2)

	assert.Equal(t, 1, report.Tables[0].RowsWritten)
	assert.False(t, report.Tables[0].Failed())

	assert.Zero(t, report.Tables[1].RowsWritten)
	assert.Equal(t, []string{"disk full"}, report.Tables[1].Errors)
	assert.True(t, report.Tables[1].Failed())

	assert.Equal(t, 1, report.RowsWritten())
	assert.Len(t, rec.previews, 2)
	require.Len(t, rec.tables, 2)
	assert.False(t, rec.tables[1].dryRun)
}

func TestService_ProcessAndImport_NoTarget(t *testing.T) {
	opts := DefaultImportOptions()
	opts.DryRun = false

	report, err := NewService(nil).ProcessAndImport(context.Background(), writeFile(t, "stock.csv", stockCSV), opts)
	require.NoError(t, err)
	require.Len(t, report.Tables, 1)
	assert.Equal(t, []string{"no persistence target configured"}, report.Tables[0].Errors)
}

func TestService_ProcessAndImport_PersisterPanics(t *testing.T) {
	persister := PersisterFunc(func(context.Context, string, Table, IfExists) error {
		panic("boom")
	})
	opts := DefaultImportOptions()
	opts.DryRun = false

	report, err := NewService(persister).ProcessAndImport(context.Background(), writeFile(t, "stock.csv", stockCSV), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"persist stock: panic: boom"}, report.Tables[0].Errors)
}

func TestService_ProcessAndImport_AutoFixDisabled(t *testing.T) {
	opts := DefaultImportOptions()
	opts.AutoFix = false

	report, err := NewService(nil).ProcessAndImport(context.Background(), writeFile(t, "stock.csv", stockCSV), opts)
	require.NoError(t, err)

	tr := report.Tables[0]
	assert.Equal(t, tr.ValidationBefore, tr.ValidationAfter)
	assert.Equal(t, []string{"Dry run: would write 3 rows to stock"}, tr.Actions)
	assert.Equal(t, []Value{Text("Widget"), Missing(), Text("Gadget")}, tr.Output.Column("name"))
}

func TestService_ProcessAndImport_SchemaWarnings(t *testing.T) {
	opts := DefaultImportOptions()
	opts.InventoryType = "library"

	report, err := NewService(nil).ProcessAndImport(context.Background(), writeFile(t, "stock.csv", stockCSV), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Required field 'title' for library inventory not found.",
		"Required field 'author' for library inventory not found.",
		"Required field 'copies_total' for library inventory not found.",
		"Required field 'copies_available' for library inventory not found.",
	}, report.Tables[0].SchemaWarnings)
}

func TestService_ProcessAndImport_Errors(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.ProcessAndImport(ctx, filepath.Join(t.TempDir(), "nope.csv"), DefaultImportOptions())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := svc.ProcessAndImport(ctx, writeFile(t, "a.docx", "x"), DefaultImportOptions())
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("invalid if_exists", func(t *testing.T) {
		opts := DefaultImportOptions()
		opts.IfExists = "merge"
		_, err := svc.ProcessAndImport(ctx, writeFile(t, "stock.csv", stockCSV), opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid import options")
	})

	t.Run("unknown inventory type", func(t *testing.T) {
		opts := DefaultImportOptions()
		opts.InventoryType = "garage"
		_, err := svc.ProcessAndImport(ctx, writeFile(t, "stock.csv", stockCSV), opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid import options")
	})
}

func TestService_DegradedParseIsReported(t *testing.T) {
	previews, err := NewService(nil).PreviewAndAnalyze(context.Background(), writeFile(t, "notes.txt", "first line\nsecond, with comma\n"))
	require.NoError(t, err)
	require.Len(t, previews, 1)
	require.Len(t, previews[0].ParseNotes, 1)
	assert.Contains(t, previews[0].ParseNotes[0], "parse degraded")
}
