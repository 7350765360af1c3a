package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuessColumnFor(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		columns []string
		want    string
		wantOK  bool
	}{
		{name: "exact match", role: RoleQuantity, columns: []string{"name", "qty", "cost"}, want: "qty", wantOK: true},
		{name: "exact match ignores case", role: RoleID, columns: []string{"SKU", "Name"}, want: "SKU", wantOK: true},
		{name: "earlier candidate wins exact", role: RoleID, columns: []string{"sku", "id"}, want: "id", wantOK: true},
		{name: "exact beats substring", role: RoleID, columns: []string{"product_id", "id"}, want: "id", wantOK: true},
		{name: "substring scans columns in order", role: RolePrice, columns: []string{"Unit Cost", "List Price"}, want: "Unit Cost", wantOK: true},
		{name: "substring match", role: RoleName, columns: []string{"Product Name", "Color"}, want: "Product Name", wantOK: true},
		{name: "no match", role: RolePrice, columns: []string{"color", "weight"}, wantOK: false},
		{name: "no columns", role: RoleName, columns: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GuessColumnFor(tt.role, tt.columns)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCandidates_ReturnsCopy(t *testing.T) {
	c := Candidates(RoleID)
	assert.Equal(t, []string{"id", "item_id", "product_id", "sku"}, c)

	c[0] = "changed"
	assert.Equal(t, "id", Candidates(RoleID)[0])
}

func TestMapToInventory(t *testing.T) {
	src := NewTable("stock", []string{"Product Name", "Unit Price", "Stock Level", "Color"}, [][]string{
		{"Bolt", "0.10", "40", "silver"},
		{"Nut", "0.05", "15", "black"},
	})

	mapped, report := MapToInventory(src)

	assert.Equal(t, map[Role]string{
		RoleName:     "Product Name",
		RoleQuantity: "Stock Level",
		RolePrice:    "Unit Price",
	}, report.Mapping)
	assert.Empty(t, report.Notes)

	assert.Equal(t, []string{"id", "name", "quantity", "price", "meta_color"}, mapped.Columns)
	assert.Equal(t, [][]Value{
		{Missing(), Text("Bolt"), Text("40"), Text("0.10"), Text("silver")},
		{Missing(), Text("Nut"), Text("15"), Text("0.05"), Text("black")},
	}, mapped.Rows)
}

func TestMapToInventory_NotesForMissingRoles(t *testing.T) {
	mapped, report := MapToInventory(NewTable("t", []string{"foo"}, [][]string{{"x"}}))

	assert.Empty(t, report.Mapping)
	assert.Equal(t, []string{
		"No candidate found for 'name'; placeholders may be generated.",
		"No candidate found for 'quantity'; values will be missing (NaN) by default.",
		"No candidate found for 'price'; values will be missing (NaN) by default.",
	}, report.Notes)
	assert.Equal(t, []string{"id", "name", "quantity", "price", "meta_foo"}, mapped.Columns)
	assert.Equal(t, [][]Value{{Missing(), Missing(), Missing(), Missing(), Text("x")}}, mapped.Rows)
}

func TestMapToInventory_SharedAmountColumn(t *testing.T) {
	mapped, report := MapToInventory(NewTable("t", []string{"item", "amount"}, [][]string{{"bolt", "3"}}))

	assert.Equal(t, "amount", report.Mapping[RoleQuantity])
	assert.Equal(t, "amount", report.Mapping[RolePrice])
	assert.Equal(t, []string{"id", "name", "quantity", "price"}, mapped.Columns)
	assert.Equal(t, [][]Value{{Missing(), Text("bolt"), Text("3"), Text("3")}}, mapped.Rows)
}

func TestMapToInventory_MetaCollisions(t *testing.T) {
	src := Table{
		Name:    "t",
		Columns: []string{"name", "Color", "color ", "COLOR"},
		Rows:    [][]Value{texts("bolt", "a", "b", "c")},
	}

	mapped, _ := MapToInventory(src)

	assert.Equal(t, []string{"id", "name", "quantity", "price", "meta_color", "meta_color_1", "meta_color_2"}, mapped.Columns)
	assert.Equal(t, []Value{Text("a")}, mapped.Column("meta_color"))
	assert.Equal(t, []Value{Text("c")}, mapped.Column("meta_color_2"))
}

func TestMapToInventory_EveryColumnAppearsOnce(t *testing.T) {
	cols := []string{"SKU", "Title", "Qty On Hand", "MRP", "Supplier", "Notes", "Width"}
	src := NewTable("t", cols, [][]string{{"1", "2", "3", "4", "5", "6", "7"}})

	mapped, report := MapToInventory(src)

	claimed := map[string]bool{}
	for _, col := range report.Mapping {
		claimed[col] = true
	}
	metas := 0
	for _, c := range mapped.Columns {
		if len(c) > 5 && c[:5] == "meta_" {
			metas++
		}
	}
	assert.Equal(t, len(cols)-len(claimed), metas)
	assert.Equal(t, len(Roles)+metas, len(mapped.Columns))
}

func TestMapToInventory_Deterministic(t *testing.T) {
	src := NewTable("t", []string{"Item ID", "Description", "Count", "Rate", "Bin"}, [][]string{{"1", "bolt", "4", "0.5", "A"}})

	first, r1 := MapToInventory(src)
	second, r2 := MapToInventory(src)

	require.Equal(t, r1, r2)
	assert.Equal(t, first, second)
}

func TestMapToInventory_DoesNotMutateInput(t *testing.T) {
	src := NewTable("t", []string{"name"}, [][]string{{"bolt"}})
	before := src.Clone()

	MapToInventory(src)

	assert.Equal(t, before, src)
}

func TestMapToInventory_SymbolHeaderUsesPosition(t *testing.T) {
	src := NewTable("t", []string{"name", "%%"}, [][]string{{"bolt", "x"}})

	mapped, _ := MapToInventory(src)

	assert.Equal(t, []Value{Text("x")}, mapped.Column("meta_col_2"))
}
