package core

import (
	"fmt"
	"sort"
	"sync"
)

// FieldType is the storage type of a schema field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldReal
)

func (f FieldType) String() string {
	switch f {
	case FieldInteger:
		return "INTEGER"
	case FieldReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// FieldSpec describes one field of an inventory type.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool
	Default  string // empty when the field has no default
}

// InventorySchema is the field list of one kind of inventory.
type InventorySchema struct {
	Key         string
	Description string
	Fields      []FieldSpec
}

// Required returns the names of required fields in declaration order.
func (s InventorySchema) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

var (
	schemas   = make(map[string]InventorySchema)
	schemasMu sync.RWMutex
)

// RegisterSchema adds an inventory type to the catalog.
// Panics if the key is already registered.
func RegisterSchema(s InventorySchema) {
	schemasMu.Lock()
	defer schemasMu.Unlock()

	if _, exists := schemas[s.Key]; exists {
		panic(fmt.Sprintf("inventory type already registered: %s", s.Key))
	}
	schemas[s.Key] = s
}

// LookupSchema returns an inventory type by key.
func LookupSchema(key string) (InventorySchema, bool) {
	schemasMu.RLock()
	defer schemasMu.RUnlock()

	s, ok := schemas[key]
	return s, ok
}

// Schemas returns all inventory types sorted by key.
func Schemas() []InventorySchema {
	schemasMu.RLock()
	defer schemasMu.RUnlock()

	out := make([]InventorySchema, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// CheckSchema lists required fields of s that t does not carry. A field is
// carried when it is a role column or a meta_<field> column. Role columns
// that exist but hold no values at all count as absent.
func CheckSchema(t Table, s InventorySchema) []string {
	var warnings []string
	for _, field := range s.Required() {
		if carriesField(t, field) {
			continue
		}
		warnings = append(warnings,
			fmt.Sprintf("Required field '%s' for %s inventory not found.", field, s.Key))
	}
	return warnings
}

func carriesField(t Table, field string) bool {
	if col := t.Column(field); col != nil && countPresent(col) > 0 {
		return true
	}
	return t.Has("meta_" + field)
}

func init() {
	RegisterSchema(InventorySchema{
		Key:         "warehouse",
		Description: "General warehouse inventory with SKU and location tracking",
		Fields: []FieldSpec{
			{Name: "name", Type: FieldText, Required: true},
			{Name: "sku", Type: FieldText},
			{Name: "quantity", Type: FieldInteger, Required: true},
			{Name: "price", Type: FieldReal, Required: true},
			{Name: "category", Type: FieldText},
			{Name: "supplier", Type: FieldText},
			{Name: "location", Type: FieldText},
			{Name: "min_stock", Type: FieldInteger, Default: "0"},
		},
	})
	RegisterSchema(InventorySchema{
		Key:         "retail",
		Description: "Retail store with cost/selling prices and discounts",
		Fields: []FieldSpec{
			{Name: "name", Type: FieldText, Required: true},
			{Name: "barcode", Type: FieldText},
			{Name: "quantity", Type: FieldInteger, Required: true},
			{Name: "cost_price", Type: FieldReal, Required: true},
			{Name: "selling_price", Type: FieldReal, Required: true},
			{Name: "brand", Type: FieldText},
			{Name: "category", Type: FieldText},
			{Name: "discount", Type: FieldReal, Default: "0"},
		},
	})
	RegisterSchema(InventorySchema{
		Key:         "library",
		Description: "Library books with author, ISBN, and copy management",
		Fields: []FieldSpec{
			{Name: "title", Type: FieldText, Required: true},
			{Name: "author", Type: FieldText, Required: true},
			{Name: "isbn", Type: FieldText},
			{Name: "copies_total", Type: FieldInteger, Required: true},
			{Name: "copies_available", Type: FieldInteger, Required: true},
			{Name: "genre", Type: FieldText},
			{Name: "publisher", Type: FieldText},
			{Name: "year", Type: FieldInteger},
			{Name: "location", Type: FieldText},
		},
	})
	RegisterSchema(InventorySchema{
		Key:         "restaurant",
		Description: "Restaurant ingredients with units and expiry dates",
		Fields: []FieldSpec{
			{Name: "name", Type: FieldText, Required: true},
			{Name: "quantity", Type: FieldReal, Required: true},
			{Name: "unit", Type: FieldText, Required: true},
			{Name: "cost_per_unit", Type: FieldReal, Required: true},
			{Name: "supplier", Type: FieldText},
			{Name: "expiry_date", Type: FieldText},
			{Name: "category", Type: FieldText},
			{Name: "min_stock", Type: FieldReal, Default: "0"},
		},
	})
	RegisterSchema(InventorySchema{
		Key:         "electronics",
		Description: "Electronics with models, brands, and warranties",
		Fields: []FieldSpec{
			{Name: "name", Type: FieldText, Required: true},
			{Name: "model", Type: FieldText, Required: true},
			{Name: "brand", Type: FieldText, Required: true},
			{Name: "quantity", Type: FieldInteger, Required: true},
			{Name: "price", Type: FieldReal, Required: true},
			{Name: "warranty_months", Type: FieldInteger, Default: "12"},
			{Name: "category", Type: FieldText},
			{Name: "specifications", Type: FieldText},
		},
	})
}
