package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caster/internal/analyze"
	"caster/internal/diagnostic"
)

// buildTestTypeGraph creates a simple type graph for testing validation.
func buildTestTypeGraph() *analyze.TypeGraph {
	graph := analyze.NewTypeGraph()

	stringType := &analyze.TypeInfo{Kind: analyze.TypeKindBasic}
	intType := &analyze.TypeInfo{Kind: analyze.TypeKindBasic}

	customer := &analyze.TypeInfo{
		ID:   analyze.TypeID{PkgPath: "example.com/store", Name: "Customer"},
		Kind: analyze.TypeKindStruct,
		Fields: []analyze.FieldInfo{
			{Name: "Email", Exported: true, Type: stringType, Index: 0},
		},
	}
	graph.Types[customer.ID] = customer

	status := &analyze.TypeInfo{
		ID:         analyze.TypeID{PkgPath: "example.com/store", Name: "OrderStatus"},
		Kind:       analyze.TypeKindAlias,
		Underlying: stringType,
	}
	graph.Types[status.ID] = status
	graph.Enums[status.ID] = &analyze.EnumInfo{
		ID:    status.ID,
		Basic: "string",
		Constants: []analyze.Constant{
			{Name: "StatusPending", Value: "PENDING"},
			{Name: "StatusPaid", Value: "PAID"},
		},
	}

	storeOrder := &analyze.TypeInfo{
		ID:   analyze.TypeID{PkgPath: "example.com/store", Name: "Order"},
		Kind: analyze.TypeKindStruct,
		Fields: []analyze.FieldInfo{
			{Name: "ID", Exported: true, Type: intType, Index: 0},
			{Name: "Customer", Exported: true, Type: &analyze.TypeInfo{Kind: analyze.TypeKindPointer, ElemType: customer}, Index: 1},
			{Name: "Status", Exported: true, Type: status, Index: 2},
			{Name: "TotalCents", Exported: true, Type: intType, Index: 3},
			{Name: "Note", Exported: true, Type: stringType, Index: 4},
		},
	}
	graph.Types[storeOrder.ID] = storeOrder

	warehouseOrder := &analyze.TypeInfo{
		ID:   analyze.TypeID{PkgPath: "example.com/warehouse", Name: "Order"},
		Kind: analyze.TypeKindStruct,
		Fields: []analyze.FieldInfo{
			{Name: "OrderNumber", Exported: true, Type: stringType, Index: 0},
			{Name: "Email", Exported: true, Type: stringType, Index: 1},
			{Name: "TotalAmount", Exported: true, Type: intType, Index: 2},
			{Name: "Currency", Exported: true, Type: stringType, Index: 3},
			{Name: "Note", Exported: true, Type: stringType, Index: 4},
			{Name: "UpdatedAt", Exported: true, Type: stringType, Index: 5},
		},
	}
	graph.Types[warehouseOrder.ID] = warehouseOrder

	return graph
}

func validate(t *testing.T, yaml string) *diagnostic.Diagnostics {
	t.Helper()

	mf, err := Parse([]byte(yaml))
	require.NoError(t, err)

	return Validate(mf, buildTestTypeGraph())
}

func codes(diags []diagnostic.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}

	return out
}

func TestValidate_ValidProfile(t *testing.T) {
	result := validate(t, `
enums:
  - type: store.OrderStatus
    members:
      - name: StatusPending
        value: PENDING
        values: [{value: 1}]
      - name: StatusPaid
        value: PAID
        values: [{value: 2}]
mappings:
  - source: store.Order
    target: warehouse.Order
    121:
      ID: OrderNumber
      Customer.Email: Email
    fields:
      - target: Currency
        default: USD
      - target: Note
        expr: 'src.Note + "!"'
    ignore: [UpdatedAt]
`)

	assert.True(t, result.IsValid(), "expected valid profile, got errors: %v", result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_TypesNotFound(t *testing.T) {
	result := validate(t, `
mappings:
  - source: store.Missing
    target: warehouse.Order
  - source: store.Order
    target: warehouse.Missing
`)

	assert.Equal(t, []string{"source_type_not_found", "target_type_not_found"}, codes(result.Errors))
}

func TestValidate_UnknownMembers(t *testing.T) {
	result := validate(t, `
mappings:
  - source: store.Order
    target: warehouse.Order
    121:
      TotalCent: TotalAmount
    fields:
      - target: Curency
        default: USD
      - target: Email
        source: Customer.Mail
`)

	require.Len(t, result.Errors, 3)

	byPath := map[string]diagnostic.Diagnostic{}
	for _, d := range result.Errors {
		byPath[d.FieldPath] = d
	}

	assert.Contains(t, byPath["TotalCent"].Suggestions, "TotalCents")
	assert.Equal(t, "invalid_target_path", byPath["Curency"].Code)
	assert.Contains(t, byPath["Curency"].Suggestions, "Currency")
	assert.Contains(t, byPath["Customer.Mail"].Suggestions, "Email")
}

func TestValidate_FieldSources(t *testing.T) {
	result := validate(t, `
mappings:
  - source: store.Order
    target: warehouse.Order
    fields:
      - target: Currency
      - target: Note
        source: Note
        expr: src.Note
      - target: Email
        expr: 'src.Note +'
      - source: Note
      - target: Note.Body
        source: Note
`)

	assert.ElementsMatch(t,
		[]string{"missing_source", "conflicting_source", "invalid_expr", "missing_target", "invalid_target_path"},
		codes(result.Errors))
}

func TestValidate_Priorities(t *testing.T) {
	result := validate(t, `
mappings:
  - source: store.Order
    target: warehouse.Order
    121:
      Note: Note
      TotalCents: TotalCents
    fields:
      - target: Note
        default: x
    ignore: [UpdatedAt, UpdatedAt]
`)

	assert.ElementsMatch(t, []string{"invalid_target_path", "duplicate_target"}, codes(result.Errors))
	assert.Equal(t, []string{"target_overridden"}, codes(result.Warnings))
}

func TestValidate_Enums(t *testing.T) {
	result := validate(t, `
enums:
  - type: store.OrderStatus
    members:
      - name: StatusPending
        value: PENDING
        values: [{config: partner, value: X}]
      - name: StatusPaid
        value: PAYED
        values: [{config: partner, value: X}]
      - name: StatusPaidd
        value: PAID
  - type: store.Missing
    members: []
  - type: store.OrderStatus
    members: []
`)

	assert.ElementsMatch(t,
		[]string{"enum_value_mismatch", "unknown_enum_member", "enum_type_not_found", "duplicate_enum"},
		codes(result.Errors))
	assert.ElementsMatch(t, []string{"partial_enum_mapping", "ambiguous_enum_value"}, codes(result.Warnings))

	for _, d := range result.Errors {
		if d.Code == "unknown_enum_member" {
			assert.Contains(t, d.Suggestions, "StatusPaid")
		}
	}
}

func TestValidate_Nil(t *testing.T) {
	assert.False(t, Validate(nil, buildTestTypeGraph()).IsValid())
	assert.False(t, Validate(&MappingFile{Version: "1"}, nil).IsValid())
	assert.Equal(t, []string{"unsupported_version"}, codes(Validate(&MappingFile{Version: "2"}, buildTestTypeGraph()).Errors))
}
