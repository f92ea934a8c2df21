package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProfile = `
version: "1"
configuration: partner
enums:
  - type: store.OrderStatus
    members:
      - name: StatusPending
        value: PENDING
        values:
          - {config: partner, value: N}
      - name: StatusPaid
        value: PAID
        values:
          - {config: partner, value: P, default: true}
          - {value: 2}
mappings:
  - source: store.Order
    target: warehouse.Order
    121:
      TotalCents: TotalAmount
    fields:
      - target: Currency
        default: USD
      - target: Email
        source: Customer.Email
      - target: Note
        expr: 'src.Note + "!"'
    ignore: UpdatedAt
`

func TestParse(t *testing.T) {
	mf, err := Parse([]byte(sampleProfile))
	require.NoError(t, err)
	require.NotNil(t, mf)

	assert.Equal(t, "1", mf.Version)
	assert.Equal(t, "partner", mf.Configuration)

	require.Len(t, mf.Enums, 1)
	enum := mf.Enums[0]
	assert.Equal(t, "store.OrderStatus", enum.Type)
	require.Len(t, enum.Members, 2)
	assert.Equal(t, "PAID", enum.Members[1].Value)
	assert.Equal(t, []ValueDef{{Config: "partner", Value: "P", Default: true}, {Value: 2}}, enum.Members[1].Values)
	assert.Equal(t, []string{"partner", ""}, enum.Configs())

	require.Len(t, mf.TypeMappings, 1)
	tm := mf.TypeMappings[0]
	assert.Equal(t, "store.Order->warehouse.Order", tm.String())
	assert.Equal(t, map[string]string{"TotalCents": "TotalAmount"}, tm.OneToOne)
	assert.Equal(t, StringArray{"UpdatedAt"}, tm.Ignore)

	require.Len(t, tm.Fields, 3)
	require.NotNil(t, tm.Fields[0].Default)
	assert.Equal(t, "USD", *tm.Fields[0].Default)
	assert.Equal(t, FieldKindDefault, tm.Fields[0].Kind())
	assert.Equal(t, FieldKindSource, tm.Fields[1].Kind())
	assert.Equal(t, FieldKindExpr, tm.Fields[2].Kind())
}

func TestParse_DefaultVersion(t *testing.T) {
	mf, err := Parse([]byte("mappings: []\n"))
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, mf.Version)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("mappings: {bad"))
	require.Error(t, err)

	_, err = Parse([]byte("mappings:\n  - ignore: {a: b}\n"))
	require.Error(t, err)
}

func TestFieldMapping_Kind(t *testing.T) {
	def := "x"

	tests := []struct {
		fm   FieldMapping
		want FieldKind
	}{
		{FieldMapping{Target: "A"}, FieldKindNone},
		{FieldMapping{Target: "A", Source: "B"}, FieldKindSource},
		{FieldMapping{Target: "A", Default: &def}, FieldKindDefault},
		{FieldMapping{Target: "A", Expr: "1"}, FieldKindExpr},
		{FieldMapping{Target: "A", Source: "B", Expr: "1"}, FieldKindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fm.Kind())
		})
	}
}

func TestResolve_Priority(t *testing.T) {
	def := "d"
	tm := TypeMapping{
		OneToOne: map[string]string{"Src": "A"},
		Fields: []FieldMapping{
			{Target: "A", Default: &def},
			{Target: "B", Source: "Other"},
		},
		Ignore: StringArray{"B", "C"},
	}

	got := tm.Resolve()
	require.Len(t, got, 3)

	assert.Equal(t, PriorityOneToOne, got["A"].Priority)
	assert.Equal(t, "Src", got["A"].Field.Source)
	assert.Equal(t, PriorityFields, got["B"].Priority)
	assert.Equal(t, "Other", got["B"].Field.Source)
	assert.Equal(t, PriorityIgnore, got["C"].Priority)
}

func TestMarshalRoundTrip(t *testing.T) {
	mf, err := Parse([]byte(sampleProfile))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, WriteFile(mf, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "store.OrderStatus")
	assert.Contains(t, string(data), "ignore: UpdatedAt")

	back, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, mf, back)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParsePath(t *testing.T) {
	fp, err := ParsePath("Customer.Email")
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer", "Email"}, fp.Segments)
	assert.Equal(t, "Customer", fp.Root())
	assert.False(t, fp.IsSimple())
	assert.Equal(t, "Customer.Email", fp.String())

	single, err := ParsePath("Name")
	require.NoError(t, err)
	assert.True(t, single.IsSimple())
	assert.False(t, single.Equals(fp))

	for _, bad := range []string{"", "A..B", "1A", "A.b-c"} {
		_, err := ParsePath(bad)
		assert.Error(t, err, bad)
	}
}
