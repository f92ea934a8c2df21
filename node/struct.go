package node

import (
	"reflect"

	"caster/internal/match"
)

// TagName is the struct tag holding a field's logical name; "-" excludes the field.
const TagName = "cast"

// Field is a mappable struct field.
type Field struct {
	Name    string // Go field name
	Logical string // name used to pair source and destination fields
	Index   []int
	Type    reflect.Type
}

// Fields lists the exported fields of struct type t, promoted fields included,
// that can be reached without following an embedded pointer.
// Rename maps field names to logical names and takes precedence over tags.
// Fields rejected by the filter are left out.
func Fields(t reflect.Type, rename map[string]string, filter func(reflect.StructField) bool) []Field {
	var out []Field

	for _, sf := range reflect.VisibleFields(t) {
		if sf.Anonymous || !sf.IsExported() || hasPointerHop(t, sf.Index) {
			continue
		}

		if filter != nil && !filter(sf) {
			continue
		}

		logical, ok := LogicalName(sf, rename)
		if !ok {
			continue
		}

		out = append(out, Field{Name: sf.Name, Logical: logical, Index: sf.Index, Type: sf.Type})
	}

	return out
}

// LogicalName resolves the name a field is matched by. It reports false for ignored fields.
func LogicalName(sf reflect.StructField, rename map[string]string) (string, bool) {
	if name, ok := rename[sf.Name]; ok {
		return name, name != "-"
	}

	switch tag := sf.Tag.Get(TagName); tag {
	case "-":
		return "", false
	case "":
		return sf.Name, true
	default:
		return tag, true
	}
}

// MatchField finds the source field for a destination field: exact logical name first,
// then a unique match of normalized identifiers.
func MatchField(dst Field, src []Field) (Field, bool) {
	for _, f := range src {
		if f.Logical == dst.Logical {
			return f, true
		}
	}

	want := match.NormalizeIdent(dst.Logical)

	var (
		found Field
		count int
	)

	for _, f := range src {
		if match.NormalizeIdent(f.Logical) == want {
			found = f
			count++
		}
	}

	return found, count == 1
}

// Suggest ranks source field names by similarity to an unmatched destination field.
func Suggest(dst Field, src []Field, limit int) []string {
	names := make([]string, 0, len(src))
	for _, f := range src {
		names = append(names, f.Logical)
	}

	return match.Rank(dst.Logical, names, limit)
}

func hasPointerHop(t reflect.Type, index []int) bool {
	for _, i := range index[:len(index)-1] {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Ptr {
			return true
		}

		t = f.Type
	}

	return false
}
