package node

import (
	"reflect"
	"strconv"
	"strings"
)

func typeStr(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	// fully qualified named types, or builtin string for basics
	switch t.Kind() {
	case reflect.Ptr:
		return "*" + typeStr(t.Elem())
	case reflect.Slice:
		return "[]" + typeStr(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + typeStr(t.Elem())
	case reflect.Map:
		return "map[" + typeStr(t.Key()) + "]" + typeStr(t.Elem())
	default:
		return t.String()
	}
}

func indentAll(lines []string, tabs int) []string {
	if len(lines) == 0 {
		return lines
	}
	prefix := strings.Repeat("\t", tabs)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l == "" {
			out = append(out, l)
		} else {
			out = append(out, prefix+l)
		}
	}
	return out
}

func isError(t reflect.Type) bool {
	if t == nil {
		return false
	}

	terr := reflect.TypeOf((*error)(nil)).Elem()

	return t.Implements(terr)
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return true
	}

	return false
}

// IsNil reports whether v is invalid or a nil value of a nilable kind.
func IsNil(v reflect.Value) bool {
	return !v.IsValid() || isNilable(v.Kind()) && v.IsNil()
}

func setDefault(dst, def reflect.Value) {
	if def.IsValid() {
		dst.Set(def)
		return
	}

	dst.SetZero()
}
