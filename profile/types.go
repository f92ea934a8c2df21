package profile

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"caster/internal/analyze"
	"caster/internal/mapping"
	"caster/schema"
)

// ErrUnnamedType is returned when registering a type without a package qualified name.
var ErrUnnamedType = errors.New("type must be a named type declared in a package")

// Types resolves the type names a profile uses to Go types. Names are matched the way
// "castmap check" matches them: "store.Order", "example.com/store.Order" or "Order".
type Types struct {
	mu     sync.RWMutex
	byID   map[analyze.TypeID]reflect.Type
	consts map[reflect.Type][]analyze.Constant
}

// NewTypes creates an empty registry.
func NewTypes() *Types {
	return &Types{
		byID:   map[analyze.TypeID]reflect.Type{},
		consts: map[reflect.Type][]analyze.Constant{},
	}
}

// Register adds T to ts and returns ts. It panics if T is not a named type.
func Register[T any](ts *Types) *Types {
	if err := ts.Add(reflect.TypeFor[T]()); err != nil {
		panic(err)
	}

	return ts
}

// RegisterEnum adds enum type T together with its constants, which profile members are
// checked against. Only Name and Value of the members are used.
func RegisterEnum[T any](ts *Types, constants ...schema.EnumMember) error {
	t := reflect.TypeFor[T]()
	if err := ts.Add(t); err != nil {
		return err
	}

	if !schema.IsEnumKind(t) {
		return fmt.Errorf("%w: %v", schema.ErrNotEnumType, t)
	}

	out := make([]analyze.Constant, 0, len(constants))

	for _, c := range constants {
		v := reflect.ValueOf(c.Value)
		if !v.IsValid() || !v.Type().ConvertibleTo(t) || (v.Kind() == reflect.String) != (t.Kind() == reflect.String) {
			return fmt.Errorf("%v.%s: %w", t, c.Name, schema.ErrEnumMemberValue)
		}

		out = append(out, analyze.Constant{Name: c.Name, Value: basic(v.Convert(t))})
	}

	ts.mu.Lock()
	ts.consts[t] = out
	ts.mu.Unlock()

	return nil
}

// Add registers t, which must be a named type.
func (ts *Types) Add(t reflect.Type) error {
	if t == nil || t.Name() == "" || t.PkgPath() == "" {
		return fmt.Errorf("%w: %v", ErrUnnamedType, t)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.byID[idOf(t)] = t

	return nil
}

// Lookup resolves a profile type name.
func (ts *Types) Lookup(name string) (reflect.Type, bool) {
	info := mapping.ResolveTypeID(name, ts.Graph(nil))
	if info == nil {
		return nil, false
	}

	ts.mu.RLock()
	defer ts.mu.RUnlock()

	t, ok := ts.byID[info.ID]

	return t, ok
}

// Graph describes the registered types the way package analysis does, so profiles are
// validated the same way against loaded packages and against a running program.
// Enum types registered without constants take their constants from the members mf
// declares for them.
func (ts *Types) Graph(mf *mapping.MappingFile) *analyze.TypeGraph {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	g := &graphBuilder{graph: analyze.NewTypeGraph(), seen: map[reflect.Type]*analyze.TypeInfo{}}

	for id, t := range ts.byID {
		g.graph.Types[id] = g.info(t)

		if !schema.IsEnumKind(t) {
			continue
		}

		enum := &analyze.EnumInfo{ID: id, Basic: t.Kind().String()}
		if consts, ok := ts.consts[t]; ok {
			enum.Constants = consts
		} else {
			enum.Constants = declared(t, mf)
		}

		g.graph.Enums[id] = enum
	}

	return g.graph
}

// declared lists the members mf declares for enum type t.
func declared(t reflect.Type, mf *mapping.MappingFile) []analyze.Constant {
	if mf == nil {
		return nil
	}

	var out []analyze.Constant

	for _, def := range mf.Enums {
		if info := mapping.ResolveTypeID(def.Type, single(t)); info == nil {
			continue
		}

		for _, m := range def.Members {
			out = append(out, analyze.Constant{Name: m.Name, Value: m.Value})
		}
	}

	return out
}

func single(t reflect.Type) *analyze.TypeGraph {
	g := analyze.NewTypeGraph()
	g.Types[idOf(t)] = &analyze.TypeInfo{ID: idOf(t)}

	return g
}

type graphBuilder struct {
	graph *analyze.TypeGraph
	seen  map[reflect.Type]*analyze.TypeInfo
}

func (g *graphBuilder) info(t reflect.Type) *analyze.TypeInfo {
	if ti, ok := g.seen[t]; ok {
		return ti
	}

	ti := &analyze.TypeInfo{}
	if t.Name() != "" && t.PkgPath() != "" {
		ti.ID = idOf(t)
	}

	g.seen[t] = ti

	switch t.Kind() {
	case reflect.Ptr:
		ti.Kind = analyze.TypeKindPointer
		ti.ElemType = g.info(t.Elem())
	case reflect.Slice, reflect.Array:
		ti.Kind = analyze.TypeKindSlice
		ti.ElemType = g.info(t.Elem())
	case reflect.Map:
		ti.Kind = analyze.TypeKindMap
		ti.KeyType = g.info(t.Key())
		ti.ElemType = g.info(t.Elem())
	case reflect.Struct:
		ti.Kind = analyze.TypeKindStruct

		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}

			ti.Fields = append(ti.Fields, analyze.FieldInfo{
				Name:     sf.Name,
				Exported: true,
				Type:     g.info(sf.Type),
				Tag:      sf.Tag,
				Embedded: sf.Anonymous,
				Index:    i,
			})
		}
	default:
		ti.Kind = analyze.TypeKindBasic
		if ti.IsNamed() {
			ti.Kind = analyze.TypeKindAlias
			ti.Underlying = &analyze.TypeInfo{Kind: analyze.TypeKindBasic}
		}
	}

	return ti
}

func idOf(t reflect.Type) analyze.TypeID {
	return analyze.TypeID{PkgPath: t.PkgPath(), Name: t.Name()}
}

// basic returns the value of v as int64, uint64 or string.
func basic(v reflect.Value) any {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	default:
		return v.Int()
	}
}
