// Package convert synthesizes, caches and runs scalar conversion routines.
//
// A routine for a (from, to) pair is produced by the first matching step of a
// fixed strategy chain:
//
//  1. identity, and boxing into an interface the source implements
//  2. converters registered on the schema, its bases or the default schema
//  3. declarative enum value mappings
//  4. built-in numeric, boolean and time conversions, and conversions between
//     types with identical underlying types
//  5. construction of a single-field struct
//  6. unwrapping of a Value field or method
//  7. sql.Scanner on the destination
//  8. encoding.TextUnmarshaler on the destination for text sources
//  9. encoding.TextMarshaler or fmt.Stringer on the source for text destinations
//  10. enum members by name or value
//  11. pointer and interface unwrapping, retrying the steps above
//  12. the late-bound fallback: textual built-ins, spf13/cast and mapstructure
//
// Routines are built once per pair and schema and then reused.
package convert

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"caster/schema"
)

// Routine returns the cached routine converting from into to, synthesizing it on first use.
// A nil schema means schema.Default().
func Routine(s *schema.Schema, from, to reflect.Type) (*schema.Routine, error) {
	if from == nil || to == nil {
		return nil, ErrNilType
	}

	if s == nil {
		s = schema.Default()
	}

	p := schema.PairOf(from, to)
	if r, ok := lookup(s, p); ok {
		return r, nil
	}

	return s.Routines().LoadOrBuild(p, func() (*schema.Routine, error) {
		if r, ok := lookup(s, p); ok {
			return r, nil
		}

		sy := newSynth(s)
		sy.building[p] = true

		r, err := sy.build(p)
		if err != nil {
			return nil, err
		}

		return sy.share(r), nil
	})
}

func lookup(s *schema.Schema, p schema.Pair) (*schema.Routine, bool) {
	if r, ok := s.Routines().Load(p); ok {
		return r, true
	}

	if s.Plain() {
		return schema.Global().Load(p)
	}

	return nil, false
}

// share publishes routines of plain schemas that depend on no registration and returns the canonical one.
func (sy *synth) share(r *schema.Routine) *schema.Routine {
	if sy.s.Plain() && !r.SchemaSpecific {
		return schema.Global().LoadOrStoreAt(r, sy.globalStamp)
	}

	return r
}

// Value converts v into type to. The invalid value converts to the default value of to.
func Value(s *schema.Schema, v reflect.Value, to reflect.Type) (reflect.Value, error) {
	if s == nil {
		s = schema.Default()
	}

	if !v.IsValid() {
		def, _ := s.DefaultValue(to)
		return def, nil
	}

	r, err := Routine(s, v.Type(), to)
	if err != nil {
		return reflect.Value{}, err
	}

	return r.Call(v)
}

// To converts v into T using the default schema.
func To[T any](v any) (T, error) {
	return ToWith[T](nil, v)
}

// ToWith converts v into T using schema s.
func ToWith[T any](s *schema.Schema, v any) (T, error) {
	var out T

	res, err := Value(s, reflect.ValueOf(v), reflect.TypeFor[T]())
	if err != nil {
		return out, err
	}

	reflect.ValueOf(&out).Elem().Set(res)

	return out, nil
}

// Func returns a typed function running the routine for (F, T).
func Func[F, T any](s *schema.Schema) (func(F) (T, error), error) {
	r, err := Routine(s, reflect.TypeFor[F](), reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	return func(v F) (T, error) {
		var out T

		res, err := r.Call(reflect.ValueOf(&v).Elem())
		if err != nil {
			return out, err
		}

		reflect.ValueOf(&out).Elem().Set(res)

		return out, nil
	}, nil
}

// MustFunc is like Func but panics on build errors.
func MustFunc[F, T any](s *schema.Schema) func(F) (T, error) {
	fn, err := Func[F, T](s)
	if err != nil {
		panic(fmt.Sprintf("convert %v -> %v: %v", reflect.TypeFor[F](), reflect.TypeFor[T](), err))
	}

	return fn
}

func logBuilt(s *schema.Schema, r *schema.Routine) {
	s.Logger().Debug("routine synthesized",
		zap.String("schema", s.Name()),
		zap.Stringer("from", r.From),
		zap.Stringer("to", r.To),
		zap.String("strategy", r.Strategy),
		zap.Bool("schema_specific", r.SchemaSpecific),
	)
}
