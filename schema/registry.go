package schema

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"caster/node"
	"caster/primitive"
)

var (
	ErrNilType          = errors.New("type must not be nil")
	ErrDefaultValueType = errors.New("default value is not assignable to the type")
)

var (
	bytesType         = reflect.TypeFor[[]byte]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// SetScalarType overrides whether t is converted as one atomic value.
func (s *Schema) SetScalarType(t reflect.Type, scalar bool) {
	if t == nil {
		return
	}

	s.scalars.Store(t, scalar)
	s.touch()
}

// ScalarRegistration returns an explicit classification of t found in the schema chain.
func (s *Schema) ScalarRegistration(t reflect.Type) (scalar, ok bool) {
	for _, c := range s.chain() {
		if v, found := c.scalars.Load(t); found {
			return v.(bool), true
		}
	}

	return false, false
}

// IsScalarType reports whether t is converted as one atomic value rather than member by member.
// Explicit registrations win; otherwise basic kinds, time types, []byte, registered enums,
// encoding.TextMarshaler implementations and pointers to any of these are scalar.
func (s *Schema) IsScalarType(t reflect.Type) bool {
	if t == nil {
		return false
	}

	if v, ok := s.ScalarRegistration(t); ok {
		return v
	}

	stamp := s.Stamp()
	if v, ok := s.computed.Load(t); ok {
		if e := v.(stamped[bool]); e.stamp == stamp {
			return e.value
		}
	}

	scalar := s.classify(t)
	s.computed.Store(t, stamped[bool]{value: scalar, stamp: stamp})

	return scalar
}

func (s *Schema) classify(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		return s.IsScalarType(t.Elem())
	}

	if primitive.KindOf(t) != 0 || t == bytesType {
		return true
	}

	switch t.Kind() {
	case reflect.Complex64, reflect.Complex128, reflect.Uintptr:
		return true
	}

	if _, ok := s.Enum(t); ok {
		return true
	}

	return t.Implements(textMarshalerType)
}

// SetDefaultValue registers the value used for t when a conversion has nothing to convert.
func (s *Schema) SetDefaultValue(t reflect.Type, value any) error {
	if t == nil {
		return ErrNilType
	}

	v := reflect.ValueOf(value)
	if !v.IsValid() {
		v = reflect.Zero(t)
	}

	if !v.Type().AssignableTo(t) {
		if !v.Type().ConvertibleTo(t) {
			return fmt.Errorf("%w: %v is not %v", ErrDefaultValueType, v.Type(), t)
		}

		v = v.Convert(t)
	}

	s.defaults.Store(t, v)
	s.touch()

	return nil
}

// DefaultValue returns the registered default of t, or its zero value.
// The second result reports whether the value came from a registration.
func (s *Schema) DefaultValue(t reflect.Type) (reflect.Value, bool) {
	for _, c := range s.chain() {
		if v, ok := c.defaults.Load(t); ok {
			return v.(reflect.Value), true
		}
	}

	return reflect.Zero(t), false
}

// SetConverter registers a user conversion function. Accepted shapes are
// func(S) D, func(S) (D, error), func(S) (D, bool) and func(S) (D, bool, error);
// a false bool result fails the conversion. On Default the registration is process-wide.
func (s *Schema) SetConverter(fn any) error {
	c, err := node.ParseCaster(fn)
	if err != nil {
		return err
	}

	r := NewRoutine(c.Src, c.Dst, "converter "+c.String(), c.Call)
	r.SchemaSpecific = true
	r.HandlesNil = true

	s.converters.Store(r.Pair(), r)
	s.touch()

	s.logger.Debug("converter registered",
		zap.String("schema", s.name),
		zap.Stringer("pair", r.Pair()),
	)

	return nil
}

// SetConverterFunc registers a typed conversion function.
func SetConverterFunc[S, D any](s *Schema, fn func(S) (D, error)) {
	if err := s.SetConverter(fn); err != nil {
		panic(err)
	}
}

// Converter returns the user converter registered for the exact pair in the schema chain.
func (s *Schema) Converter(from, to reflect.Type) (*Routine, bool) {
	p := PairOf(from, to)
	for _, c := range s.chain() {
		if v, ok := c.converters.Load(p); ok {
			return v.(*Routine), true
		}
	}

	return nil, false
}
