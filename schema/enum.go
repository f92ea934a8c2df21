package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrNotEnumType     = errors.New("enum type must be a named integer or string type")
	ErrEnumMemberValue = errors.New("enum member value does not fit the enum type")
	ErrDuplicateMember = errors.New("duplicate enum member")
)

// MapValue declares what an enum member maps to under a configuration.
// The empty Config applies when no named configuration matches.
type MapValue struct {
	Config    string
	Value     any
	IsDefault bool
}

// EnumMember is one member of a registered enum.
type EnumMember struct {
	Name  string
	Value any
	Maps  []MapValue
}

// Member declares an enum member with its value and mappings.
func Member(name string, value any, maps ...MapValue) EnumMember {
	return EnumMember{Name: name, Value: value, Maps: maps}
}

// MapTo declares a mapping of a member under config.
func MapTo(config string, value any) MapValue {
	return MapValue{Config: config, Value: value}
}

// MapDefault declares the member as the default target for value under config.
func MapDefault(config string, value any) MapValue {
	return MapValue{Config: config, Value: value, IsDefault: true}
}

// Declarations returns the member's mappings for config.
func (m EnumMember) Declarations(config string) []MapValue {
	var out []MapValue
	for _, mv := range m.Maps {
		if mv.Config == config {
			out = append(out, mv)
		}
	}

	return out
}

// EnumInfo is the side-table of one enum type. Member values are of type Type.
type EnumInfo struct {
	Type    reflect.Type
	Members []EnumMember
}

// ByName finds a member by name, ignoring case.
func (e *EnumInfo) ByName(name string) (EnumMember, bool) {
	name = strings.TrimSpace(name)
	for _, m := range e.Members {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}

	return EnumMember{}, false
}

// ByValue finds the member holding v.
func (e *EnumInfo) ByValue(v reflect.Value) (EnumMember, bool) {
	if !v.IsValid() {
		return EnumMember{}, false
	}

	if v.Type() != e.Type {
		if !v.Type().ConvertibleTo(e.Type) {
			return EnumMember{}, false
		}

		v = v.Convert(e.Type)
	}

	x := v.Interface()
	for _, m := range e.Members {
		if m.Value == x {
			return m, true
		}
	}

	return EnumMember{}, false
}

// IsEnumKind reports whether values of t can be enum members.
func IsEnumKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String:
		return true
	}

	return false
}

// RegisterEnum records the members of enum type t, replacing a previous registration.
func (s *Schema) RegisterEnum(t reflect.Type, members ...EnumMember) error {
	if t == nil {
		return ErrNilType
	}

	if t.PkgPath() == "" || !IsEnumKind(t) {
		return fmt.Errorf("%w: %v", ErrNotEnumType, t)
	}

	info := &EnumInfo{Type: t, Members: make([]EnumMember, 0, len(members))}
	names := map[string]struct{}{}

	for _, m := range members {
		key := strings.ToLower(m.Name)
		if _, ok := names[key]; ok || m.Name == "" {
			return fmt.Errorf("%w: %v.%q", ErrDuplicateMember, t, m.Name)
		}
		names[key] = struct{}{}

		v, err := enumValue(t, m.Value)
		if err != nil {
			return fmt.Errorf("%v.%s: %w", t, m.Name, err)
		}

		m.Value = v.Interface()
		m.Maps = append([]MapValue(nil), m.Maps...)
		info.Members = append(info.Members, m)
	}

	s.enums.Store(t, info)
	s.touch()

	return nil
}

// Enum registers the members of enum type T on s.
func Enum[T any](s *Schema, members ...EnumMember) error {
	return s.RegisterEnum(reflect.TypeFor[T](), members...)
}

// Enum returns the side-table of t found in the schema chain.
func (s *Schema) Enum(t reflect.Type) (*EnumInfo, bool) {
	for _, c := range s.chain() {
		if v, ok := c.enums.Load(t); ok {
			return v.(*EnumInfo), true
		}
	}

	return nil, false
}

// EnumMembers returns the registered members of t, nil if t is not registered.
func (s *Schema) EnumMembers(t reflect.Type) []EnumMember {
	info, ok := s.Enum(t)
	if !ok {
		return nil
	}

	return append([]EnumMember(nil), info.Members...)
}

func enumValue(t reflect.Type, value any) (reflect.Value, error) {
	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return reflect.Value{}, ErrEnumMemberValue
	}

	if v.Type() == t {
		return v, nil
	}

	textual := v.Kind() == reflect.String
	if textual != (t.Kind() == reflect.String) || !IsEnumKind(v.Type()) {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrEnumMemberValue, v.Type())
	}

	return v.Convert(t), nil
}
