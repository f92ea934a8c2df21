package convert

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNilType = errors.New("conversion types must not be nil")
	// ErrUnknownMember is the cause of failed text to enum conversions.
	ErrUnknownMember = errors.New("no such enum member")
	// ErrNoLateBound is the cause when the fallback has no conversion for the destination kind.
	ErrNoLateBound = errors.New("no late-bound conversion")
	// ErrNotConvertible matches every *ConversionError.
	ErrNotConvertible = errors.New("value is not convertible")
	// ErrEnumMapping matches every *EnumError.
	ErrEnumMapping = errors.New("invalid enum mapping")
)

// ConversionError is returned when no strategy, the fallback included, converts a value.
type ConversionError struct {
	Value string // text form of the offending value
	Type  string // destination type name
	Cause error
}

func newConversionError(v reflect.Value, to reflect.Type, cause error) *ConversionError {
	text := "<nil>"
	if v.IsValid() && v.CanInterface() {
		text = fmt.Sprint(v.Interface())
	}

	return &ConversionError{Value: text, Type: to.String(), Cause: cause}
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert %q to %s", e.Value, e.Type)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *ConversionError) Unwrap() error { return e.Cause }

func (e *ConversionError) Is(target error) bool { return target == ErrNotConvertible }

//go:generate go tool stringer -type=EnumErrorKind -trimprefix=Enum -output=errors_string.go

// EnumErrorKind tells why an enum mapping could not be built.
type EnumErrorKind int

const (
	// EnumInconsistent means some members declare mappings for a configuration and Member does not.
	EnumInconsistent EnumErrorKind = iota + 1
	// EnumAmbiguous means Member and Other claim the same value.
	EnumAmbiguous
)

// EnumError is a build-time failure of the enum value mapping resolver.
type EnumError struct {
	Kind   EnumErrorKind
	Type   reflect.Type
	Config string
	Member string
	Other  string
}

func (e *EnumError) Error() string {
	config := e.Config
	if config == "" {
		config = "<none>"
	}

	switch e.Kind {
	case EnumAmbiguous:
		return fmt.Sprintf("enum %v: members %s and %s map to the same value in configuration %s",
			e.Type, e.Member, e.Other, config)
	default:
		return fmt.Sprintf("enum %v: member %s has no mapping in configuration %s", e.Type, e.Member, config)
	}
}

func (e *EnumError) Is(target error) bool { return target == ErrEnumMapping }
