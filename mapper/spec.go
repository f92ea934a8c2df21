package mapper

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"caster/options"
	"caster/schema"
)

// Spec is the configuration of one mapper. It must not change once a build started.
type Spec struct {
	From, To reflect.Type

	Schema *schema.Schema
	Logger *zap.Logger

	// Filter selects the destination members that are populated; nil selects all.
	Filter func(reflect.StructField) bool

	// FromNames and ToNames rename members, per struct type, to the logical names
	// source and destination members are paired by. "-" excludes a member.
	FromNames map[reflect.Type]map[string]string
	ToNames   map[reflect.Type]map[string]string

	// Members overrides destination members of the end types.
	Members map[string]MemberFunc

	TrackReferences options.Tristate
	DeepCopy        options.Tristate

	RestartThreshold int
}

// MemberFunc computes one destination member from the whole source struct.
type MemberFunc struct {
	Fn   reflect.Value
	Name string
}

// Option configures a Spec.
type Option func(*Spec)

// NewSpec creates the spec for mapping from into to.
func NewSpec(from, to reflect.Type, opts ...Option) *Spec {
	s := &Spec{
		From:             from,
		To:               to,
		FromNames:        map[reflect.Type]map[string]string{},
		ToNames:          map[reflect.Type]map[string]string{},
		Members:          map[string]MemberFunc{},
		RestartThreshold: options.DefaultRestartThreshold,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.Schema == nil {
		s.Schema = schema.Default()
	}

	if s.Logger == nil {
		s.Logger = s.Schema.Logger()
	}

	return s
}

// WithSchema sets the schema scalar leaves are converted with.
func WithSchema(s *schema.Schema) Option {
	return func(spec *Spec) { spec.Schema = s }
}

// WithLogger sets the logger builds report to. The schema's logger is used by default.
func WithLogger(logger *zap.Logger) Option {
	return func(spec *Spec) { spec.Logger = logger }
}

// WithFilter populates only the destination members fn accepts.
func WithFilter(fn func(reflect.StructField) bool) Option {
	return func(spec *Spec) {
		prev := spec.Filter
		if prev == nil {
			spec.Filter = fn
			return
		}

		spec.Filter = func(f reflect.StructField) bool { return prev(f) && fn(f) }
	}
}

// MapFromName gives member of source struct type t the logical name.
func MapFromName(t reflect.Type, member, logical string) Option {
	return func(spec *Spec) { rename(spec.FromNames, t, member, logical) }
}

// MapToName gives member of destination struct type t the logical name.
func MapToName(t reflect.Type, member, logical string) Option {
	return func(spec *Spec) { rename(spec.ToNames, t, member, logical) }
}

// FromNames renames members of the source end type.
func FromNames(names map[string]string) Option {
	return func(spec *Spec) {
		for member, logical := range names {
			rename(spec.FromNames, structOf(spec.From), member, logical)
		}
	}
}

// ToNames renames members of the destination end type.
func ToNames(names map[string]string) Option {
	return func(spec *Spec) {
		for member, logical := range names {
			rename(spec.ToNames, structOf(spec.To), member, logical)
		}
	}
}

// WithMember computes destination member name of the end type with fn.
// fn takes the source struct, or a pointer to it, and returns a value with an optional error.
// The result is converted to the member type when needed.
func WithMember(name string, fn any) Option {
	return func(spec *Spec) {
		spec.Members[name] = MemberFunc{Fn: reflect.ValueOf(fn), Name: name}
	}
}

// WithTrackReferences fixes whether shared and cyclic references are preserved.
func WithTrackReferences(on bool) Option {
	return func(spec *Spec) { spec.TrackReferences = options.Of(on) }
}

// WithDeepCopy fixes whether values of identical types are copied member by member.
func WithDeepCopy(on bool) Option {
	return func(spec *Spec) { spec.DeepCopy = options.Of(on) }
}

// WithRestartThreshold sets how many nested repeats of a type pair are tolerated before
// the build restarts with reference tracking.
func WithRestartThreshold(n int) Option {
	return func(spec *Spec) {
		if n > 0 {
			spec.RestartThreshold = n
		}
	}
}

func rename(names map[reflect.Type]map[string]string, t reflect.Type, member, logical string) {
	if t == nil {
		return
	}

	t = structOf(t)
	if names[t] == nil {
		names[t] = map[string]string{}
	}

	names[t][member] = logical
}

// structOf strips pointers.
func structOf(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t
}

func (s *Spec) String() string {
	return fmt.Sprintf("%v -> %v", s.From, s.To)
}
