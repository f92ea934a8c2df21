// Package mapper builds routines mapping whole object graphs between two types.
//
// A build walks both type graphs once, pairs destination members with source members by
// logical name and delegates scalar leaves to package convert. The result is compiled to
// closures and reused for every call.
//
// Two flavors are built per spec. The pure flavor returns a fresh graph and by default
// neither tracks references nor deep-copies identical types. The preserving flavor updates
// an existing destination and keeps shared and cyclic references intact. Cyclic type graphs
// always end up with tracking: a build that keeps re-entering the same type pair restarts
// with tracking forced on.
package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"caster/internal/diagnostic"
	"caster/node"
)

// ErrNilDestination is returned by in-place mapping into a nil destination.
var ErrNilDestination = errors.New("destination must not be nil")

// References is the identity map shared and cyclic references are resolved through.
type References = node.References

// NewReferences creates an empty identity map for MapWith.
func NewReferences() *References { return node.NewReferences() }

// Built holds both compiled flavors of one spec.
type Built struct {
	Pure       *Flavor
	Preserving *Flavor
}

// Flavor is one compiled routine together with the IR it was compiled from.
type Flavor struct {
	Root      *node.Node
	Subs      []*node.Sub
	Tracking  bool
	DeepCopy  bool
	Restarted bool

	Diagnostics diagnostic.Diagnostics

	fn node.Func
}

// Build validates the spec and builds both flavors. Errors are returned as they occur and
// nothing is cached, so a fixed registration is picked up by the next call.
func Build(spec *Spec) (*Built, error) {
	if spec.From == nil || spec.To == nil {
		return nil, fmt.Errorf("mapper %v: end types must not be nil", spec)
	}

	if err := checkMembers(spec); err != nil {
		return nil, err
	}

	pure, err := buildFlavor(spec, "pure", spec.TrackReferences.Or(false), spec.DeepCopy.Or(false), false)
	if err != nil {
		return nil, fmt.Errorf("mapper %v: %w", spec, err)
	}

	preserving, err := buildFlavor(spec, "preserving", spec.TrackReferences.Or(true), spec.DeepCopy.Or(true), true)
	if err != nil {
		return nil, fmt.Errorf("mapper %v: %w", spec, err)
	}

	return &Built{Pure: pure, Preserving: preserving}, nil
}

func checkMembers(spec *Spec) error {
	if len(spec.Members) == 0 {
		return nil
	}

	to := structOf(spec.To)
	if to.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %v is not a struct", ErrUnknownMember, spec.To)
	}

	known := make(map[string]bool)
	for _, f := range node.Fields(to, spec.ToNames[to], nil) {
		known[f.Name] = true
	}

	for name := range spec.Members {
		if !known[name] {
			return fmt.Errorf("%w: %v.%s", ErrUnknownMember, to, name)
		}
	}

	return nil
}

// Run maps src into the settable dst. A tracking flavor uses refs, or a fresh
// identity map when refs is nil; other flavors ignore it.
func (f *Flavor) Run(src, dst reflect.Value, refs *References) error {
	env := &node.Env{}
	if f.Tracking {
		if refs == nil {
			refs = node.NewReferences()
		}

		env.Refs = refs
	}

	return f.fn(src, dst, env)
}

// Dump renders the flavor IR: the root first, then every sub-routine.
func (f *Flavor) Dump() string {
	var sb strings.Builder

	sb.WriteString(f.Root.Dump())

	for _, s := range f.Subs {
		sb.WriteString("\n")
		sb.WriteString(s.String())
		sb.WriteString(":\n")
		sb.WriteString(strings.Join(indent(s.Root.Dump()), "\n"))
	}

	return sb.String()
}

func indent(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = "\t" + l
	}

	return lines
}

// Mapper maps F values into T values. It builds on first use; a failed build is retried
// by the next call.
type Mapper[F, T any] struct {
	spec *Spec

	mu    sync.Mutex
	built *Built
}

// New creates a mapper from F into T.
func New[F, T any](opts ...Option) *Mapper[F, T] {
	return &Mapper[F, T]{spec: NewSpec(reflect.TypeFor[F](), reflect.TypeFor[T](), opts...)}
}

// Spec returns the mapper configuration.
func (m *Mapper[F, T]) Spec() *Spec { return m.spec }

// Routines builds the mapper if needed and returns both flavors.
func (m *Mapper[F, T]) Routines() (*Built, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.built != nil {
		return m.built, nil
	}

	b, err := Build(m.spec)
	if err != nil {
		return nil, err
	}

	m.built = b

	return b, nil
}

// Diagnostics reports destination members left unmapped by the preserving flavor.
func (m *Mapper[F, T]) Diagnostics() (diagnostic.Diagnostics, error) {
	b, err := m.Routines()
	if err != nil {
		return diagnostic.Diagnostics{}, err
	}

	return b.Preserving.Diagnostics, nil
}

// Map returns a new T built from src with the pure flavor.
func (m *Mapper[F, T]) Map(src F) (T, error) {
	var out T

	b, err := m.Routines()
	if err != nil {
		return out, err
	}

	err = b.Pure.Run(reflect.ValueOf(&src).Elem(), reflect.ValueOf(&out).Elem(), nil)

	return out, err
}

// MapInto updates *dst from src with the preserving flavor. Members without a source keep
// their values, and a non-nil root pointer is populated in place.
func (m *Mapper[F, T]) MapInto(src F, dst *T) error {
	return m.MapWith(src, dst, nil)
}

// MapWith is MapInto sharing the identity map refs with other calls.
func (m *Mapper[F, T]) MapWith(src F, dst *T, refs *References) error {
	if dst == nil {
		return ErrNilDestination
	}

	b, err := m.Routines()
	if err != nil {
		return err
	}

	return b.Preserving.Run(reflect.ValueOf(&src).Elem(), reflect.ValueOf(dst).Elem(), refs)
}
