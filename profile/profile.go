// Package profile applies declarative YAML profiles to schemas and mappers.
//
// A profile declares enum members with their value mappings per configuration, and per
// type pair the member renames, ignored members, literal defaults and expression overrides
// of a mapper. Profiles are validated against a Types registry before they are used.
package profile

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"

	"caster/internal/diagnostic"
	"caster/internal/mapping"
	"caster/mapper"
	"caster/node"
	"caster/schema"
)

// ErrInvalid is matched by every ValidationError.
var ErrInvalid = errors.New("invalid profile")

var errorType = reflect.TypeFor[error]()

// ValidationError reports the diagnostics of a profile that failed validation.
type ValidationError struct {
	Diagnostics *diagnostic.Diagnostics
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalid, e.Diagnostics.Summary())
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Profile is a validated profile bound to the types it was validated against.
type Profile struct {
	File *mapping.MappingFile

	types  *Types
	logger *zap.Logger
	diags  *diagnostic.Diagnostics

	mu       sync.Mutex
	programs map[string]*vm.Program
}

// Option configures a Profile.
type Option func(*Profile)

// WithLogger sets the logger warnings are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Profile) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Load parses and validates a profile. Validation errors are returned as *ValidationError.
func Load(data []byte, types *Types, opts ...Option) (*Profile, error) {
	mf, err := mapping.Parse(data)
	if err != nil {
		return nil, err
	}

	return bind(mf, types, opts)
}

// LoadFile reads and loads the profile at path.
func LoadFile(path string, types *Types, opts ...Option) (*Profile, error) {
	mf, err := mapping.LoadFile(path)
	if err != nil {
		return nil, err
	}

	p, err := bind(mf, types, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

func bind(mf *mapping.MappingFile, types *Types, opts []Option) (*Profile, error) {
	p := &Profile{
		File:     mf,
		types:    types,
		logger:   zap.NewNop(),
		programs: map[string]*vm.Program{},
	}

	for _, opt := range opts {
		opt(p)
	}

	p.diags = mapping.Validate(mf, types.Graph(mf))
	if p.diags.HasErrors() {
		return nil, &ValidationError{Diagnostics: p.diags}
	}

	for _, d := range p.diags.Warnings {
		p.logger.Warn(d.Message, zap.String("code", d.Code), zap.String("path", d.FieldPath))
	}

	return p, nil
}

// Diagnostics returns the warnings validation produced.
func (p *Profile) Diagnostics() *diagnostic.Diagnostics { return p.diags }

// Schema creates a schema named after the profile configuration and applies the profile to it.
func (p *Profile) Schema(opts ...schema.Option) (*schema.Schema, error) {
	s := schema.New(p.File.Configuration, append([]schema.Option{schema.WithLogger(p.logger)}, opts...)...)
	if err := p.Apply(s); err != nil {
		return nil, err
	}

	return s, nil
}

// Apply registers the declared enums on s.
func (p *Profile) Apply(s *schema.Schema) error {
	for _, def := range p.File.Enums {
		t, ok := p.types.Lookup(def.Type)
		if !ok {
			return fmt.Errorf("enum %s: %w", def.Type, ErrInvalid)
		}

		members := make([]schema.EnumMember, 0, len(def.Members))

		for _, m := range def.Members {
			maps := make([]schema.MapValue, 0, len(m.Values))

			for _, v := range m.Values {
				if v.Default {
					maps = append(maps, schema.MapDefault(v.Config, v.Value))
				} else {
					maps = append(maps, schema.MapTo(v.Config, v.Value))
				}
			}

			members = append(members, schema.Member(m.Name, m.Value, maps...))
		}

		if err := s.RegisterEnum(t, members...); err != nil {
			return err
		}

		p.logger.Debug("enum registered", zap.Stringer("type", t), zap.Int("members", len(members)))
	}

	return nil
}

// Options returns the mapper options the profile declares for mapping from into to.
// Renames and ignores of every declared pair are included, since nested members are
// mapped with them too. Defaults, expressions and nested source paths only apply to the
// pair of from and to.
func (p *Profile) Options(from, to reflect.Type) ([]mapper.Option, error) {
	end := typePair{src: structOf(from), dst: structOf(to)}

	var opts []mapper.Option

	for i := range p.File.TypeMappings {
		tm := &p.File.TypeMappings[i]

		pair, ok := p.resolve(tm)
		if !ok {
			return nil, fmt.Errorf("%s: %w", tm, ErrInvalid)
		}

		rules := tm.Resolve()
		targets := make([]string, 0, len(rules))

		for target := range rules {
			targets = append(targets, target)
		}

		slices.Sort(targets)

		for _, target := range targets {
			opt, err := p.option(tm, pair, rules[target], pair == end)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", tm, target, err)
			}

			if opt != nil {
				opts = append(opts, opt)
			}
		}
	}

	return opts, nil
}

type typePair struct {
	src, dst reflect.Type
}

func (p *Profile) resolve(tm *mapping.TypeMapping) (typePair, bool) {
	src, ok := p.types.Lookup(tm.Source)
	if !ok {
		return typePair{}, false
	}

	dst, ok := p.types.Lookup(tm.Target)
	if !ok {
		return typePair{}, false
	}

	return typePair{src: structOf(src), dst: structOf(dst)}, true
}

// option turns one resolved rule into a mapper option. Rules needing a member function
// yield nil unless the pair is the mapper's own.
func (p *Profile) option(tm *mapping.TypeMapping, pair typePair, r mapping.Resolved, end bool) (mapper.Option, error) {
	src, dst, target := pair.src, pair.dst, r.Field.Target

	if r.Priority == mapping.PriorityIgnore {
		return mapper.MapToName(dst, target, "-"), nil
	}

	if r.Field.Kind() == mapping.FieldKindSource {
		if opt, ok := renameOption(src, dst, target, r.Field.Source); ok {
			return opt, nil
		}
	}

	if !end {
		p.logger.Debug("member rule skipped outside its mapper",
			zap.Stringer("pair", tm), zap.String("target", target))

		return nil, nil
	}

	switch r.Field.Kind() {
	case mapping.FieldKindSource:
		return pathOption(src, target, r.Field.Source)
	case mapping.FieldKindDefault:
		lit := reflect.ValueOf(*r.Field.Default)

		return mapper.WithMember(target, memberFunc(src, lit.Type(), func(reflect.Value) (reflect.Value, error) {
			return lit, nil
		})), nil
	case mapping.FieldKindExpr:
		program, err := p.program(tm, src, r.Field)
		if err != nil {
			return nil, err
		}

		return mapper.WithMember(target, memberFunc(src, reflect.TypeFor[any](), func(v reflect.Value) (reflect.Value, error) {
			out, err := expr.Run(program, map[string]any{"src": v.Interface()})
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.ValueOf(out), nil
		})), nil
	default:
		return nil, fmt.Errorf("%w: no source for %s", ErrInvalid, target)
	}
}

// program compiles an expression once per profile, type checked against *src.
func (p *Profile) program(tm *mapping.TypeMapping, src reflect.Type, fm mapping.FieldMapping) (*vm.Program, error) {
	key := tm.String() + "." + fm.Target

	p.mu.Lock()
	defer p.mu.Unlock()

	if program, ok := p.programs[key]; ok {
		return program, nil
	}

	program, err := expr.Compile(fm.Expr, expr.Env(map[string]any{"src": reflect.New(src).Interface()}))
	if err != nil {
		return nil, err
	}

	p.programs[key] = program

	return program, nil
}

// renameOption renames target to the logical name of a direct source member.
func renameOption(src, dst reflect.Type, target, path string) (mapper.Option, bool) {
	sf, ok := src.FieldByName(path)
	if !ok || len(sf.Index) != 1 {
		return nil, false
	}

	logical, ok := node.LogicalName(sf, nil)
	if !ok {
		return nil, false
	}

	return mapper.MapToName(dst, target, logical), true
}

// pathOption reads a nested source path, or a member excluded on the source side, with a
// member function. A nil pointer on the way yields the zero value.
func pathOption(src reflect.Type, target, path string) (mapper.Option, error) {
	fp, err := mapping.ParsePath(path)
	if err != nil {
		return nil, err
	}

	var (
		steps [][]int
		leaf  = src
	)

	for _, seg := range fp.Segments {
		sf, ok := structOf(leaf).FieldByName(seg)
		if !ok {
			return nil, fmt.Errorf("%w: %v has no member %s", ErrInvalid, structOf(leaf), seg)
		}

		steps = append(steps, sf.Index)
		leaf = sf.Type
	}

	return mapper.WithMember(target, memberFunc(src, leaf, func(v reflect.Value) (reflect.Value, error) {
		for _, idx := range steps {
			for v.Kind() == reflect.Ptr {
				if v.IsNil() {
					return reflect.Zero(leaf), nil
				}

				v = v.Elem()
			}

			v = v.FieldByIndex(idx)
		}

		return v, nil
	})), nil
}

// memberFunc makes a func(*src) (out, error) for mapper.WithMember.
func memberFunc(src, out reflect.Type, fn func(reflect.Value) (reflect.Value, error)) any {
	ft := reflect.FuncOf([]reflect.Type{reflect.PointerTo(src)}, []reflect.Type{out, errorType}, false)

	return reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		res := reflect.New(out).Elem()
		errV := reflect.Zero(errorType)

		v, err := fn(args[0])
		switch {
		case err != nil:
			errV = reflect.ValueOf(&err).Elem()
		case v.IsValid():
			res.Set(v)
		}

		return []reflect.Value{res, errV}
	}).Interface()
}

func structOf(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t
}
