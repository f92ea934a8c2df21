// Package schema holds the configuration a conversion is synthesized against:
// scalar type classification, default values, user converters, enum value
// side-tables and the cache of synthesized routines.
//
// A Schema is safe for concurrent use. Registrations are append-only and
// invalidate the routines cached by the schema and by every schema based on it.
package schema

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"caster/options"
)

// Schema is a named configuration with optional fallback bases.
type Schema struct {
	name       string
	bases      []*Schema
	logger     *zap.Logger
	categories options.CategoryEnum

	generation atomic.Uint64

	scalars    sync.Map // reflect.Type -> bool
	computed   sync.Map // reflect.Type -> stamped[bool]
	defaults   sync.Map // reflect.Type -> reflect.Value
	converters sync.Map // Pair -> *Routine
	enums      sync.Map // reflect.Type -> *EnumInfo

	routines *Cache
}

// Option configures a Schema.
type Option func(*Schema)

// WithBase appends fallback schemas consulted, in order, after the schema itself.
func WithBase(bases ...*Schema) Option {
	return func(s *Schema) {
		for _, b := range bases {
			if b != nil && b != s {
				s.bases = append(s.bases, b)
			}
		}
	}
}

// WithLogger sets the logger synthesis reports to. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Schema) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCategories restricts the built-in scalar conversions the schema allows.
func WithCategories(categories options.CategoryEnum) Option {
	return func(s *Schema) {
		s.categories = categories
	}
}

var (
	defaultOnce   sync.Once
	defaultSchema *Schema
)

// Default is the process-wide schema. Every other schema falls back to it last,
// so converters registered here apply everywhere.
func Default() *Schema {
	defaultOnce.Do(func() {
		defaultSchema = New("")
	})

	return defaultSchema
}

// New creates a schema for the named configuration.
func New(name string, opts ...Option) *Schema {
	s := &Schema{
		name:       name,
		logger:     zap.NewNop(),
		categories: options.CategoryAll,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.routines = newCache(s.Stamp)

	return s
}

func (s *Schema) Name() string                     { return s.name }
func (s *Schema) Logger() *zap.Logger              { return s.logger }
func (s *Schema) Categories() options.CategoryEnum { return s.categories }

// Routines is the cache of routines synthesized against this schema.
func (s *Schema) Routines() *Cache { return s.routines }

// Configurations lists the configuration names enum mappings are looked up by:
// the schema's own name, the names of its bases in order and finally the empty
// "no configuration" name. Duplicates are dropped.
func (s *Schema) Configurations() []string {
	seen := map[string]struct{}{}
	var out []string

	for _, c := range s.lineage() {
		if c.name == "" {
			continue
		}

		if _, ok := seen[c.name]; !ok {
			seen[c.name] = struct{}{}
			out = append(out, c.name)
		}
	}

	return append(out, "")
}

// lineage is the schema followed by its bases, depth first, without Default.
func (s *Schema) lineage() []*Schema {
	var (
		out  []*Schema
		seen = map[*Schema]struct{}{}
		walk func(*Schema)
	)

	walk = func(c *Schema) {
		if _, ok := seen[c]; ok {
			return
		}

		seen[c] = struct{}{}
		out = append(out, c)

		for _, b := range c.bases {
			walk(b)
		}
	}
	walk(s)

	return out
}

// chain is the lookup order of registrations: lineage, then Default.
func (s *Schema) chain() []*Schema {
	out := s.lineage()

	d := Default()
	for _, c := range out {
		if c == d {
			return out
		}
	}

	return append(out, d)
}

// Stamp changes whenever a registration affecting this schema happens.
func (s *Schema) Stamp() uint64 {
	var sum uint64
	for _, c := range s.chain() {
		sum += c.generation.Load()
	}

	return sum
}

// Plain reports whether the schema and its bases carry no registrations and allow
// every built-in conversion. Routines synthesized for plain schemas are interchangeable.
func (s *Schema) Plain() bool {
	for _, c := range s.lineage() {
		if c.categories != options.CategoryAll {
			return false
		}

		if c != Default() && c.generation.Load() != 0 {
			return false
		}
	}

	return true
}

func (s *Schema) touch() {
	s.generation.Add(1)
	s.routines.Clear()

	if s == Default() {
		global.Clear()
	}
}
