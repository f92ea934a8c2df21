package schema

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"caster/node"
)

// Pair is a (from, to) type pair a routine converts between.
type Pair struct {
	From, To reflect.Type
}

func PairOf(from, to reflect.Type) Pair { return Pair{From: from, To: to} }

func (p Pair) String() string {
	return fmt.Sprintf("%v -> %v", p.From, p.To)
}

func (p Pair) key() string {
	return fmt.Sprintf("%p|%p", p.From, p.To)
}

// Func is the body of a routine.
type Func func(v reflect.Value) (reflect.Value, error)

// Routine is an immutable synthesized conversion between two types.
type Routine struct {
	From, To reflect.Type

	// SchemaSpecific routines depend on registrations and are never shared between schemas.
	SchemaSpecific bool
	// HandlesNil routines accept nil inputs; others short-circuit nil to the zero value of To.
	HandlesNil bool
	// Strategy names the step of the strategy chain that produced the routine.
	Strategy string

	fn Func
}

func NewRoutine(from, to reflect.Type, strategy string, fn Func) *Routine {
	return &Routine{From: from, To: to, Strategy: strategy, fn: fn}
}

// Call converts v, which must be of type From or convertible to it.
func (r *Routine) Call(v reflect.Value) (reflect.Value, error) {
	if !v.IsValid() {
		v = reflect.Zero(r.From)
	} else if v.Type() != r.From {
		if !v.Type().ConvertibleTo(r.From) {
			return reflect.Value{}, fmt.Errorf("routine %s called with %v", r.Pair(), v.Type())
		}

		v = v.Convert(r.From)
	}

	if !r.HandlesNil && node.IsNil(v) {
		return reflect.Zero(r.To), nil
	}

	return r.fn(v)
}

func (r *Routine) Pair() Pair { return Pair{From: r.From, To: r.To} }

func (r *Routine) String() string {
	return r.Pair().String() + " via " + r.Strategy
}

type stamped[T any] struct {
	value T
	stamp uint64
}

// Cache memoizes routines per type pair.
// Entries stored under an older stamp than the owner's current one are treated as missing.
type Cache struct {
	m     sync.Map // Pair -> stamped[*Routine]
	group singleflight.Group
	stamp func() uint64
}

func newCache(stamp func() uint64) *Cache {
	return &Cache{stamp: stamp}
}

var global = newCache(func() uint64 { return Default().Stamp() })

// Global is the schema-agnostic cache shared by schemas without registrations.
func Global() *Cache { return global }

func (c *Cache) current() uint64 {
	if c.stamp == nil {
		return 0
	}

	return c.stamp()
}

// Load returns the routine cached for the pair.
func (c *Cache) Load(p Pair) (*Routine, bool) {
	v, ok := c.m.Load(p)
	if !ok {
		return nil, false
	}

	e := v.(stamped[*Routine])
	if e.stamp != c.current() {
		return nil, false
	}

	return e.value, true
}

// Store caches r, replacing any previous routine for its pair.
func (c *Cache) Store(r *Routine) {
	c.storeAt(r, c.current())
}

func (c *Cache) storeAt(r *Routine, stamp uint64) {
	c.m.Store(r.Pair(), stamped[*Routine]{value: r, stamp: stamp})
}

// Stamp is the stamp entries are currently validated against.
func (c *Cache) Stamp() uint64 { return c.current() }

// LoadOrStore caches r unless a current routine for its pair exists, and returns the cached one.
func (c *Cache) LoadOrStore(r *Routine) *Routine {
	return c.LoadOrStoreAt(r, c.current())
}

// LoadOrStoreAt is LoadOrStore for a routine whose build started when the cache was at stamp.
// A routine built before a registration is returned but never served to later callers.
func (c *Cache) LoadOrStoreAt(r *Routine, stamp uint64) *Routine {
	if cached, ok := c.Load(r.Pair()); ok {
		return cached
	}

	c.storeAt(r, stamp)

	return r
}

// LoadOrBuild returns the cached routine for the pair or builds it.
// Concurrent callers for the same pair share one build. Failed builds are not cached.
// build must not call LoadOrBuild for the same pair on this cache.
func (c *Cache) LoadOrBuild(p Pair, build func() (*Routine, error)) (*Routine, error) {
	if r, ok := c.Load(p); ok {
		return r, nil
	}

	v, err, _ := c.group.Do(p.key(), func() (any, error) {
		if r, ok := c.Load(p); ok {
			return r, nil
		}

		// a registration during build makes the routine stale on arrival
		stamp := c.current()

		r, err := build()
		if err != nil {
			return nil, err
		}

		return c.LoadOrStoreAt(r, stamp), nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Routine), nil
}

// Clear drops every cached routine.
func (c *Cache) Clear() {
	c.m.Range(func(k, _ any) bool {
		c.m.Delete(k)
		return true
	})
}

// Len is the number of cached entries, stale ones included.
func (c *Cache) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}
