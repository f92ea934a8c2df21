package schema_test

import (
	"errors"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caster/schema"
)

type status int

const (
	statusNew status = iota
	statusPaid
)

type label string

type money struct{ Cents int64 }

type token struct{ raw string }

func (t token) MarshalText() ([]byte, error) { return []byte(t.raw), nil }

func TestConfigurations(t *testing.T) {
	t.Parallel()

	base := schema.New("partner")
	other := schema.New("legacy", schema.WithBase(base))
	s := schema.New("api", schema.WithBase(other, base))

	assert.Equal(t, []string{"api", "legacy", "partner", ""}, s.Configurations())
	assert.Equal(t, []string{""}, schema.New("").Configurations())
	assert.Equal(t, "api", s.Name())
	assert.NotNil(t, s.Logger())
}

func TestIsScalarType(t *testing.T) {
	t.Parallel()

	s := schema.New("scalars")

	tests := []struct {
		typ  reflect.Type
		want bool
	}{
		{reflect.TypeFor[int](), true},
		{reflect.TypeFor[*string](), true},
		{reflect.TypeFor[time.Time](), true},
		{reflect.TypeFor[time.Duration](), true},
		{reflect.TypeFor[[]byte](), true},
		{reflect.TypeFor[status](), true},
		{reflect.TypeFor[token](), true},
		{reflect.TypeFor[money](), false},
		{reflect.TypeFor[[]int](), false},
		{reflect.TypeFor[map[string]int](), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, s.IsScalarType(tt.typ), tt.typ.String())
	}

	s.SetScalarType(reflect.TypeFor[money](), true)
	assert.True(t, s.IsScalarType(reflect.TypeFor[money]()))
	assert.True(t, s.IsScalarType(reflect.TypeFor[*money]()))

	derived := schema.New("derived", schema.WithBase(s))
	assert.True(t, derived.IsScalarType(reflect.TypeFor[money]()))

	derived.SetScalarType(reflect.TypeFor[money](), false)
	assert.False(t, derived.IsScalarType(reflect.TypeFor[money]()))
	assert.True(t, s.IsScalarType(reflect.TypeFor[money]()))
}

func TestDefaultValue(t *testing.T) {
	t.Parallel()

	s := schema.New("defaults")

	v, ok := s.DefaultValue(reflect.TypeFor[int]())
	assert.False(t, ok)
	assert.Equal(t, 0, v.Interface())

	require.NoError(t, s.SetDefaultValue(reflect.TypeFor[status](), 1))
	v, ok = s.DefaultValue(reflect.TypeFor[status]())
	assert.True(t, ok)
	assert.Equal(t, statusPaid, v.Interface())

	err := s.SetDefaultValue(reflect.TypeFor[int](), "x")
	assert.ErrorIs(t, err, schema.ErrDefaultValueType)
	assert.ErrorIs(t, s.SetDefaultValue(nil, 1), schema.ErrNilType)
}

func TestConverter(t *testing.T) {
	t.Parallel()

	base := schema.New("base")
	s := schema.New("child", schema.WithBase(base))

	schema.SetConverterFunc(base, func(m money) (string, error) {
		return strconv.FormatInt(m.Cents, 10) + "c", nil
	})

	r, ok := s.Converter(reflect.TypeFor[money](), reflect.TypeFor[string]())
	require.True(t, ok)
	assert.True(t, r.SchemaSpecific)

	out, err := r.Call(reflect.ValueOf(money{Cents: 150}))
	require.NoError(t, err)
	assert.Equal(t, "150c", out.Interface())

	_, ok = s.Converter(reflect.TypeFor[string](), reflect.TypeFor[money]())
	assert.False(t, ok)

	assert.Error(t, s.SetConverter(42))
}

func TestEnum(t *testing.T) {
	t.Parallel()

	s := schema.New("enums")

	require.NoError(t, schema.Enum[status](s,
		schema.Member("New", 0, schema.MapTo("partner", "N")),
		schema.Member("Paid", statusPaid, schema.MapDefault("partner", "P")),
	))

	info, ok := s.Enum(reflect.TypeFor[status]())
	require.True(t, ok)

	m, ok := info.ByName(" paid ")
	require.True(t, ok)
	assert.Equal(t, statusPaid, m.Value)
	assert.Equal(t, []schema.MapValue{{Config: "partner", Value: "P", IsDefault: true}}, m.Declarations("partner"))
	assert.Empty(t, m.Declarations("other"))

	m, ok = info.ByValue(reflect.ValueOf(0))
	require.True(t, ok)
	assert.Equal(t, "New", m.Name)

	assert.Len(t, s.EnumMembers(reflect.TypeFor[status]()), 2)
	assert.Nil(t, s.EnumMembers(reflect.TypeFor[label]()))

	assert.ErrorIs(t, schema.Enum[int](s), schema.ErrNotEnumType)
	assert.ErrorIs(t, schema.Enum[money](s), schema.ErrNotEnumType)
	assert.ErrorIs(t, schema.Enum[label](s, schema.Member("A", 1)), schema.ErrEnumMemberValue)
	assert.ErrorIs(t, schema.Enum[label](s, schema.Member("A", "a"), schema.Member("a", "b")), schema.ErrDuplicateMember)
}

func TestCacheLoadOrBuild(t *testing.T) {
	t.Parallel()

	s := schema.New("cache")
	pair := schema.PairOf(reflect.TypeFor[int](), reflect.TypeFor[string]())

	var builds atomic.Int32
	build := func() (*schema.Routine, error) {
		builds.Add(1)
		time.Sleep(10 * time.Millisecond)

		return schema.NewRoutine(pair.From, pair.To, "test", func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(strconv.Itoa(int(v.Int()))), nil
		}), nil
	}

	var wg sync.WaitGroup
	routines := make([]*schema.Routine, 8)

	for i := range routines {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := s.Routines().LoadOrBuild(pair, build)
			assert.NoError(t, err)
			routines[i] = r
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for _, r := range routines {
		assert.Same(t, routines[0], r)
	}

	out, err := routines[0].Call(reflect.ValueOf(7))
	require.NoError(t, err)
	assert.Equal(t, "7", out.Interface())

	// registrations invalidate cached routines
	s.SetScalarType(reflect.TypeFor[money](), true)
	_, ok := s.Routines().Load(pair)
	assert.False(t, ok)
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	t.Parallel()

	s := schema.New("failures")
	pair := schema.PairOf(reflect.TypeFor[int](), reflect.TypeFor[bool]())
	boom := errors.New("boom")

	_, err := s.Routines().LoadOrBuild(pair, func() (*schema.Routine, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	_, ok := s.Routines().Load(pair)
	assert.False(t, ok)

	r, err := s.Routines().LoadOrBuild(pair, func() (*schema.Routine, error) {
		return schema.NewRoutine(pair.From, pair.To, "test", func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(v.Int() != 0), nil
		}), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "test", r.Strategy)
}

func TestCacheRegistrationDuringBuild(t *testing.T) {
	t.Parallel()

	s := schema.New("racing")
	pair := schema.PairOf(reflect.TypeFor[int](), reflect.TypeFor[float64]())

	stale, err := s.Routines().LoadOrBuild(pair, func() (*schema.Routine, error) {
		s.SetScalarType(reflect.TypeFor[money](), true)

		return schema.NewRoutine(pair.From, pair.To, "stale", func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(float64(v.Int())), nil
		}), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "stale", stale.Strategy)

	_, ok := s.Routines().Load(pair)
	assert.False(t, ok, "a routine built across a registration is not served again")

	fresh, err := s.Routines().LoadOrBuild(pair, func() (*schema.Routine, error) {
		return schema.NewRoutine(pair.From, pair.To, "fresh", func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(float64(v.Int())), nil
		}), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", fresh.Strategy)

	cached, ok := s.Routines().Load(pair)
	require.True(t, ok)
	assert.Same(t, fresh, cached)
}

func TestPlain(t *testing.T) {
	t.Parallel()

	base := schema.New("plain-base")
	s := schema.New("plain", schema.WithBase(base))
	assert.True(t, s.Plain())

	base.SetScalarType(reflect.TypeFor[money](), true)
	assert.False(t, s.Plain())
}
