package mapper_test

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caster/mapper"
	"caster/options"
	"caster/schema"
)

type ring struct {
	Name string
	Next *ring
}

type ringView struct {
	Name string
	Next *ringView
}

func newRing(names ...string) *ring {
	head := &ring{Name: names[0]}
	cur := head

	for _, n := range names[1:] {
		cur.Next = &ring{Name: n}
		cur = cur.Next
	}

	cur.Next = head

	return head
}

func TestCycleTerminates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []mapper.Option
	}{
		{name: "unset"},
		{name: "tracking off", opts: []mapper.Option{mapper.WithTrackReferences(false)}},
		{name: "tracking on", opts: []mapper.Option{mapper.WithTrackReferences(true)}},
		{name: "low threshold", opts: []mapper.Option{mapper.WithRestartThreshold(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := mapper.New[*ring, *ringView](tt.opts...)

			out, err := m.Map(newRing("a", "b", "c"))
			require.NoError(t, err)

			require.NotNil(t, out)
			assert.Equal(t, "a", out.Name)
			assert.Equal(t, "b", out.Next.Name)
			assert.Equal(t, "c", out.Next.Next.Name)
			assert.Same(t, out, out.Next.Next.Next)

			built, err := m.Routines()
			require.NoError(t, err)
			assert.True(t, built.Pure.Tracking)
			assert.True(t, built.Preserving.Tracking)
		})
	}
}

func TestRestartOnlyForCyclicTypes(t *testing.T) {
	t.Parallel()

	built, err := mapper.Build(mapper.NewSpec(reflect.TypeFor[*ring](), reflect.TypeFor[*ringView]()))
	require.NoError(t, err)
	assert.True(t, built.Pure.Restarted)
	assert.False(t, built.Preserving.Restarted)

	built, err = mapper.Build(mapper.NewSpec(reflect.TypeFor[pair](), reflect.TypeFor[pairView]()))
	require.NoError(t, err)
	assert.False(t, built.Pure.Restarted)
	assert.False(t, built.Pure.Tracking)
}

type leaf struct {
	Value int
}

type leafView struct {
	Value int64
}

type pair struct {
	A, B *leaf
}

type pairView struct {
	A, B *leafView
}

func TestSharedReferences(t *testing.T) {
	t.Parallel()

	shared := &leaf{Value: 5}
	src := pair{A: shared, B: shared}

	t.Run("tracking", func(t *testing.T) {
		out, err := mapper.New[pair, pairView](mapper.WithTrackReferences(true)).Map(src)
		require.NoError(t, err)

		assert.Equal(t, int64(5), out.A.Value)
		assert.Same(t, out.A, out.B)
	})

	t.Run("tree copy", func(t *testing.T) {
		out, err := mapper.New[pair, pairView]().Map(src)
		require.NoError(t, err)

		assert.Equal(t, out.A, out.B)
		assert.NotSame(t, out.A, out.B)
	})

	t.Run("shared identity map", func(t *testing.T) {
		m := mapper.New[*leaf, *leafView]()
		refs := mapper.NewReferences()

		var first, second *leafView
		require.NoError(t, m.MapWith(shared, &first, refs))
		require.NoError(t, m.MapWith(shared, &second, refs))

		assert.Same(t, first, second)
		assert.Equal(t, 1, refs.Len())
	})
}

type numbers struct {
	Items []int
}

type intList struct {
	vals    []string
	cleared bool
}

func (l *intList) Add(s string) { l.vals = append(l.vals, s) }
func (l *intList) Clear()       { l.vals, l.cleared = nil, true }

type asArray struct{ Items [3]string }
type asSlice struct{ Items []int64 }
type asSet struct{ Items map[int]bool }
type asAdder struct{ Items intList }

func TestCollectionShapes(t *testing.T) {
	t.Parallel()

	src := numbers{Items: []int{3, 1, 2}}

	arr, err := mapper.New[numbers, asArray]().Map(src)
	require.NoError(t, err)
	assert.Equal(t, [3]string{"3", "1", "2"}, arr.Items)

	sl, err := mapper.New[numbers, asSlice]().Map(src)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, sl.Items)

	set, err := mapper.New[numbers, asSet]().Map(src)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, set.Items)

	add, err := mapper.New[numbers, asAdder]().Map(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1", "2"}, add.Items.vals)
	assert.True(t, add.Items.cleared)

	short, err := mapper.New[numbers, asArray]().Map(numbers{Items: []int{9}})
	require.NoError(t, err)
	assert.Equal(t, [3]string{"9", "", ""}, short.Items)

	empty, err := mapper.New[numbers, asSlice]().Map(numbers{})
	require.NoError(t, err)
	assert.Nil(t, empty.Items)
}

type fixed struct{ Items [3]int }

func TestArrayCategories(t *testing.T) {
	t.Parallel()

	exact := schema.New("exact-arrays", schema.WithCategories(options.CategoryAll&^options.CategoryUnsafeArray))
	m := mapper.New[numbers, asArray](mapper.WithSchema(exact))

	out, err := m.Map(numbers{Items: []int{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, [3]string{"1", "2", "3"}, out.Items)

	_, err = m.Map(numbers{Items: []int{1}})
	require.ErrorIs(t, err, mapper.ErrLength)

	_, err = m.Map(numbers{Items: []int{1, 2, 3, 4}})
	require.ErrorIs(t, err, mapper.ErrLength)

	none := schema.New("no-arrays", schema.WithCategories(options.CategoryAll&^(options.CategorySafeArray|options.CategoryUnsafeArray)))

	_, err = mapper.New[numbers, asArray](mapper.WithSchema(none)).Routines()
	require.ErrorIs(t, err, mapper.ErrUnsupportedCollection)

	same, err := mapper.New[fixed, asArray](mapper.WithSchema(none)).Map(fixed{Items: [3]int{7, 8, 9}})
	require.NoError(t, err)
	assert.Equal(t, [3]string{"7", "8", "9"}, same.Items)
}

type sink struct {
	Items struct{ N int }
}

func TestUnsupportedCollection(t *testing.T) {
	t.Parallel()

	m := mapper.New[numbers, sink]()

	_, err := m.Map(numbers{Items: []int{1}})
	require.ErrorIs(t, err, mapper.ErrUnsupportedCollection)

	_, err = m.Routines()
	require.ErrorIs(t, err, mapper.ErrUnsupportedCollection, "build errors are not cached")
}

type keyed struct {
	Items map[string]int
}

func TestUnsupportedCollectionAtBuild(t *testing.T) {
	t.Parallel()

	_, err := mapper.New[numbers, keyed]().Routines()
	require.ErrorIs(t, err, mapper.ErrUnsupportedCollection)

	_, err = mapper.Build(mapper.NewSpec(reflect.TypeFor[[2]int](), reflect.TypeFor[chan int]()))
	require.ErrorIs(t, err, mapper.ErrUnsupportedCollection)
}

type person struct {
	Bar     string
	Age     int
	Remarks string
}

type personView struct {
	Foo    string
	Age    string
	Remark string
	Extra  string
}

func TestRenaming(t *testing.T) {
	t.Parallel()

	src := person{Bar: "value", Age: 30}

	out, err := mapper.New[person, personView](mapper.ToNames(map[string]string{"Foo": "Bar"})).Map(src)
	require.NoError(t, err)
	assert.Equal(t, "value", out.Foo)
	assert.Equal(t, "30", out.Age)

	out, err = mapper.New[person, personView](
		mapper.MapFromName(reflect.TypeFor[person](), "Bar", "Foo"),
		mapper.MapToName(reflect.TypeFor[personView](), "Age", "-"),
	).Map(src)
	require.NoError(t, err)
	assert.Equal(t, "value", out.Foo)
	assert.Empty(t, out.Age)
}

func TestUnmappedMembers(t *testing.T) {
	t.Parallel()

	m := mapper.New[person, personView]()

	dst := personView{Foo: "untouched", Extra: "keep", Age: "1"}
	require.NoError(t, m.MapInto(person{Bar: "x", Age: 2, Remarks: "r"}, &dst))

	assert.Equal(t, personView{Foo: "untouched", Age: "2", Extra: "keep"}, dst)

	diags, err := m.Diagnostics()
	require.NoError(t, err)
	require.True(t, diags.IsValid())

	byField := map[string][]string{}
	for _, d := range diags.Infos {
		byField[d.FieldPath] = d.Suggestions
	}

	assert.Contains(t, byField, "Foo")
	assert.Contains(t, byField, "Extra")
	assert.Contains(t, byField["Remark"], "Remarks")
}

func TestInPlaceRootPointer(t *testing.T) {
	t.Parallel()

	m := mapper.New[*person, *personView]()

	existing := &personView{Extra: "keep"}
	dst := existing

	require.NoError(t, m.MapInto(&person{Age: 4}, &dst))
	assert.Same(t, existing, dst)
	assert.Equal(t, "4", dst.Age)
	assert.Equal(t, "keep", dst.Extra)

	var fresh *personView
	require.NoError(t, m.MapInto(&person{Age: 5}, &fresh))
	require.NotNil(t, fresh)
	assert.Equal(t, "5", fresh.Age)

	assert.ErrorIs(t, m.MapInto(&person{}, nil), mapper.ErrNilDestination)
}

func TestMemberOverride(t *testing.T) {
	t.Parallel()

	m := mapper.New[person, personView](
		mapper.WithMember("Foo", func(p *person) string { return strings.ToUpper(p.Bar) }),
		mapper.WithMember("Extra", func(p person) (int, error) { return p.Age * 2, nil }),
	)

	out, err := m.Map(person{Bar: "abc", Age: 21})
	require.NoError(t, err)
	assert.Equal(t, "ABC", out.Foo)
	assert.Equal(t, "42", out.Extra)

	built, err := m.Routines()
	require.NoError(t, err)
	assert.Contains(t, built.Pure.Dump(), "Foo <- override")

	_, err = mapper.New[person, personView](mapper.WithMember("Missing", func(person) string { return "" })).Map(person{})
	require.ErrorIs(t, err, mapper.ErrUnknownMember)

	_, err = mapper.New[person, personView](mapper.WithMember("Foo", func(int) string { return "" })).Map(person{})
	require.ErrorIs(t, err, mapper.ErrMemberFunc)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	m := mapper.New[person, personView](mapper.WithFilter(func(f reflect.StructField) bool {
		return f.Name != "Age"
	}))

	dst := personView{Age: "old"}
	require.NoError(t, m.MapInto(person{Age: 9}, &dst))
	assert.Equal(t, "old", dst.Age)
}

func TestIdentityAndDeepCopyFlags(t *testing.T) {
	t.Parallel()

	src := &leaf{Value: 1}

	same, err := mapper.New[*leaf, *leaf]().Map(src)
	require.NoError(t, err)
	assert.Same(t, src, same)

	copied, err := mapper.New[*leaf, *leaf](mapper.WithDeepCopy(true)).Map(src)
	require.NoError(t, err)
	assert.NotSame(t, src, copied)
	assert.Equal(t, src, copied)
}

type registered struct {
	Code *string
}

type registeredView struct {
	Code string
}

func TestSchemaDefaults(t *testing.T) {
	t.Parallel()

	s := schema.New("defaults")
	require.NoError(t, s.SetDefaultValue(reflect.TypeFor[string](), "n/a"))

	out, err := mapper.New[registered, registeredView](mapper.WithSchema(s)).Map(registered{})
	require.NoError(t, err)
	assert.Equal(t, "n/a", out.Code)

	code := "c1"
	out, err = mapper.New[registered, registeredView](mapper.WithSchema(s)).Map(registered{Code: &code})
	require.NoError(t, err)
	assert.Equal(t, "c1", out.Code)
}

func TestConcurrentMap(t *testing.T) {
	t.Parallel()

	m := mapper.New[*ring, *ringView]()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			out, err := m.Map(newRing("x", "y"))
			assert.NoError(t, err)
			assert.Same(t, out, out.Next.Next)
		}()
	}
	wg.Wait()
}

func TestDeepCopy(t *testing.T) {
	t.Parallel()

	src := newRing("a", "b")

	cp, err := mapper.DeepCopy(src)
	require.NoError(t, err)

	assert.NotSame(t, src, cp)
	assert.NotSame(t, src.Next, cp.Next)
	assert.Same(t, cp, cp.Next.Next)
	assert.Empty(t, cmp.Diff(src, cp))

	tags := map[string][]string{"k": {"v"}}
	tagsCopy, err := mapper.DeepCopy(tags)
	require.NoError(t, err)

	tagsCopy["k"][0] = "changed"
	assert.Equal(t, "v", tags["k"][0])
}

func TestMapShared(t *testing.T) {
	t.Parallel()

	out, err := mapper.Map[person, personView](person{Bar: "b", Age: 3})
	require.NoError(t, err)
	assert.Equal(t, "3", out.Age)
}
