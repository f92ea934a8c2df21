package node_test

import (
	"iter"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caster/node"
)

type link struct {
	Val  int
	Next *link
}

type bag struct {
	items   []int64
	cleared bool
}

func (b *bag) Add(v int64) { b.items = append(b.items, v) }
func (b *bag) Clear()      { b.items, b.cleared = nil, true }

type numbers struct{ vals []int }

func (n numbers) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, v := range n.vals {
			if !yield(v) {
				return
			}
		}
	}
}

var (
	intT   = reflect.TypeFor[int]()
	int64T = reflect.TypeFor[int64]()
)

func widen() *node.Node {
	return &node.Node{
		Kind:     node.KindScalar,
		Src:      intT,
		Dst:      int64T,
		Strategy: "test",
		Convert: func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(v.Int()), nil
		},
	}
}

func run(t *testing.T, n *node.Node, src any, dst any, env *node.Env) {
	t.Helper()

	fn := node.Compile(n)
	require.NoError(t, fn(reflect.ValueOf(src), reflect.ValueOf(dst).Elem(), env))
}

func TestCompileStruct(t *testing.T) {
	t.Parallel()

	type from struct {
		A int
		B int
	}

	type to struct {
		A int64
		C int
		D string
	}

	n := &node.Node{
		Kind: node.KindStruct,
		Src:  reflect.TypeFor[from](),
		Dst:  reflect.TypeFor[to](),
		Members: []node.Member{
			{Name: "A", Source: "A", Dst: []int{0}, Src: []int{0}, Node: widen()},
			{Name: "C", Source: "B", Dst: []int{1}, Src: []int{1}, Node: &node.Node{Kind: node.KindAssign, Src: intT, Dst: intT}},
			{Name: "D", Dst: []int{2}, Override: func(src reflect.Value) (reflect.Value, error) {
				return reflect.ValueOf("sum"), nil
			}},
		},
	}

	out := to{D: "old"}
	run(t, n, from{A: 1, B: 2}, &out, &node.Env{})
	assert.Equal(t, to{A: 1, C: 2, D: "sum"}, out)

	dump := n.Dump()
	assert.Contains(t, dump, "KindStruct")
	assert.Contains(t, dump, "C <- B")
	assert.Contains(t, dump, "D <- override")
	assert.Contains(t, dump, "via test")
}

func TestCompileCycle(t *testing.T) {
	t.Parallel()

	linkT := reflect.TypeFor[link]()
	ptrT := reflect.PointerTo(linkT)

	sub := &node.Sub{Name: "sub1", Src: linkT, Dst: linkT}
	ptr := &node.Node{
		Kind:  node.KindPointer,
		Src:   ptrT,
		Dst:   ptrT,
		Track: true,
		Elem:  &node.Node{Kind: node.KindCall, Src: linkT, Dst: linkT, Sub: sub},
	}
	sub.Define(&node.Node{
		Kind: node.KindStruct,
		Src:  linkT,
		Dst:  linkT,
		Members: []node.Member{
			{Name: "Val", Source: "Val", Dst: []int{0}, Src: []int{0}, Node: &node.Node{Kind: node.KindAssign, Src: intT, Dst: intT}},
			{Name: "Next", Source: "Next", Dst: []int{1}, Src: []int{1}, Node: ptr},
		},
	})
	sub.Compile()

	a := &link{Val: 1}
	b := &link{Val: 2, Next: a}
	a.Next = b

	var out *link
	refs := node.NewReferences()
	run(t, ptr, a, &out, &node.Env{Refs: refs})

	require.NotNil(t, out)
	assert.NotSame(t, a, out)
	assert.Equal(t, 1, out.Val)
	assert.Equal(t, 2, out.Next.Val)
	assert.Same(t, out, out.Next.Next)
	assert.Equal(t, 2, refs.Len())

	var none *link
	out = &link{}
	run(t, ptr, none, &out, &node.Env{})
	assert.Nil(t, out)
}

func TestCompileCollections(t *testing.T) {
	t.Parallel()

	src := []int{3, 1, 2}
	collection := func(dst reflect.Type) *node.Node {
		return &node.Node{
			Kind:  node.KindCollection,
			Src:   reflect.TypeOf(src),
			Dst:   dst,
			Shape: func() node.Shape { s, _ := node.ShapeOf(dst); return s }(),
			Elem:  widen(),
		}
	}

	t.Run("slice", func(t *testing.T) {
		var out []int64
		run(t, collection(reflect.TypeFor[[]int64]()), src, &out, &node.Env{})
		assert.Equal(t, []int64{3, 1, 2}, out)
	})

	t.Run("array", func(t *testing.T) {
		short := [2]int64{9, 9}
		run(t, collection(reflect.TypeFor[[2]int64]()), src, &short, &node.Env{})
		assert.Equal(t, [2]int64{3, 1}, short)

		long := [4]int64{9, 9, 9, 9}
		run(t, collection(reflect.TypeFor[[4]int64]()), src, &long, &node.Env{})
		assert.Equal(t, [4]int64{3, 1, 2, 0}, long)
	})

	t.Run("set", func(t *testing.T) {
		var out map[int64]struct{}
		run(t, collection(reflect.TypeFor[map[int64]struct{}]()), src, &out, &node.Env{})
		assert.Equal(t, map[int64]struct{}{1: {}, 2: {}, 3: {}}, out)

		var flags map[int64]bool
		run(t, collection(reflect.TypeFor[map[int64]bool]()), src, &flags, &node.Env{})
		assert.Equal(t, map[int64]bool{1: true, 2: true, 3: true}, flags)
	})

	t.Run("adder", func(t *testing.T) {
		out := bag{items: []int64{7}}
		run(t, collection(reflect.TypeFor[bag]()), src, &out, &node.Env{})
		assert.True(t, out.cleared)
		assert.Equal(t, []int64{3, 1, 2}, out.items)
	})

	t.Run("all", func(t *testing.T) {
		n := collection(reflect.TypeFor[[]int64]())
		n.Src = reflect.TypeFor[numbers]()

		var out []int64
		run(t, n, numbers{vals: []int{5, 6}}, &out, &node.Env{})
		assert.Equal(t, []int64{5, 6}, out)
	})
}

func TestCompileMapAndDefault(t *testing.T) {
	t.Parallel()

	mapT := reflect.TypeFor[map[string]int]()
	outT := reflect.TypeFor[map[string]int64]()
	strT := reflect.TypeFor[string]()

	n := &node.Node{
		Kind: node.KindDefault,
		Src:  mapT,
		Dst:  outT,
		Elem: &node.Node{
			Kind: node.KindMap,
			Src:  mapT,
			Dst:  outT,
			Key:  &node.Node{Kind: node.KindAssign, Src: strT, Dst: strT},
			Elem: widen(),
		},
	}

	var out map[string]int64
	run(t, n, map[string]int{"a": 1, "b": 2}, &out, &node.Env{})
	assert.Equal(t, map[string]int64{"a": 1, "b": 2}, out)

	var nilMap map[string]int
	run(t, n, nilMap, &out, &node.Env{})
	assert.Nil(t, out)
}

func TestSequenceAndShape(t *testing.T) {
	t.Parallel()

	seq, ok := node.SequenceOf(reflect.TypeFor[numbers]())
	require.True(t, ok)
	assert.Equal(t, intT, seq.Elem)
	assert.Equal(t, -1, seq.Len(reflect.ValueOf(numbers{})))

	seq, ok = node.SequenceOf(reflect.TypeFor[map[string]bool]())
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[string](), seq.Elem)

	var visited []string
	err := seq.Each(reflect.ValueOf(map[string]bool{"in": true, "out": false}), func(v reflect.Value) error {
		visited = append(visited, v.String())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"in"}, visited)

	_, ok = node.SequenceOf(reflect.TypeFor[map[string]int]())
	assert.False(t, ok)
	_, ok = node.SequenceOf(reflect.TypeFor[link]())
	assert.False(t, ok)

	shape, elem := node.ShapeOf(reflect.TypeFor[bag]())
	assert.Equal(t, node.ShapeAdder, shape)
	assert.Equal(t, int64T, elem)

	shape, _ = node.ShapeOf(reflect.TypeFor[link]())
	assert.Equal(t, node.ShapeUnsupported, shape)
	assert.Equal(t, "ShapeSet", node.ShapeSet.String())
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	scalar := func(t reflect.Type) bool {
		return t.Kind() >= reflect.Bool && t.Kind() <= reflect.Complex128 || t.Kind() == reflect.String
	}

	tests := []struct {
		name     string
		src, dst reflect.Type
		want     node.DispatcherEnum
	}{
		{"scalar", intT, reflect.TypeFor[string](), node.DispatcherPrimitive},
		{"interface", reflect.TypeFor[link](), reflect.TypeFor[any](), node.DispatcherInterface},
		{"pointer", reflect.TypeFor[*link](), reflect.TypeFor[link](), node.DispatcherPointer},
		{"map", reflect.TypeFor[map[string]int](), reflect.TypeFor[map[string]int](), node.DispatcherMap},
		{"slice", reflect.TypeFor[[]int](), reflect.TypeFor[[2]int](), node.DispatcherCollection},
		{"adder", reflect.TypeFor[numbers](), reflect.TypeFor[bag](), node.DispatcherCollection},
		{"unsupported collection", reflect.TypeFor[[]int](), reflect.TypeFor[link](), node.DispatcherCollection},
		{"struct", reflect.TypeFor[link](), reflect.TypeFor[bag](), node.DispatcherStruct},
		{"slice to map", reflect.TypeFor[[]int](), reflect.TypeFor[map[string]int](), node.DispatcherCollection},
		{"slice to channel", reflect.TypeFor[[]int](), reflect.TypeFor[chan int](), node.DispatcherCollection},
		{"unknown", reflect.TypeFor[chan int](), reflect.TypeFor[chan string](), node.DispatcherUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, node.Dispatch(tt.src, tt.dst, scalar))
		})
	}
}
