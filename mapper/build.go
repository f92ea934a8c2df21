package mapper

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"caster/convert"
	"caster/internal/diagnostic"
	"caster/node"
	"caster/options"
	"caster/schema"
)

var (
	// ErrUnsupportedCollection is returned for collection destinations that cannot be constructed.
	ErrUnsupportedCollection = errors.New("unsupported collection destination")
	// ErrMemberFunc is returned for member overrides with an unusable signature.
	ErrMemberFunc = errors.New("invalid member function")
	// ErrUnknownMember is returned for member overrides naming no destination member.
	ErrUnknownMember = errors.New("no such destination member")
	// ErrLength is returned when a sequence does not fit an array destination and the
	// schema disallows truncation and zero-filling.
	ErrLength = node.ErrLength

	errRestart = errors.New("restart with reference tracking")
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

const (
	codeUnmapped    = "unmapped-member"
	suggestionLimit = 3
)

// buildState is the scratch space of one build pass.
type buildState struct {
	spec   *Spec
	schema *schema.Schema
	track  bool
	deep   bool

	dealer node.Dealer
	stem   *node.Stem
	subs   map[node.StructPair]*node.Sub
	order  []*node.Sub

	diags    diagnostic.Diagnostics
	reported map[string]bool
}

func newBuildState(spec *Spec, track, deep bool) *buildState {
	return &buildState{
		spec:     spec,
		schema:   spec.Schema,
		track:    track,
		deep:     deep,
		stem:     node.NewStem("sub"),
		subs:     make(map[node.StructPair]*node.Sub),
		reported: make(map[string]bool),
	}
}

// build produces the node mapping src values into dst values.
func (b *buildState) build(src, dst reflect.Type) (*node.Node, error) {
	if src == dst && !b.deep {
		return &node.Node{Kind: node.KindAssign, Src: src, Dst: dst}, nil
	}

	isScalar := b.schema.IsScalarType
	if src == dst && isContainer(src) {
		// a deep copy of a pointer, slice or map never shares its target
		isScalar = nil
	}

	switch node.Dispatch(src, dst, isScalar) {
	case node.DispatcherInterface:
		if src.AssignableTo(dst) {
			return &node.Node{Kind: node.KindAssign, Src: src, Dst: dst}, nil
		}

		return b.scalar(src, dst)
	case node.DispatcherPointer:
		return b.pointer(src, dst)
	case node.DispatcherCollection:
		return b.complex(src, dst, b.collection)
	case node.DispatcherMap:
		return b.complex(src, dst, b.mapping)
	case node.DispatcherStruct:
		return b.complex(src, dst, b.structure)
	default:
		return b.scalar(src, dst)
	}
}

func isContainer(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map:
		return true
	default:
		return false
	}
}

func (b *buildState) scalar(src, dst reflect.Type) (*node.Node, error) {
	r, err := convert.Routine(b.schema, src, dst)
	if err != nil {
		return nil, err
	}

	return &node.Node{Kind: node.KindScalar, Src: src, Dst: dst, Convert: node.ConvertFunc(r.Call), Strategy: r.Strategy}, nil
}

func (b *buildState) pointer(src, dst reflect.Type) (*node.Node, error) {
	from, to := src, dst
	if from.Kind() == reflect.Ptr {
		from = from.Elem()
	}

	if to.Kind() == reflect.Ptr {
		to = to.Elem()
	}

	elem, err := b.build(from, to)
	if err != nil {
		return nil, err
	}

	n := &node.Node{Kind: node.KindPointer, Src: src, Dst: dst, Elem: elem, Track: b.track}
	if def, ok := b.schema.DefaultValue(dst); ok {
		n.Default = def
	}

	return n, nil
}

// complex expands a struct, collection or map pair. With tracking the pair becomes a shared
// sub-routine, otherwise it is inlined and repeated expansions are counted.
func (b *buildState) complex(src, dst reflect.Type, body func(src, dst reflect.Type) (*node.Node, error)) (*node.Node, error) {
	if b.track {
		return b.sub(src, dst, body)
	}

	if b.dealer.Enter(src, dst) && b.dealer.Repeats() > b.spec.RestartThreshold {
		return nil, errRestart
	}
	defer b.dealer.Leave(src, dst)

	return body(src, dst)
}

func (b *buildState) sub(src, dst reflect.Type, body func(src, dst reflect.Type) (*node.Node, error)) (*node.Node, error) {
	pair := node.StructPair{Src: src, Dst: dst}

	s, ok := b.subs[pair]
	if !ok {
		s = &node.Sub{Name: b.stem.For(pair), Src: src, Dst: dst}
		b.subs[pair] = s
		b.order = append(b.order, s)

		root, err := body(src, dst)
		if err != nil {
			return nil, err
		}

		s.Define(root)
	}

	return &node.Node{Kind: node.KindCall, Src: src, Dst: dst, Sub: s}, nil
}

func (b *buildState) collection(src, dst reflect.Type) (*node.Node, error) {
	shape, elemT := node.ShapeOf(dst)
	if shape == node.ShapeUnsupported {
		return nil, fmt.Errorf("%w: %v from %v", ErrUnsupportedCollection, dst, src)
	}

	exact := false
	if shape == node.ShapeArray && !(src.Kind() == reflect.Array && src.Len() == dst.Len()) {
		cats := b.schema.Categories()
		if !cats.Has(options.CategorySafeArray) && !cats.Has(options.CategoryUnsafeArray) {
			return nil, fmt.Errorf("%w: %v from %v, array categories are disabled", ErrUnsupportedCollection, dst, src)
		}

		exact = !cats.Has(options.CategoryUnsafeArray)
	}

	seq, _ := node.SequenceOf(src)

	elem, err := b.build(seq.Elem, elemT)
	if err != nil {
		return nil, err
	}

	return b.orDefault(&node.Node{
		Kind:        node.KindCollection,
		Src:         src,
		Dst:         dst,
		Shape:       shape,
		ExactLength: exact,
		Elem:        elem,
	}), nil
}

func (b *buildState) mapping(src, dst reflect.Type) (*node.Node, error) {
	key, err := b.build(src.Key(), dst.Key())
	if err != nil {
		return nil, err
	}

	elem, err := b.build(src.Elem(), dst.Elem())
	if err != nil {
		return nil, err
	}

	return b.orDefault(&node.Node{Kind: node.KindMap, Src: src, Dst: dst, Key: key, Elem: elem}), nil
}

// orDefault short-circuits nil sources of nilable kinds to the destination default.
func (b *buildState) orDefault(n *node.Node) *node.Node {
	switch n.Src.Kind() {
	case reflect.Slice, reflect.Map, reflect.Interface:
	default:
		return n
	}

	def := &node.Node{Kind: node.KindDefault, Src: n.Src, Dst: n.Dst, Elem: n}
	if v, ok := b.schema.DefaultValue(n.Dst); ok {
		def.Default = v
	}

	return def
}

func (b *buildState) structure(src, dst reflect.Type) (*node.Node, error) {
	n := &node.Node{Kind: node.KindStruct, Src: src, Dst: dst}

	srcFields := node.Fields(src, b.spec.FromNames[src], nil)
	end := src == structOf(b.spec.From) && dst == structOf(b.spec.To)

	for _, df := range node.Fields(dst, b.spec.ToNames[dst], b.spec.Filter) {
		if fn, ok := b.spec.Members[df.Name]; ok && end {
			override, err := b.override(src, df, fn)
			if err != nil {
				return nil, err
			}

			n.Members = append(n.Members, node.Member{Name: df.Name, Dst: df.Index, Override: override})

			continue
		}

		sf, ok := node.MatchField(df, srcFields)
		if !ok {
			b.unmapped(src, dst, df, srcFields)
			continue
		}

		elem, err := b.build(sf.Type, df.Type)
		if err != nil {
			if errors.Is(err, errRestart) {
				return nil, err
			}

			return nil, fmt.Errorf("%v.%s: %w", dst, df.Name, err)
		}

		n.Members = append(n.Members, node.Member{
			Name:   df.Name,
			Source: sf.Name,
			Dst:    df.Index,
			Src:    sf.Index,
			Node:   elem,
		})
	}

	return n, nil
}

// override adapts a member function: func(S) V or func(S) (V, error), where S is the
// source struct or a pointer to it. V is converted to the member type.
func (b *buildState) override(src reflect.Type, df node.Field, m MemberFunc) (node.ConvertFunc, error) {
	if !m.Fn.IsValid() || m.Fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s is not a function", ErrMemberFunc, m.Name)
	}

	ft := m.Fn.Type()
	if ft.NumIn() != 1 || ft.NumOut() < 1 || ft.NumOut() > 2 || ft.NumOut() == 2 && ft.Out(1) != errorType {
		return nil, fmt.Errorf("%w: %s has signature %v", ErrMemberFunc, m.Name, ft)
	}

	byPtr := ft.In(0) == reflect.PointerTo(src)
	if !byPtr && ft.In(0) != src {
		return nil, fmt.Errorf("%w: %s takes %v, not %v", ErrMemberFunc, m.Name, ft.In(0), src)
	}

	r, err := convert.Routine(b.schema, ft.Out(0), df.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Name, err)
	}

	fn := m.Fn

	return func(v reflect.Value) (reflect.Value, error) {
		arg := v
		if byPtr {
			if v.CanAddr() {
				arg = v.Addr()
			} else {
				arg = reflect.New(src)
				arg.Elem().Set(v)
			}
		}

		out := fn.Call([]reflect.Value{arg})
		if len(out) == 2 && !out[1].IsNil() {
			return reflect.Value{}, out[1].Interface().(error)
		}

		return r.Call(out[0])
	}, nil
}

func (b *buildState) unmapped(src, dst reflect.Type, df node.Field, srcFields []node.Field) {
	pair := node.StructPair{Src: src, Dst: dst}.String()

	key := pair + "." + df.Name
	if b.reported[key] {
		return
	}
	b.reported[key] = true

	b.diags.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticInfo,
		Code:        codeUnmapped,
		Message:     fmt.Sprintf("no source member for %q, left unchanged", df.Logical),
		TypePair:    pair,
		FieldPath:   df.Name,
		Suggestions: node.Suggest(df, srcFields, suggestionLimit),
	})
}

// buildFlavor builds and compiles one routine flavor, restarting with tracking
// when the type graph turns out to be cyclic.
func buildFlavor(spec *Spec, name string, track, deep, reuse bool) (*Flavor, error) {
	logger := spec.Logger.With(zap.Stringer("mapper", spec), zap.String("flavor", name))
	restarted := false

	for {
		b := newBuildState(spec, track, deep)

		root, err := b.build(spec.From, spec.To)
		if errors.Is(err, errRestart) && !track {
			logger.Debug("cyclic type graph, restarting with reference tracking",
				zap.Int("repeats", b.dealer.Repeats()))

			track, restarted = true, true

			continue
		}

		if err != nil {
			return nil, err
		}

		if reuse && root.Kind == node.KindPointer {
			root.Reuse = true
		}

		for _, s := range b.order {
			s.Compile()
		}

		logger.Debug("mapper built",
			zap.Bool("tracking", track),
			zap.Bool("deep", deep),
			zap.Int("subs", len(b.order)),
			zap.Int("unmapped", len(b.diags.Infos)))

		return &Flavor{
			Root:        root,
			Subs:        b.order,
			Tracking:    track,
			DeepCopy:    deep,
			Restarted:   restarted,
			Diagnostics: b.diags,
			fn:          node.Compile(root),
		}, nil
	}
}
