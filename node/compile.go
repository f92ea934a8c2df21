package node

import (
	"fmt"
	"reflect"
)

// Compile turns a node tree into a closure. Subs referenced by KindCall nodes
// must be compiled separately before the closure runs.
func Compile(n *Node) Func {
	switch n.Kind {
	case KindScalar:
		return compileScalar(n)
	case KindAssign:
		return compileAssign(n)
	case KindDefault:
		return compileDefault(n)
	case KindPointer:
		return compilePointer(n)
	case KindStruct:
		return compileStruct(n)
	case KindCall:
		return compileCall(n)
	case KindCollection:
		return compileCollection(n)
	case KindMap:
		return compileMap(n)
	default:
		panic(fmt.Sprintf("cannot compile node of kind %s", n.Kind))
	}
}

func compileScalar(n *Node) Func {
	conv := n.Convert

	return func(src, dst reflect.Value, _ *Env) error {
		v, err := conv(src)
		if err != nil {
			return err
		}

		dst.Set(v)

		return nil
	}
}

func compileAssign(n *Node) Func {
	if n.Src == n.Dst || n.Src.AssignableTo(n.Dst) {
		return func(src, dst reflect.Value, _ *Env) error {
			dst.Set(src)
			return nil
		}
	}

	to := n.Dst

	return func(src, dst reflect.Value, _ *Env) error {
		dst.Set(src.Convert(to))
		return nil
	}
}

func compileDefault(n *Node) Func {
	def := n.Default
	elem := Compile(n.Elem)

	return func(src, dst reflect.Value, env *Env) error {
		if IsNil(src) {
			setDefault(dst, def)
			return nil
		}

		return elem(src, dst, env)
	}
}

func compilePointer(n *Node) Func {
	var (
		def    = n.Default
		elem   = Compile(n.Elem)
		srcPtr = n.Src.Kind() == reflect.Ptr
		dstPtr = n.Dst.Kind() == reflect.Ptr
		track  = n.Track && srcPtr && dstPtr
		reuse  = n.Reuse
		dstT   = n.Dst
	)

	return func(src, dst reflect.Value, env *Env) error {
		if srcPtr {
			if src.IsNil() {
				setDefault(dst, def)
				return nil
			}

			if !dstPtr {
				return elem(src.Elem(), dst, env)
			}
		}

		var refs *References
		if track && env != nil {
			refs = env.Refs
		}

		if hit, ok := refs.Lookup(src, dstT); ok {
			dst.Set(hit)
			return nil
		}

		target := dst
		if !reuse || dst.IsNil() {
			target = reflect.New(dstT.Elem())
		}

		// recorded before population so cycles resolve to the same target
		refs.Record(src, target)

		from := src
		if srcPtr {
			from = src.Elem()
		}

		if err := elem(from, target.Elem(), env); err != nil {
			return err
		}

		dst.Set(target)

		return nil
	}
}

type compiledMember struct {
	Member
	fn Func
}

func compileStruct(n *Node) Func {
	members := make([]compiledMember, 0, len(n.Members))
	for _, m := range n.Members {
		cm := compiledMember{Member: m}
		if m.Override == nil {
			cm.fn = Compile(m.Node)
		}

		members = append(members, cm)
	}

	return func(src, dst reflect.Value, env *Env) error {
		for _, m := range members {
			field := dst.FieldByIndex(m.Dst)

			if m.Override != nil {
				v, err := m.Override(src)
				if err != nil {
					return fmt.Errorf("%s: %w", m.Name, err)
				}

				field.Set(v)

				continue
			}

			if err := m.fn(src.FieldByIndex(m.Src), field, env); err != nil {
				return fmt.Errorf("%s: %w", m.Name, err)
			}
		}

		return nil
	}
}

func compileCall(n *Node) Func {
	sub := n.Sub

	return func(src, dst reflect.Value, env *Env) error {
		return sub.fn(src, dst, env)
	}
}
