package node

import (
	"errors"
	"fmt"
	"reflect"
)

var errStop = errors.New("stop iteration")

// ErrLength is returned when a sequence does not fit an array of exact length.
var ErrLength = errors.New("sequence length does not match array length")

type seqKind int

const (
	seqIndexed seqKind = iota + 1
	seqSet
	seqAll
)

// Sequence describes how to walk a source collection type.
type Sequence struct {
	Elem reflect.Type

	kind      seqKind
	yieldType reflect.Type
}

// SequenceOf reports whether values of t can be walked element by element:
// slices and arrays, set maps (map[K]struct{} and map[K]bool) and types with
// an All() iter.Seq[E] method.
func SequenceOf(t reflect.Type) (Sequence, bool) {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return Sequence{Elem: t.Elem(), kind: seqIndexed}, true
	case reflect.Map:
		if isSetValue(t.Elem()) {
			return Sequence{Elem: t.Key(), kind: seqSet}, true
		}

		return Sequence{}, false
	}

	m, ok := t.MethodByName("All")
	if !ok {
		return Sequence{}, false
	}

	mt := m.Type
	recv := 1
	if t.Kind() == reflect.Interface {
		recv = 0
	}

	if mt.NumIn() != recv || mt.NumOut() != 1 {
		return Sequence{}, false
	}

	seq := mt.Out(0)
	if seq.Kind() != reflect.Func || seq.NumIn() != 1 || seq.NumOut() != 0 {
		return Sequence{}, false
	}

	yield := seq.In(0)
	if yield.Kind() != reflect.Func || yield.NumIn() != 1 || yield.NumOut() != 1 ||
		yield.Out(0).Kind() != reflect.Bool {
		return Sequence{}, false
	}

	return Sequence{Elem: yield.In(0), kind: seqAll, yieldType: yield}, true
}

// Len is the element count of v, or -1 when it is only known after iteration.
func (s Sequence) Len(v reflect.Value) int {
	switch s.kind {
	case seqIndexed, seqSet:
		return v.Len()
	default:
		return -1
	}
}

// Each calls fn for every element of v in source order.
// Iteration stops at the first error, which is returned.
func (s Sequence) Each(v reflect.Value, fn func(reflect.Value) error) error {
	switch s.kind {
	case seqIndexed:
		for i := 0; i < v.Len(); i++ {
			if err := fn(v.Index(i)); err != nil {
				return err
			}
		}
	case seqSet:
		iter := v.MapRange()
		for iter.Next() {
			if iv := iter.Value(); iv.Kind() == reflect.Bool && !iv.Bool() {
				continue
			}

			if err := fn(iter.Key()); err != nil {
				return err
			}
		}
	case seqAll:
		if IsNil(v) {
			return nil
		}

		var failed error
		yield := reflect.MakeFunc(s.yieldType, func(args []reflect.Value) []reflect.Value {
			failed = fn(args[0])
			return []reflect.Value{reflect.ValueOf(failed == nil)}
		})

		v.MethodByName("All").Call(nil)[0].Call([]reflect.Value{yield})

		return failed
	}

	return nil
}

// ShapeOf reports how a destination collection of type t is built and its element type.
func ShapeOf(t reflect.Type) (Shape, reflect.Type) {
	switch t.Kind() {
	case reflect.Array:
		return ShapeArray, t.Elem()
	case reflect.Slice:
		return ShapeSlice, t.Elem()
	case reflect.Map:
		if isSetValue(t.Elem()) {
			return ShapeSet, t.Key()
		}

		return ShapeUnsupported, nil
	case reflect.Ptr, reflect.Interface:
		return ShapeUnsupported, nil
	}

	add, ok := reflect.PointerTo(t).MethodByName("Add")
	if !ok || add.Type.NumIn() != 2 {
		return ShapeUnsupported, nil
	}

	if n := add.Type.NumOut(); n > 1 || n == 1 && !isError(add.Type.Out(0)) {
		return ShapeUnsupported, nil
	}

	return ShapeAdder, add.Type.In(1)
}

func isSetValue(t reflect.Type) bool {
	return t.Kind() == reflect.Bool || t.Kind() == reflect.Struct && t.NumField() == 0
}

func compileCollection(n *Node) Func {
	seq, ok := SequenceOf(n.Src)
	if !ok {
		panic("collection source is not a sequence: " + typeStr(n.Src))
	}

	shape, elemT := ShapeOf(n.Dst)
	elem := Compile(n.Elem)
	dstT := n.Dst

	switch shape {
	case ShapeArray:
		exact := n.ExactLength

		return func(src, dst reflect.Value, env *Env) error {
			i := 0
			err := seq.Each(src, func(e reflect.Value) error {
				if i >= dst.Len() {
					if exact {
						return fmt.Errorf("%w: more than %d elements for %s", ErrLength, dst.Len(), typeStr(dstT))
					}

					return errStop
				}

				if err := elem(e, dst.Index(i), env); err != nil {
					return err
				}
				i++

				return nil
			})
			if err != nil && !errors.Is(err, errStop) {
				return err
			}

			if exact && i < dst.Len() {
				return fmt.Errorf("%w: %d of %d elements for %s", ErrLength, i, dst.Len(), typeStr(dstT))
			}

			for ; i < dst.Len(); i++ {
				dst.Index(i).SetZero()
			}

			return nil
		}
	case ShapeSlice:
		return func(src, dst reflect.Value, env *Env) error {
			out := reflect.MakeSlice(dstT, 0, max(seq.Len(src), 0))
			zero := reflect.Zero(elemT)

			err := seq.Each(src, func(e reflect.Value) error {
				out = reflect.Append(out, zero)
				return elem(e, out.Index(out.Len()-1), env)
			})
			if err != nil {
				return err
			}

			dst.Set(out)

			return nil
		}
	case ShapeSet:
		mark := reflect.Zero(dstT.Elem())
		if dstT.Elem().Kind() == reflect.Bool {
			mark = reflect.ValueOf(true).Convert(dstT.Elem())
		}

		return func(src, dst reflect.Value, env *Env) error {
			out := reflect.MakeMapWithSize(dstT, max(seq.Len(src), 0))

			err := seq.Each(src, func(e reflect.Value) error {
				key := reflect.New(elemT).Elem()
				if err := elem(e, key, env); err != nil {
					return err
				}

				out.SetMapIndex(key, mark)

				return nil
			})
			if err != nil {
				return err
			}

			dst.Set(out)

			return nil
		}
	case ShapeAdder:
		return func(src, dst reflect.Value, env *Env) error {
			target := dst.Addr()
			for _, name := range []string{"Clear", "Reset"} {
				if m := target.MethodByName(name); m.IsValid() && m.Type().NumIn() == 0 {
					m.Call(nil)
					break
				}
			}

			add := target.MethodByName("Add")

			return seq.Each(src, func(e reflect.Value) error {
				item := reflect.New(elemT).Elem()
				if err := elem(e, item, env); err != nil {
					return err
				}

				out := add.Call([]reflect.Value{item})
				if len(out) == 1 && !out[0].IsNil() {
					return out[0].Interface().(error)
				}

				return nil
			})
		}
	default:
		panic("unsupported collection destination: " + typeStr(n.Dst))
	}
}
