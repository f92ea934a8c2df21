package node

import "reflect"

func compileMap(n *Node) Func {
	key := Compile(n.Key)
	elem := Compile(n.Elem)
	dstT := n.Dst

	return func(src, dst reflect.Value, env *Env) error {
		if src.IsNil() {
			dst.SetZero()
			return nil
		}

		out := reflect.MakeMapWithSize(dstT, src.Len())

		iter := src.MapRange()
		for iter.Next() {
			k := reflect.New(dstT.Key()).Elem()
			if err := key(iter.Key(), k, env); err != nil {
				return err
			}

			v := reflect.New(dstT.Elem()).Elem()
			if err := elem(iter.Value(), v, env); err != nil {
				return err
			}

			out.SetMapIndex(k, v)
		}

		dst.Set(out)

		return nil
	}
}
