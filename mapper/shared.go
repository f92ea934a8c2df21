package mapper

import (
	"fmt"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"caster/schema"
)

type sharedKey struct {
	from, to reflect.Type
	deep     bool
}

type sharedEntry struct {
	built *Built
	stamp uint64
}

// process-wide mappers over the default schema, rebuilt when it changes
var (
	shared sync.Map // sharedKey -> sharedEntry
	group  singleflight.Group
)

func sharedBuilt(from, to reflect.Type, deep bool) (*Built, error) {
	key := sharedKey{from: from, to: to, deep: deep}
	stamp := schema.Default().Stamp()

	if e, ok := shared.Load(key); ok && e.(sharedEntry).stamp == stamp {
		return e.(sharedEntry).built, nil
	}

	v, err, _ := group.Do(fmt.Sprintf("%p|%p|%t", from, to, deep), func() (any, error) {
		var opts []Option
		if deep {
			opts = append(opts, WithTrackReferences(true), WithDeepCopy(true))
		}

		b, err := Build(NewSpec(from, to, opts...))
		if err != nil {
			return nil, err
		}

		shared.Store(key, sharedEntry{built: b, stamp: stamp})

		return b, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Built), nil
}

// Map maps src into a new T with the process-wide default mapper of the pair.
func Map[F, T any](src F) (T, error) {
	var out T

	b, err := sharedBuilt(reflect.TypeFor[F](), reflect.TypeFor[T](), false)
	if err != nil {
		return out, err
	}

	err = b.Pure.Run(reflect.ValueOf(&src).Elem(), reflect.ValueOf(&out).Elem(), nil)

	return out, err
}

// DeepCopy returns a copy of v sharing no memory with it that is reachable through exported
// fields. Shared and cyclic references are reproduced in the copy.
func DeepCopy[T any](v T) (T, error) {
	var out T

	t := reflect.TypeFor[T]()

	b, err := sharedBuilt(t, t, true)
	if err != nil {
		return out, err
	}

	err = b.Pure.Run(reflect.ValueOf(&v).Elem(), reflect.ValueOf(&out).Elem(), nil)

	return out, err
}
