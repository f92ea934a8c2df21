package node

import (
	"reflect"
	"unsafe"
)

// Env is the per-call state threaded through a compiled routine.
type Env struct {
	// Refs is the identity map. Nil disables reference tracking for the call.
	Refs *References
}

type refKey struct {
	ptr      unsafe.Pointer
	src, dst reflect.Type
}

// References maps already materialized source pointers to their destination pointers.
// It is not safe for concurrent use; one instance serves one mapping call.
type References struct {
	m map[refKey]reflect.Value
}

func NewReferences() *References {
	return &References{m: make(map[refKey]reflect.Value)}
}

// Lookup returns the destination previously recorded for the source pointer.
func (r *References) Lookup(src reflect.Value, dst reflect.Type) (reflect.Value, bool) {
	if r == nil || src.Kind() != reflect.Ptr || src.IsNil() {
		return reflect.Value{}, false
	}

	v, ok := r.m[refKey{ptr: src.UnsafePointer(), src: src.Type(), dst: dst}]

	return v, ok
}

// Record binds the source pointer to the destination pointer.
func (r *References) Record(src, dst reflect.Value) {
	if r == nil || src.Kind() != reflect.Ptr || src.IsNil() {
		return
	}

	r.m[refKey{ptr: src.UnsafePointer(), src: src.Type(), dst: dst.Type()}] = dst
}

// Len is the number of recorded pairs.
func (r *References) Len() int {
	if r == nil {
		return 0
	}

	return len(r.m)
}
