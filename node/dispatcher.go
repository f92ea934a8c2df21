package node

import "reflect"

// Dispatch classifies how a (source, destination) type pair is mapped.
// Pairs with a scalar side are always DispatcherPrimitive; DispatcherUnknown pairs
// have no structural mapping and go through scalar conversion as well.
func Dispatch(src, dst reflect.Type, isScalar func(reflect.Type) bool) DispatcherEnum {
	if isScalar != nil && (isScalar(src) || isScalar(dst)) {
		return DispatcherPrimitive
	}

	if dst.Kind() == reflect.Interface {
		return DispatcherInterface
	}

	if src.Kind() == reflect.Ptr || dst.Kind() == reflect.Ptr {
		return DispatcherPointer
	}

	if src.Kind() == reflect.Map && dst.Kind() == reflect.Map {
		return DispatcherMap
	}

	if _, ok := SequenceOf(src); ok {
		if shape, _ := ShapeOf(dst); shape != ShapeUnsupported {
			return DispatcherCollection
		}

		// an indexed source has no members to map from, so the collection
		// build rejects the destination shape
		if src.Kind() == reflect.Slice || src.Kind() == reflect.Array {
			return DispatcherCollection
		}
	}

	if src.Kind() == reflect.Struct && dst.Kind() == reflect.Struct {
		return DispatcherStruct
	}

	return DispatcherUnknown
}
