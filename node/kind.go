package node

//go:generate go tool stringer -type=Kind,DispatcherEnum,Shape -output=kind_string.go

// Kind tags a mapping IR node.
type Kind int

const (
	KindUnknown    Kind = iota
	KindScalar          // leaf converted by a scalar routine
	KindAssign          // source value copied as is
	KindDefault         // destination default when the source is nil or zero, otherwise Elem
	KindPointer         // nil handling, identity tracking and allocation around Elem
	KindStruct          // member by member population
	KindCall            // call of a shared sub-routine (cyclic type graphs)
	KindCollection      // sequence to array, slice, set or adder collection
	KindMap             // map to map with converted keys and values

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// DispatcherEnum is the shape class of a (source, destination) type pair.
type DispatcherEnum int

const (
	DispatcherUnknown DispatcherEnum = iota
	DispatcherPrimitive
	DispatcherInterface
	DispatcherPointer
	DispatcherCollection
	DispatcherMap
	DispatcherStruct

	// DispatcherTotal is a constant that represents the total number of kinds defined
	DispatcherTotal = int(iota)
)

// Shape is the construction strategy of a destination collection.
type Shape int

const (
	ShapeUnsupported Shape = iota
	ShapeArray
	ShapeSlice
	ShapeSet
	ShapeAdder
)
