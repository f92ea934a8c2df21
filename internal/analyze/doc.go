// Package analyze loads Go packages and extracts the facts profiles are checked against.
//
// It uses golang.org/x/tools/go/packages with go/types to build an in-memory model of
// named types, their struct fields and the constants declared for enum-like types.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/map/external)
//   - FieldInfo: describes field name, type, tags, and embedding
//   - EnumInfo: a named integer or string type with its declared constants
package analyze
