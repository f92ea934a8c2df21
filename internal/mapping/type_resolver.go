package mapping

import (
	"strings"

	"caster/internal/analyze"
)

// ResolveTypeID resolves a type ID string like:
// - "store.Order" (short)
// - "caster/internal/fixture/store.Order" (full)
// - "Order" (name only).
func ResolveTypeID(typeIDStr string, graph *analyze.TypeGraph) *analyze.TypeInfo {
	if graph == nil {
		return nil
	}

	id, ok := resolveID(typeIDStr, graph)
	if !ok {
		return nil
	}

	return graph.Types[id]
}

// ResolveEnum resolves an enum type ID string the same way ResolveTypeID does.
func ResolveEnum(typeIDStr string, graph *analyze.TypeGraph) *analyze.EnumInfo {
	if graph == nil {
		return nil
	}

	id, ok := resolveID(typeIDStr, graph)
	if !ok {
		return nil
	}

	return graph.Enums[id]
}

func resolveID(typeIDStr string, graph *analyze.TypeGraph) (analyze.TypeID, bool) {
	// Name-only: best-effort match by type name.
	if !strings.Contains(typeIDStr, ".") {
		if typeIDStr == "" {
			return analyze.TypeID{}, false
		}

		for id := range graph.Types {
			if id.Name == typeIDStr {
				return id, true
			}
		}

		return analyze.TypeID{}, false
	}

	lastDot := strings.LastIndex(typeIDStr, ".")
	pkgStr, name := typeIDStr[:lastDot], typeIDStr[lastDot+1:]

	if pkgStr == "" || name == "" {
		return analyze.TypeID{}, false
	}

	// 1) exact match (for fully qualified import path)
	if id := (analyze.TypeID{PkgPath: pkgStr, Name: name}); graph.Types[id] != nil {
		return id, true
	}

	// 2) suffix match (for short forms like "store.Order")
	for id := range graph.Types {
		if id.Name != name {
			continue
		}

		if id.PkgPath == pkgStr || strings.HasSuffix(id.PkgPath, "/"+pkgStr) {
			return id, true
		}
	}

	return analyze.TypeID{}, false
}
