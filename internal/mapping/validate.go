package mapping

import (
	"fmt"
	"slices"

	"github.com/expr-lang/expr"

	"caster/internal/analyze"
	"caster/internal/common"
	"caster/internal/diagnostic"
	"caster/internal/match"
)

const suggestionLimit = 3

// Validate validates a profile against the given type graph.
// This is a structural validation step only; convertibility of member types is left to
// the mapper build.
func Validate(mf *MappingFile, graph *analyze.TypeGraph) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("profile_is_nil", "profile is nil", "", "")
		return res
	}

	if graph == nil {
		res.AddError("graph_is_nil", "type graph is nil", "", "")
		return res
	}

	if mf.Version != CurrentVersion {
		res.AddError("unsupported_version", fmt.Sprintf("unsupported profile version %q", mf.Version), "", "")
	}

	seenEnums := map[string]struct{}{}

	for i := range mf.Enums {
		def := &mf.Enums[i]

		if _, ok := seenEnums[def.Type]; ok {
			res.AddError("duplicate_enum", fmt.Sprintf("enum %q declared twice", def.Type), "", def.Type)
			continue
		}

		seenEnums[def.Type] = struct{}{}

		validateEnum(res, def, graph)
	}

	seenPairs := map[string]struct{}{}

	for i := range mf.TypeMappings {
		tm := &mf.TypeMappings[i]
		tpStr := tm.String()

		if _, ok := seenPairs[tpStr]; ok {
			res.AddError("duplicate_mapping", fmt.Sprintf("mapping %s declared twice", tpStr), tpStr, "")
			continue
		}

		seenPairs[tpStr] = struct{}{}

		validateTypeMapping(res, tm, graph)
	}

	return res
}

func validateTypeMapping(res *diagnostic.Diagnostics, tm *TypeMapping, graph *analyze.TypeGraph) {
	tpStr := tm.String()

	srcT := ResolveTypeID(tm.Source, graph)
	if srcT == nil {
		res.AddError("source_type_not_found", fmt.Sprintf("source type %q not found", tm.Source), tpStr, tm.Source)
		return
	}

	dstT := ResolveTypeID(tm.Target, graph)
	if dstT == nil {
		res.AddError("target_type_not_found", fmt.Sprintf("target type %q not found", tm.Target), tpStr, tm.Target)
		return
	}

	srcT, dstT = structOf(srcT), structOf(dstT)

	targets := map[string]MappingPriority{}

	claim := func(target string, p MappingPriority) {
		prev, ok := targets[target]
		if !ok {
			targets[target] = p
			return
		}

		if prev == p {
			res.AddError("duplicate_target", fmt.Sprintf("target %q is mapped twice in %s", target, p), tpStr, target)
			return
		}

		res.AddWarning("target_overridden",
			fmt.Sprintf("target %q from %s is overridden by %s", target, p, prev), tpStr, target)
	}

	// 121 shorthand
	for _, sp := range sortedKeys(tm.OneToOne) {
		tp := tm.OneToOne[sp]

		validateSourcePath(res, tpStr, sp, srcT)
		validateTarget(res, tpStr, tp, dstT)
		claim(tp, PriorityOneToOne)
	}

	for _, fm := range tm.Fields {
		if fm.Target == "" {
			res.AddError("missing_target", "field mapping must specify target", tpStr, "")
			continue
		}

		validateTarget(res, tpStr, fm.Target, dstT)
		claim(fm.Target, PriorityFields)

		switch fm.Kind() {
		case FieldKindNone:
			res.AddError("missing_source", "field mapping must specify source, default or expr", tpStr, fm.Target)
		case FieldKindConflict:
			res.AddError("conflicting_source", "field mapping must specify only one of source, default or expr",
				tpStr, fm.Target)
		case FieldKindSource:
			validateSourcePath(res, tpStr, fm.Source, srcT)
		case FieldKindExpr:
			if _, err := expr.Compile(fm.Expr); err != nil {
				res.AddError("invalid_expr", fmt.Sprintf("invalid expression: %v", err), tpStr, fm.Target)
			}
		}
	}

	for _, ig := range tm.Ignore {
		validateTarget(res, tpStr, ig, dstT)
		claim(ig, PriorityIgnore)
	}
}

// validateTarget checks that target names one member of the target struct.
func validateTarget(res *diagnostic.Diagnostics, tpStr, target string, dstT *analyze.TypeInfo) {
	fp, err := ParsePath(target)
	if err != nil {
		res.AddError("invalid_target_path", fmt.Sprintf("invalid target path: %v", err), tpStr, target)
		return
	}

	if !fp.IsSimple() {
		res.AddError("invalid_target_path", "target must name a single member", tpStr, target)
		return
	}

	if dstT.Kind != analyze.TypeKindStruct {
		res.AddError("invalid_target_path", fmt.Sprintf("target type %s is not a struct", dstT.ID), tpStr, target)
		return
	}

	if _, ok := dstT.Field(target); !ok {
		addUnknownField(res, "invalid_target_path", tpStr, target, dstT)
	}
}

// validateSourcePath resolves a dotted path on the source type, following pointers.
func validateSourcePath(res *diagnostic.Diagnostics, tpStr, path string, srcT *analyze.TypeInfo) {
	fp, err := ParsePath(path)
	if err != nil {
		res.AddError("invalid_source_path", fmt.Sprintf("invalid source path: %v", err), tpStr, path)
		return
	}

	current := srcT
	for _, seg := range fp.Segments {
		current = structOf(current)

		if current == nil || current.Kind != analyze.TypeKindStruct {
			res.AddError("invalid_source_path", fmt.Sprintf("cannot access member %q on a non-struct", seg), tpStr, path)
			return
		}

		fld, ok := current.Field(seg)
		if !ok {
			addUnknownField(res, "invalid_source_path", tpStr, path, current)
			return
		}

		current = fld.Type
	}
}

func addUnknownField(res *diagnostic.Diagnostics, code, tpStr, path string, t *analyze.TypeInfo) {
	fp, _ := ParsePath(path)
	name, _ := common.Last(fp.Segments)

	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}

	res.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticError,
		Code:        code,
		Message:     fmt.Sprintf("member %q not found in %s", name, t.ID),
		TypePair:    tpStr,
		FieldPath:   path,
		Suggestions: match.Rank(name, names, suggestionLimit),
	})
}

// structOf follows pointers.
func structOf(t *analyze.TypeInfo) *analyze.TypeInfo {
	for t != nil && t.Kind == analyze.TypeKindPointer {
		t = t.ElemType
	}

	return t
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
