package mapping

import (
	"fmt"

	"caster/internal/analyze"
	"caster/internal/diagnostic"
	"caster/internal/match"
)

// validateEnum checks member names and values against the declared constants and looks
// for declarations the mapping resolver would reject.
func validateEnum(res *diagnostic.Diagnostics, def *EnumDef, graph *analyze.TypeGraph) {
	enum := ResolveEnum(def.Type, graph)
	if enum == nil {
		res.AddError("enum_type_not_found", fmt.Sprintf("enum type %q not found", def.Type), "", def.Type)
		return
	}

	consts := make(map[string]analyze.Constant, len(enum.Constants))
	names := make([]string, 0, len(enum.Constants))

	for _, c := range enum.Constants {
		consts[c.Name] = c
		names = append(names, c.Name)
	}

	seen := map[string]struct{}{}

	for _, m := range def.Members {
		path := def.Type + "." + m.Name

		if _, ok := seen[m.Name]; ok {
			res.AddError("duplicate_enum_member", fmt.Sprintf("member %q declared twice", m.Name), "", path)
			continue
		}

		seen[m.Name] = struct{}{}

		c, ok := consts[m.Name]
		if !ok {
			res.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticError,
				Code:        "unknown_enum_member",
				Message:     fmt.Sprintf("%s declares no constant %q", enum.ID, m.Name),
				FieldPath:   path,
				Suggestions: match.Rank(m.Name, names, suggestionLimit),
			})

			continue
		}

		switch {
		case m.Value == nil:
			res.AddError("missing_enum_value", "member must declare its value", "", path)
		case fmt.Sprint(m.Value) != fmt.Sprint(c.Value):
			res.AddError("enum_value_mismatch",
				fmt.Sprintf("member value %v differs from constant value %v", m.Value, c.Value), "", path)
		}
	}

	for _, config := range def.Configs() {
		validateEnumConfig(res, def, config)
	}
}

// validateEnumConfig reports members without a value for config and values claimed by
// several members with no default among them.
func validateEnumConfig(res *diagnostic.Diagnostics, def *EnumDef, config string) {
	type claim struct {
		members  []string
		defaults int
	}

	claims := map[string]*claim{}

	var order []string

	for _, m := range def.Members {
		var decls []ValueDef

		for _, v := range m.Values {
			if v.Config == config {
				decls = append(decls, v)
			}
		}

		if len(decls) == 0 {
			res.AddWarning("partial_enum_mapping",
				fmt.Sprintf("member %q has no value for configuration %q", m.Name, config), "", def.Type+"."+m.Name)

			continue
		}

		for _, d := range decls {
			key := fmt.Sprint(d.Value)

			c, ok := claims[key]
			if !ok {
				c = &claim{}
				claims[key] = c
				order = append(order, key)
			}

			c.members = append(c.members, m.Name)
			if d.Default {
				c.defaults++
			}
		}
	}

	for _, key := range order {
		c := claims[key]
		if len(c.members) > 1 && c.defaults != 1 {
			res.AddWarning("ambiguous_enum_value",
				fmt.Sprintf("value %s under configuration %q is claimed by %v; mark exactly one as default",
					key, config, c.members), "", def.Type)
		}
	}
}
