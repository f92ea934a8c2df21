package mapping

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"

	"caster/internal/common"
)

// CurrentVersion is the only profile version understood.
const CurrentVersion = "1"

// MappingFile represents the root of a YAML profile.
type MappingFile struct {
	// Version of the profile schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Configuration names the enum mapping configuration the profile's schema uses.
	Configuration string `yaml:"configuration,omitempty"`

	// Enums declares enum members and their value mappings.
	Enums []EnumDef `yaml:"enums,omitempty"`

	// TypeMappings is a list of type pair mappings.
	TypeMappings []TypeMapping `yaml:"mappings,omitempty"`
}

// EnumDef declares the members of one enum type.
type EnumDef struct {
	// Type identifier (e.g., "store.OrderStatus").
	Type    string      `yaml:"type"`
	Members []MemberDef `yaml:"members"`
}

// MemberDef is one enum member: its constant name, underlying value and mappings.
type MemberDef struct {
	Name   string     `yaml:"name"`
	Value  any        `yaml:"value"`
	Values []ValueDef `yaml:"values,omitempty"`
}

// ValueDef maps a member to a value under a configuration. The empty configuration
// applies when no named one matches.
type ValueDef struct {
	Config  string `yaml:"config,omitempty"`
	Value   any    `yaml:"value"`
	Default bool   `yaml:"default,omitempty"`
}

// Configs returns the configurations the enum declares values for, in first-seen order.
func (e *EnumDef) Configs() []string {
	var out []string

	seen := map[string]bool{}

	for _, m := range e.Members {
		for _, v := range m.Values {
			if !seen[v.Config] {
				seen[v.Config] = true
				out = append(out, v.Config)
			}
		}
	}

	return out
}

// TypeMapping defines how to map one source type to one target type.
type TypeMapping struct {
	// Source type identifier (e.g., "store.Order" or full path).
	Source string `yaml:"source"`

	// Target type identifier (e.g., "warehouse.Order" or full path).
	Target string `yaml:"target"`

	// OneToOne is a simplified mapping syntax where keys are source paths
	// and values are target members.
	// Priority: highest (applied first).
	// Example: { "TotalCents": "TotalAmount", "Customer.Email": "Email" }
	OneToOne map[string]string `yaml:"121,omitempty"`

	// Fields defines explicit member mappings.
	// Priority: second highest (after 121).
	Fields []FieldMapping `yaml:"fields,omitempty"`

	// Ignore lists target members that should not be mapped.
	// Priority: third (after fields).
	Ignore StringArray `yaml:"ignore,omitempty"`
}

// String returns the "source->target" pair identifier used in diagnostics.
func (tm *TypeMapping) String() string {
	return tm.Source + "->" + tm.Target
}

// FieldMapping defines how one target member is populated.
// Exactly one of Source, Default and Expr is set.
type FieldMapping struct {
	// Target is the target member name.
	Target string `yaml:"target"`

	// Source is the source path, e.g. "Name" or "Customer.Email".
	Source string `yaml:"source,omitempty"`

	// Default is a literal assigned regardless of the source.
	Default *string `yaml:"default,omitempty"`

	// Expr is an expression evaluated with the source struct bound to "src".
	Expr string `yaml:"expr,omitempty"`
}

// Kind returns the way the target is populated.
func (fm *FieldMapping) Kind() FieldKind {
	n := 0
	kind := FieldKindNone

	if fm.Source != "" {
		n++
		kind = FieldKindSource
	}

	if fm.Default != nil {
		n++
		kind = FieldKindDefault
	}

	if fm.Expr != "" {
		n++
		kind = FieldKindExpr
	}

	if n > 1 {
		return FieldKindConflict
	}

	return kind
}

// FieldKind is how a field mapping populates its target.
type FieldKind int

const (
	FieldKindNone     FieldKind = iota // nothing to populate from
	FieldKindSource                    // copied and converted from a source path
	FieldKindDefault                   // literal converted to the member type
	FieldKindExpr                      // expression result converted to the member type
	FieldKindConflict                  // more than one of the above
)

// String returns a human-readable representation of the kind.
func (k FieldKind) String() string {
	switch k {
	case FieldKindNone:
		return "none"
	case FieldKindSource:
		return "source"
	case FieldKindDefault:
		return "default"
	case FieldKindExpr:
		return "expr"
	case FieldKindConflict:
		return "conflict"
	default:
		return common.UnknownStr
	}
}

// StringArray is a string slice that can be unmarshaled from a single string or a list.
type StringArray []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}

		*s = []string{single}

		return nil
	case yaml.SequenceNode:
		var multi []string
		if err := node.Decode(&multi); err != nil {
			return err
		}

		*s = multi

		return nil
	default:
		return errors.New("expected string or list of strings")
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise a list.
func (s StringArray) MarshalYAML() (any, error) {
	if common.IsSingle(s) {
		return s[0], nil
	}

	return []string(s), nil
}

// MappingPriority represents the priority level of a mapping rule.
type MappingPriority int

const (
	PriorityAuto     MappingPriority = iota // Lowest: matched by name
	PriorityIgnore                          // Third: explicitly ignored
	PriorityFields                          // Second: explicit field mappings
	PriorityOneToOne                        // Highest: 121 shorthand mappings
)

// String returns a human-readable representation of the priority.
func (p MappingPriority) String() string {
	switch p {
	case PriorityOneToOne:
		return "121"
	case PriorityFields:
		return "fields"
	case PriorityIgnore:
		return "ignore"
	case PriorityAuto:
		return "auto"
	default:
		return common.UnknownStr
	}
}

// FieldPath represents a parsed member path like "Customer.Email".
type FieldPath struct {
	Segments []string
}

// String returns the path as a string.
func (p FieldPath) String() string {
	return strings.Join(p.Segments, ".")
}

// IsSimple returns true if this is a single member path.
func (p FieldPath) IsSimple() bool {
	return len(p.Segments) == 1
}

// Root returns the first segment.
func (p FieldPath) Root() string {
	if v, ok := common.First(p.Segments); ok {
		return v
	}

	return ""
}

// IsEmpty returns true if the path has no segments.
func (p FieldPath) IsEmpty() bool {
	return common.IsEmpty(p.Segments)
}

// Equals returns true if two paths are equal.
func (p FieldPath) Equals(other FieldPath) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}

	for i, seg := range p.Segments {
		if seg != other.Segments[i] {
			return false
		}
	}

	return true
}
