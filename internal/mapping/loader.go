package mapping

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML profile from the given path.
func LoadFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a MappingFile.
func Parse(data []byte) (*MappingFile, error) {
	var mf MappingFile

	err := yaml.Unmarshal(data, &mf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile YAML: %w", err)
	}

	applyDefaults(&mf)

	return &mf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(mf *MappingFile) {
	if mf.Version == "" {
		mf.Version = CurrentVersion
	}
}

// Marshal serializes a MappingFile to YAML.
func Marshal(mf *MappingFile) ([]byte, error) {
	return yaml.Marshal(mf)
}

// WriteFile writes a MappingFile to the given path.
func WriteFile(mf *MappingFile, path string) error {
	data, err := Marshal(mf)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", path, err)
	}

	return nil
}

// Resolved is the effective rule for one target member.
type Resolved struct {
	Field    FieldMapping
	Priority MappingPriority
}

// Resolve applies the priority order and returns the effective rule per target member.
// Ignored members map to a rule with PriorityIgnore and no source.
func (tm *TypeMapping) Resolve() map[string]Resolved {
	out := make(map[string]Resolved)

	for _, ig := range tm.Ignore {
		out[ig] = Resolved{Field: FieldMapping{Target: ig}, Priority: PriorityIgnore}
	}

	for _, fm := range tm.Fields {
		if prev, ok := out[fm.Target]; ok && prev.Priority > PriorityFields {
			continue
		}

		out[fm.Target] = Resolved{Field: fm, Priority: PriorityFields}
	}

	for source, target := range tm.OneToOne {
		out[target] = Resolved{Field: FieldMapping{Target: target, Source: source}, Priority: PriorityOneToOne}
	}

	return out
}
