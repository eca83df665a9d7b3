package backend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLBackend stores settings as nested YAML mappings.
type YAMLBackend struct{}

// Load implements Backend.
func (YAMLBackend) Load(path string) (Mapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, ErrCorrupt, err)
	}

	data := make(Mapping)
	flatten(normalizeYAML(decoded), "", data)
	return data, nil
}

// Save implements Backend.
func (YAMLBackend) Save(path string, data Mapping) error {
	encoded, err := yaml.Marshal(nest(data))
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFileAtomic(path, encoded, 0o644)
}

// normalizeYAML rewrites map[any]any nodes (which yaml.v3 can produce for
// nested mappings) into map[string]any so flatten can walk them.
func normalizeYAML(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = normalizeYAMLValue(v)
	}
	return out
}

func normalizeYAMLValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeYAML(val)
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[fmt.Sprintf("%v", k)] = normalizeYAMLValue(inner)
		}
		return out
	default:
		return v
	}
}
