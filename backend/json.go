package backend

import (
	"encoding/json"
	"fmt"
	"os"
)

// JSONBackend stores settings as a JSON object of objects; nested objects map
// to dotted key segments.
type JSONBackend struct{}

// Load implements Backend.
func (JSONBackend) Load(path string) (Mapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return make(Mapping), nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, ErrCorrupt, err)
	}

	data := make(Mapping)
	flatten(decoded, "", data)
	return data, nil
}

// Save implements Backend.
func (JSONBackend) Save(path string, data Mapping) error {
	encoded, err := json.MarshalIndent(nest(data), "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFileAtomic(path, append(encoded, '\n'), 0o644)
}
