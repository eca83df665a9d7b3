package backend

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// TOMLBackend stores settings as nested TOML tables.
type TOMLBackend struct{}

// Load implements Backend.
func (TOMLBackend) Load(path string) (Mapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var decoded map[string]any
	if err := toml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, ErrCorrupt, err)
	}

	data := make(Mapping)
	flatten(decoded, "", data)
	return data, nil
}

// Save implements Backend.
func (TOMLBackend) Save(path string, data Mapping) error {
	encoded, err := toml.Marshal(nest(data))
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFileAtomic(path, encoded, 0o644)
}
