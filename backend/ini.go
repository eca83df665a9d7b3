package backend

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// INIBackend is the primary settings format: section-delimited key=value
// pairs. A dotted key splits across section and leaf name, so "db.host"
// is stored as key "host" in section [db]. Keys without a dot live in the
// unnamed default section.
type INIBackend struct{}

// Load implements Backend.
func (INIBackend) Load(path string) (Mapping, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, ErrCorrupt, err)
	}

	data := make(Mapping)
	for _, sec := range f.Sections() {
		for key, value := range sec.KeysHash() {
			if sec.Name() == ini.DefaultSection {
				data[key] = value
			} else {
				data[sec.Name()+"."+key] = value
			}
		}
	}
	return data, nil
}

// Save implements Backend. Sections and keys are written in sorted order so
// saving the same mapping twice produces byte-identical files.
func (INIBackend) Save(path string, data Mapping) error {
	f := ini.Empty()
	for _, key := range data.Keys() {
		section, leaf := splitKey(key)
		sec := f.Section(section)
		if _, err := sec.NewKey(leaf, data[key]); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFileAtomic(path, buf.Bytes(), 0o644)
}

// splitKey splits a dotted key into its section and leaf name. The section is
// the text before the first dot; keys without a dot map to the default
// (unnamed) section.
func splitKey(key string) (section, leaf string) {
	if i := strings.Index(key, "."); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}
