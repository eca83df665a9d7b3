package backend

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Mapping is a flat set of dotted keys (e.g. "db.host") to raw string values.
// Keys are case-sensitive and unique; ordering is irrelevant.
type Mapping map[string]string

// Clone returns a shallow copy of the mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Keys returns the mapping's keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Backend loads and saves a Mapping for one on-disk format.
type Backend interface {
	// Load reads the mapping at path. It returns ErrNotFound if the file
	// (or its parent directory) does not exist and ErrCorrupt if the file
	// exists but cannot be parsed.
	Load(path string) (Mapping, error)

	// Save atomically persists the mapping to path, creating missing
	// parent directories.
	Save(path string, data Mapping) error
}

// Registry maps file suffixes to backends.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register associates a backend with a file suffix (e.g. ".ini").
// Registering an already-claimed suffix replaces the previous backend.
func (r *Registry) Register(suffix string, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[strings.ToLower(suffix)] = b
}

// ForPath returns the backend registered for the path's suffix.
func (r *Registry) ForPath(path string) (Backend, error) {
	suffix := strings.ToLower(filepath.Ext(path))
	r.mu.RLock()
	b, ok := r.backends[suffix]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	return b, nil
}

// Suffixes returns the registered suffixes in sorted order.
func (r *Registry) Suffixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.backends))
	for s := range r.backends {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Default returns a new registry with all built-in backends registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(".ini", INIBackend{})
	r.Register(".json", JSONBackend{})
	r.Register(".yaml", YAMLBackend{})
	r.Register(".yml", YAMLBackend{})
	r.Register(".toml", TOMLBackend{})
	return r
}
