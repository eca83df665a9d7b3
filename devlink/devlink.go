package devlink

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/randalmurphal/sigil/backend"
	"github.com/randalmurphal/sigil/scope"
)

// Dev-link errors.
var (
	// ErrNotLinked indicates no dev-link exists for the provider.
	ErrNotLinked = errors.New("provider has no dev-link")

	// ErrBadDefaultsFile indicates a defaults file failed validation.
	ErrBadDefaultsFile = errors.New("invalid defaults file")
)

// registryVersion guards the dev-links.json format.
const registryVersion = 1

// registryFile is the serialized registry.
type registryFile struct {
	Version int               `json:"version"`
	Links   map[string]string `json:"links"`
}

// Registry reads and writes the dev-link registry file.
type Registry struct {
	path string
}

// Open returns a registry backed by path. An empty path uses
// dev-links.json under the user config directory.
func Open(path string) (*Registry, error) {
	if path == "" {
		base, err := scope.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate user config dir: %w", err)
		}
		path = filepath.Join(base, "dev-links.json")
	}
	return &Registry{path: path}, nil
}

// Path returns the registry file location.
func (r *Registry) Path() string { return r.path }

// Links returns all registered links, provider id to absolute defaults path.
// Links whose target no longer exists are filtered out.
func (r *Registry) Links() (map[string]string, error) {
	all, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(all))
	for provider, path := range all {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			out[provider] = path
		}
	}
	return out, nil
}

// load reads the raw registry without the dangling-target filter. Mutations
// go through this so stale entries can be replaced or removed.
func (r *Registry) load() (map[string]string, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read dev-links: %w", err)
	}

	var reg registryFile
	if err := json.Unmarshal(raw, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	if reg.Version != registryVersion {
		// Unknown future format: treat as empty rather than guessing.
		return map[string]string{}, nil
	}
	if reg.Links == nil {
		return map[string]string{}, nil
	}
	return reg.Links, nil
}

// Resolve returns the defaults path linked for the provider, or ErrNotLinked.
func (r *Registry) Resolve(providerID string) (string, error) {
	links, err := r.Links()
	if err != nil {
		return "", err
	}
	path, ok := links[scope.NormalizeProviderID(providerID)]
	if !ok {
		return "", fmt.Errorf("%q: %w", providerID, ErrNotLinked)
	}
	return path, nil
}

// Link registers (or replaces) the dev-link for a provider. The path must be
// absolute and point at an existing file.
func (r *Registry) Link(providerID, path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("defaults path must be absolute: %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("defaults file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("defaults path is a directory: %s", path)
	}

	links, err := r.load()
	if err != nil {
		return err
	}
	links[scope.NormalizeProviderID(providerID)] = filepath.Clean(path)
	return r.save(links)
}

// Unlink removes the dev-link for a provider and reports whether one
// existed, including links whose target file has since disappeared.
func (r *Registry) Unlink(providerID string) (bool, error) {
	links, err := r.load()
	if err != nil {
		return false, err
	}
	id := scope.NormalizeProviderID(providerID)
	if _, ok := links[id]; !ok {
		return false, nil
	}
	delete(links, id)
	if err := r.save(links); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Registry) save(links map[string]string) error {
	encoded, err := json.MarshalIndent(registryFile{
		Version: registryVersion,
		Links:   links,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dev-links: %w", err)
	}
	return backend.WriteFileAtomic(r.path, append(encoded, '\n'), 0o644)
}

// keyRx is the shape of a valid defaults key: dotted lowercase segments,
// digits and underscores allowed after the first segment.
var keyRx = regexp.MustCompile(`^[a-z0-9]+(\.[a-z0-9_]+)*$`)

// Validate checks that a defaults file loads through the registered backends
// and that every key is well-formed. It returns the offending keys wrapped in
// ErrBadDefaultsFile.
func Validate(backends *backend.Registry, path string) error {
	b, err := backends.ForPath(path)
	if err != nil {
		return err
	}
	mapping, err := b.Load(path)
	if err != nil {
		return err
	}

	var bad []string
	for key := range mapping {
		if !keyRx.MatchString(key) {
			bad = append(bad, key)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("%w: bad keys %v", ErrBadDefaultsFile, bad)
	}
	return nil
}
