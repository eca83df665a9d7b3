package scope

import (
	"fmt"
)

// Kind distinguishes file-backed scopes from synthesized overlays.
type Kind int

// Scope kinds.
const (
	// FileBacked scopes persist to a settings file.
	FileBacked Kind = iota

	// Overlay scopes are synthesized at read time (environment variables)
	// and have no backing file.
	Overlay
)

// Well-known scope ids used by the default policies.
const (
	ScopeEnv          = "env"
	ScopeProjectLocal = "project-local"
	ScopeProject      = "project"
	ScopeUserLocal    = "user-local"
	ScopeUser         = "user"
	ScopeDefault      = "default"
)

// PathFunc resolves the backing file for a provider. Returning an empty path
// with a nil error means the scope currently has no backing file and resolves
// to an empty mapping (e.g. project scopes outside any project).
type PathFunc func(provider string) (string, error)

// Scope is one precedence layer of configuration. Immutable once constructed.
type Scope struct {
	// ID uniquely identifies the scope within a policy.
	ID string

	// Writable reports whether values may be written to this scope.
	Writable bool

	// Machine marks scopes whose settings are specific to the local host.
	Machine bool

	// Kind is FileBacked or Overlay.
	Kind Kind

	// Path resolves the scope's settings file. nil for overlay scopes.
	Path PathFunc
}

// Policy is an ordered sequence of unique scopes, highest precedence first.
// Policies are immutable value objects.
type Policy struct {
	scopes []Scope
	byID   map[string]int
}

// NewPolicy builds a policy from scopes in precedence order (highest first).
// It fails if no scopes are given, if two scopes share an id, or if the
// terminal read-only "default" scope is missing.
func NewPolicy(scopes ...Scope) (*Policy, error) {
	if len(scopes) == 0 {
		return nil, ErrNoScopes
	}
	byID := make(map[string]int, len(scopes))
	hasDefault := false
	for i, s := range scopes {
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateScope, s.ID)
		}
		byID[s.ID] = i
		if s.ID == ScopeDefault {
			if s.Writable {
				return nil, fmt.Errorf("default scope must be read-only")
			}
			hasDefault = true
		}
	}
	if !hasDefault {
		return nil, ErrNoDefaultScope
	}
	owned := make([]Scope, len(scopes))
	copy(owned, scopes)
	return &Policy{scopes: owned, byID: byID}, nil
}

// Scopes returns the scopes in precedence order, highest first.
func (p *Policy) Scopes() []Scope {
	out := make([]Scope, len(p.scopes))
	copy(out, p.scopes)
	return out
}

// IDs returns the scope ids in precedence order.
func (p *Policy) IDs() []string {
	out := make([]string, len(p.scopes))
	for i, s := range p.scopes {
		out[i] = s.ID
	}
	return out
}

// Lookup returns the scope with the given id.
func (p *Policy) Lookup(id string) (Scope, bool) {
	i, ok := p.byID[id]
	if !ok {
		return Scope{}, false
	}
	return p.scopes[i], true
}

// CanWrite reports whether the scope with the given id is writable.
func (p *Policy) CanWrite(id string) (bool, error) {
	s, ok := p.Lookup(id)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownScope, id)
	}
	return s.Writable, nil
}

// ResolvePath returns the settings file path for a scope and provider.
// Overlay scopes have no path. An empty path with nil error means the scope
// has no backing file at present.
func (p *Policy) ResolvePath(id, provider string) (string, error) {
	s, ok := p.Lookup(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScope, id)
	}
	if s.Kind == Overlay || s.Path == nil {
		return "", fmt.Errorf("%w: %q", ErrOverlayScope, id)
	}
	return s.Path(provider)
}

// WithScopes returns a new policy with added prepended in front (so they take
// highest precedence, in the order given) and removeIDs filtered out. The
// receiver is unchanged.
func (p *Policy) WithScopes(added []Scope, removeIDs ...string) (*Policy, error) {
	remove := make(map[string]bool, len(removeIDs))
	for _, id := range removeIDs {
		remove[id] = true
	}
	next := make([]Scope, 0, len(added)+len(p.scopes))
	next = append(next, added...)
	for _, s := range p.scopes {
		if !remove[s.ID] {
			next = append(next, s)
		}
	}
	return NewPolicy(next...)
}
