package sigil

import (
	"fmt"

	"github.com/randalmurphal/sigil/scope"
)

// ScopedWriter pins an engine to a single writable scope, for callers that
// issue a batch of writes against one layer (a setup wizard filling the user
// scope, a project bootstrap filling the project scope).
type ScopedWriter struct {
	engine  *Engine
	scopeID string
}

// Scoped returns a writer bound to one scope. The scope must exist in the
// policy and accept writes.
func (e *Engine) Scoped(scopeID string) (*ScopedWriter, error) {
	sc, ok := e.policy.Lookup(scopeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", scope.ErrUnknownScope, scopeID)
	}
	if !sc.Writable || sc.Kind == scope.Overlay {
		return nil, fmt.Errorf("scope %q: %w", scopeID, ErrNotWritable)
	}
	return &ScopedWriter{engine: e, scopeID: scopeID}, nil
}

// ScopeID returns the bound scope.
func (w *ScopedWriter) ScopeID() string { return w.scopeID }

// Set writes a key into the bound scope.
func (w *ScopedWriter) Set(key string, value any) error {
	return w.engine.Set(key, value, w.scopeID)
}

// Clear removes a key from the bound scope.
func (w *ScopedWriter) Clear(key string) error {
	return w.engine.Clear(key, w.scopeID)
}

// Keys lists the keys present in the bound scope.
func (w *ScopedWriter) Keys() ([]string, error) {
	return w.engine.Keys(w.scopeID)
}
