package sigil

import "errors"

// Resolution engine errors. Scope, backend and secrets errors pass through
// from their packages; these cover the engine's own contract.
var (
	// ErrKeyNotFound indicates no scope in the policy defines the key.
	ErrKeyNotFound = errors.New("key not found in any scope")

	// ErrNotWritable indicates a write against a read-only scope.
	ErrNotWritable = errors.New("scope is not writable")

	// ErrNoScopePath indicates a writable scope has no backing file at
	// present (e.g. a project scope outside any project).
	ErrNoScopePath = errors.New("scope has no backing file")

	// ErrNoSecrets indicates a secret-prefixed key was used on an engine
	// constructed without a secrets chain.
	ErrNoSecrets = errors.New("no secrets chain configured")
)
