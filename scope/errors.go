package scope

import "errors"

// Policy errors.
var (
	// ErrUnknownScope indicates the scope id is not part of the policy.
	ErrUnknownScope = errors.New("unknown scope")

	// ErrDuplicateScope indicates two scopes in a policy share an id.
	ErrDuplicateScope = errors.New("duplicate scope id")

	// ErrNoScopes indicates an attempt to build a policy with no scopes.
	ErrNoScopes = errors.New("policy needs at least one scope")

	// ErrNoDefaultScope indicates the policy lacks the terminal read-only
	// "default" scope.
	ErrNoDefaultScope = errors.New("policy has no default scope")

	// ErrOverlayScope indicates a path was requested for an overlay scope,
	// which has no backing file.
	ErrOverlayScope = errors.New("overlay scope has no file path")

	// ErrNoProjectRoot indicates no project root could be located.
	ErrNoProjectRoot = errors.New("no project root found")
)
