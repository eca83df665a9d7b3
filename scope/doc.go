// Package scope defines configuration scopes and the ordered policies that
// give them precedence.
//
// A Scope is one precedence layer (user, project, defaults, environment
// overlay, ...): an immutable descriptor carrying an identifier, a write
// permission, a machine-affinity flag and a path resolver. A Policy is an
// ordered sequence of unique scopes, highest precedence first. Policies are
// value objects: WithScopes returns a new policy and never mutates a shared
// one, so a resolution session holding a policy reference is unaffected by
// later changes.
//
// Every policy contains exactly one terminal "default" scope, the read-only
// layer a package author ships. Its absence is a configuration error.
//
// Machine-affinity scopes resolve to a filename suffixed with the normalized
// local host name (settings-local-<host>.ini), which is the only
// context-dependent path rule.
//
// The process-wide policy handle is explicit and replaceable:
//
//	scope.Install(policy)  // replace the process default
//	scope.Installed()      // currently installed policy, or nil
//
// Callers needing isolation (tests, embedded engines) construct their own
// policy and never touch the handle.
package scope
