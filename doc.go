// Package sigil resolves layered configuration for a named provider (an
// application or package) from multiple scopes under a deterministic
// precedence policy: shipped defaults, user and project settings,
// machine-local overrides, environment variables and an optional secrets
// chain.
//
// The package is organized into subpackages by domain:
//
//   - scope: scope descriptors, precedence policies, path resolution
//   - backend: per-format load/save with atomic persistence
//   - secrets: ordered secret-provider chain (keyring, vault, env)
//   - devlink: dev-link discovery of a provider's defaults file
//
// # Quick Start
//
//	eng, err := sigil.New("my-app")
//	if err != nil { ... }
//
//	port, err := eng.GetInt("db.port")   // first scope that defines it wins
//	err = eng.Set("db.port", 6000, scope.ScopeUser)
//	err = eng.Clear("db.port", scope.ScopeUser)
//
// Values read from files are raw strings; Get applies an ordered cast chain
// (int, float, bool, JSON, string) unless a typed getter pins the cast.
//
// # Precedence
//
// The default policy, highest precedence first: environment overlay,
// project-local, project, user-local, user, defaults. Environment variables
// follow the SIGIL_<PROVIDER>_<KEY> convention, so with provider "demo"
//
//	SIGIL_DEMO_UI_COLOR=blue
//
// overrides the "ui.color" key from any file. Replace the order by
// constructing a policy with the scope package and passing WithPolicy.
//
// # Secrets
//
// Keys under the reserved "secret." prefix never touch settings files; they
// route to the secrets chain (OS keyring, encrypted vault, environment).
// See the secrets package.
package sigil
