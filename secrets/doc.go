// Package secrets provides the ordered secret-provider chain used for
// sensitive configuration values.
//
// A Chain consults providers in order and returns the first hit; writes go to
// the first provider that currently accepts them, unless the caller pins one.
// Provider lookups return a tagged Result (Hit, Miss or Unavailable) so the
// fallback scan is plain data flow: an unreachable OS keyring or a locked
// vault is a skip, never an abort.
//
// The built-in order, highest trust first:
//
//  1. OS keyring (zalando/go-keyring): may be unavailable on headless
//     hosts; treated as a soft failure.
//  2. Encrypted file vault: scrypt-derived key, AES-256-GCM, explicit
//     Locked/Unlocked state. See Vault.
//  3. Environment variables: read-only, SIGIL_SECRET_<PROVIDER>_<KEY>,
//     intended for CI.
//
// The chain is independent of the scope policy but follows the same ordered
// explicit-precedence idiom.
package secrets
