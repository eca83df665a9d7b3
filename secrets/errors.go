package secrets

import "errors"

// Secret chain errors.
var (
	// ErrNotFound indicates no provider in the chain holds the secret.
	ErrNotFound = errors.New("secret not found")

	// ErrVaultLocked indicates a vault operation before Unlock.
	ErrVaultLocked = errors.New("vault is locked")

	// ErrVaultCorrupt indicates the vault file could not be parsed or
	// authenticated decryption failed structurally.
	ErrVaultCorrupt = errors.New("vault file is corrupt")

	// ErrBadPassphrase indicates the passphrase failed to decrypt the vault.
	ErrBadPassphrase = errors.New("passphrase does not unlock the vault")

	// ErrReadOnly indicates a write against a read-only provider.
	ErrReadOnly = errors.New("secret provider is read-only")

	// ErrUnavailable indicates the provider cannot be used at runtime
	// (e.g. no OS keyring on a headless host). The chain skips past it.
	ErrUnavailable = errors.New("secret provider unavailable")

	// ErrNoWritableProvider indicates no provider in the chain accepts writes.
	ErrNoWritableProvider = errors.New("no write-capable secret provider")

	// ErrUnknownProvider indicates a pinned provider name is not in the chain.
	ErrUnknownProvider = errors.New("unknown secret provider")
)
