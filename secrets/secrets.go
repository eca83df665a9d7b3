package secrets

import (
	"errors"
	"fmt"
	"log/slog"
)

// Status tags the outcome of a provider lookup.
type Status int

// Lookup outcomes.
const (
	// Miss means the provider is reachable but does not hold the key.
	Miss Status = iota

	// Hit means the provider returned a value.
	Hit

	// Unavailable means the provider cannot currently be consulted; the
	// chain skips it.
	Unavailable
)

// Result is the tagged outcome of a provider lookup.
type Result struct {
	Status Status
	Value  string
}

// Provider is one secret backend in the chain.
type Provider interface {
	// Name identifies the provider for pinning and logging.
	Name() string

	// Lookup returns the tagged result for a key. Implementations report
	// infrastructure problems as Unavailable, not as errors.
	Lookup(key string) Result

	// Store persists a secret. Read-only providers return ErrReadOnly;
	// providers that cannot currently write return ErrUnavailable or a
	// state error such as ErrVaultLocked.
	Store(key, value string) error

	// Writable reports whether Store can currently succeed.
	Writable() bool
}

// Chain consults providers in order: get returns the first hit, set targets
// the first writable provider unless pinned.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain builds a chain over providers in precedence order. A nil logger
// falls back to slog.Default().
func NewChain(logger *slog.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{providers: providers, logger: logger}
}

// Providers returns the provider names in precedence order.
func (c *Chain) Providers() []string {
	out := make([]string, len(c.providers))
	for i, p := range c.providers {
		out[i] = p.Name()
	}
	return out
}

// Get returns the first hit across the chain, or ErrNotFound.
func (c *Chain) Get(key string) (string, error) {
	for _, p := range c.providers {
		res := p.Lookup(key)
		switch res.Status {
		case Hit:
			return res.Value, nil
		case Unavailable:
			c.logger.Debug("secret provider unavailable", "provider", p.Name())
		}
	}
	return "", fmt.Errorf("%q: %w", key, ErrNotFound)
}

// Set stores the secret in the first provider that accepts it. Providers that
// report themselves unwritable or fail with ErrUnavailable are skipped.
func (c *Chain) Set(key, value string) error {
	for _, p := range c.providers {
		if !p.Writable() {
			continue
		}
		err := p.Store(key, value)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrUnavailable) {
			c.logger.Debug("secret provider rejected write", "provider", p.Name())
			continue
		}
		return fmt.Errorf("store %q in %s: %w", key, p.Name(), err)
	}
	return ErrNoWritableProvider
}

// SetAt stores the secret in the named provider, bypassing the scan.
func (c *Chain) SetAt(providerName, key, value string) error {
	for _, p := range c.providers {
		if p.Name() != providerName {
			continue
		}
		if err := p.Store(key, value); err != nil {
			return fmt.Errorf("store %q in %s: %w", key, providerName, err)
		}
		return nil
	}
	return fmt.Errorf("%q: %w", providerName, ErrUnknownProvider)
}

// Writable reports whether any provider currently accepts writes.
func (c *Chain) Writable() bool {
	for _, p := range c.providers {
		if p.Writable() {
			return true
		}
	}
	return false
}

// Unlock forwards the passphrase to every provider that supports unlocking
// (the vault). The first failure is returned.
func (c *Chain) Unlock(passphrase []byte) error {
	type unlocker interface {
		Unlock(passphrase []byte) error
	}
	for _, p := range c.providers {
		u, ok := p.(unlocker)
		if !ok {
			continue
		}
		if err := u.Unlock(passphrase); err != nil {
			return fmt.Errorf("unlock %s: %w", p.Name(), err)
		}
	}
	return nil
}
