package secrets

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name under which secrets are filed in the
// OS keyring.
const KeyringService = "sigil"

// KeyringProvider stores secrets in the operating system keyring. On headless
// hosts without a keyring daemon every call fails; the provider reports that
// as Unavailable so the chain falls through to the next backend.
type KeyringProvider struct {
	service string
}

// NewKeyringProvider creates a keyring provider. An empty service uses
// KeyringService.
func NewKeyringProvider(service string) *KeyringProvider {
	if service == "" {
		service = KeyringService
	}
	return &KeyringProvider{service: service}
}

// Name implements Provider.
func (k *KeyringProvider) Name() string { return "keyring" }

// Lookup implements Provider.
func (k *KeyringProvider) Lookup(key string) Result {
	value, err := keyring.Get(k.service, key)
	switch {
	case err == nil:
		return Result{Status: Hit, Value: value}
	case errors.Is(err, keyring.ErrNotFound):
		return Result{Status: Miss}
	default:
		// Daemon missing, D-Bus unreachable, or platform unsupported.
		return Result{Status: Unavailable}
	}
}

// Store implements Provider. Platform failures surface as ErrUnavailable so
// the chain can redirect the write to the next provider.
func (k *KeyringProvider) Store(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// Writable implements Provider. Whether the keyring accepts writes is only
// known by trying; Store reports ErrUnavailable when it cannot.
func (k *KeyringProvider) Writable() bool { return true }
