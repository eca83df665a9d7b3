package secrets

import (
	"os"
	"strings"
)

// EnvProvider reads secrets from environment variables of the form
// SIGIL_SECRET_<PROVIDER>_<KEY>, with the provider id and key uppercased and
// dots and dashes replaced by underscores. It is read-only and intended for
// CI environments.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates an environment secret provider for a provider
// identity (already normalized).
func NewEnvProvider(providerID string) *EnvProvider {
	return &EnvProvider{prefix: "SIGIL_SECRET_" + envToken(providerID) + "_"}
}

// Name implements Provider.
func (e *EnvProvider) Name() string { return "env" }

// Lookup implements Provider.
func (e *EnvProvider) Lookup(key string) Result {
	value, ok := os.LookupEnv(e.prefix + envToken(key))
	if !ok {
		return Result{Status: Miss}
	}
	return Result{Status: Hit, Value: value}
}

// Store implements Provider.
func (e *EnvProvider) Store(key, value string) error {
	return ErrReadOnly
}

// Writable implements Provider.
func (e *EnvProvider) Writable() bool { return false }

// envToken uppercases s and folds dots and dashes to underscores.
func envToken(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, ".", "_")
	return strings.ReplaceAll(s, "-", "_")
}
