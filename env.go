package sigil

import (
	"os"
	"strings"

	"github.com/randalmurphal/sigil/backend"
)

// EnvReader synthesizes the environment-overlay mapping for a provider. The
// overlay is rebuilt on every load so it always reflects the live process
// environment.
type EnvReader func(providerID string) backend.Mapping

// EnvVarName returns the environment variable that overrides key for a
// provider: SIGIL_<PROVIDER>_<KEY>, uppercased, with dots and dashes folded
// to underscores.
func EnvVarName(providerID, key string) string {
	return "SIGIL_" + envToken(providerID) + "_" + envToken(key)
}

// ReadEnv is the default EnvReader. Environment variables carrying the
// provider's SIGIL_<PROVIDER>_ prefix map to lowercase dotted keys; variables
// under the secret prefix belong to the secrets chain and are skipped.
func ReadEnv(providerID string) backend.Mapping {
	prefix := "SIGIL_" + envToken(providerID) + "_"
	out := make(backend.Mapping)
	for _, entry := range os.Environ() {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasPrefix(name, "SIGIL_SECRET_") {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, prefix))
		out[strings.ReplaceAll(key, "_", ".")] = value
	}
	return out
}

func envToken(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, ".", "_")
	return strings.ReplaceAll(s, "-", "_")
}
