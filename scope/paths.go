package scope

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const settingsFile = "settings.ini"

var normalizeRx = regexp.MustCompile(`[-_.]+`)

// NormalizeProviderID returns the canonical form of a provider identity:
// lowercase, with runs of dots, dashes and underscores collapsed to a single
// dash. Two spellings of the same distribution name normalize identically.
func NormalizeProviderID(raw string) string {
	return normalizeRx.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "-")
}

// HostID returns the normalized local host name used as the filename suffix
// for machine-affinity scopes.
func HostID() string {
	raw, err := os.Hostname()
	if err != nil || raw == "" {
		return "unknown-host"
	}
	host := NormalizeProviderID(raw)
	// Hostnames may contain characters outside the provider-id alphabet.
	var b strings.Builder
	for _, r := range host {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// UserConfigDir returns the base directory for user-scope settings,
// ~/.config/sigil by default. SIGIL_USER_CONFIG_DIR overrides it, which
// tests and sandboxed environments rely on.
func UserConfigDir() (string, error) {
	if dir := os.Getenv("SIGIL_USER_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "sigil"), nil
}

// FindProjectRoot walks up from start looking for a project marker: a
// .sigil-root sentinel file, a .sigil directory, or a .git directory.
// SIGIL_ROOT overrides detection entirely. It returns ErrNoProjectRoot when
// nothing matches.
func FindProjectRoot(start string) (string, error) {
	if env := os.Getenv("SIGIL_ROOT"); env != "" {
		return filepath.Clean(env), nil
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ".sigil-root")); err == nil && !info.IsDir() {
			return dir, nil
		}
		if info, err := os.Stat(filepath.Join(dir, ".sigil")); err == nil && info.IsDir() {
			return dir, nil
		}
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}
