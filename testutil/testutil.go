// Package testutil provides helpers for testing scope resolution: temp
// settings trees, shipped-defaults fixtures and quiet loggers.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/sigil/scope"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WriteFile writes contents to path, creating parent directories.
func WriteFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// DefaultsFile writes an INI defaults fixture into a temp directory and
// returns its path.
func DefaultsFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "defaults.ini")
	WriteFile(t, path, contents)
	return path
}

// Settings writes a provider settings file under dir and returns its path.
func Settings(t *testing.T, dir, provider, file, contents string) string {
	t.Helper()
	path := filepath.Join(dir, provider, file)
	WriteFile(t, path, contents)
	return path
}

// Policy builds the standard policy over temp user and project directories
// with a fixed host, suitable for hermetic tests. Extra options append after
// the temp-dir defaults so callers can override any of them.
func Policy(t *testing.T, opts ...scope.PolicyOption) *scope.Policy {
	t.Helper()
	base := []scope.PolicyOption{
		scope.WithUserDir(t.TempDir()),
		scope.WithProjectDir(t.TempDir()),
		scope.WithHost("testhost"),
	}
	p, err := scope.DefaultPolicy(append(base, opts...)...)
	if err != nil {
		t.Fatalf("build test policy: %v", err)
	}
	return p
}
