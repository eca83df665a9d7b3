package backend

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryForPath(t *testing.T) {
	reg := Default()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "ini suffix", path: "/tmp/settings.ini"},
		{name: "json suffix", path: "/tmp/settings.json"},
		{name: "yaml suffix", path: "/tmp/settings.yaml"},
		{name: "yml suffix", path: "/tmp/settings.yml"},
		{name: "toml suffix", path: "/tmp/settings.toml"},
		{name: "uppercase suffix", path: "/tmp/SETTINGS.INI"},
		{name: "unknown suffix", path: "/tmp/settings.xml", wantErr: ErrUnsupportedFormat},
		{name: "no suffix", path: "/tmp/settings", wantErr: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.ForPath(tt.path)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ForPath(%q) = %v, want nil", tt.path, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ForPath(%q) = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	reg := NewRegistry()
	reg.Register(".ini", INIBackend{})
	reg.Register(".ini", JSONBackend{})

	b, err := reg.ForPath("x.ini")
	if err != nil {
		t.Fatalf("ForPath: %v", err)
	}
	if _, ok := b.(JSONBackend); !ok {
		t.Fatalf("expected replacement backend, got %T", b)
	}
}

func TestRoundTrip(t *testing.T) {
	mapping := Mapping{
		"db.host":            "localhost",
		"db.port":            "5432",
		"ui.color":           "blue",
		"ui.theme.contrast":  "high",
		"flat":               "value",
		"feature.enabled":    "true",
		"feature.ratio":      "0.25",
		"servers":            `["alpha", "beta"]`,
		"db.connect_timeout": "30",
		// A key coexisting with dotted children of itself must survive
		// every backend, not just INI.
		"cache":     "on",
		"cache.dir": "/tmp/cache",
	}

	backends := []struct {
		name string
		ext  string
		b    Backend
	}{
		{"ini", ".ini", INIBackend{}},
		{"json", ".json", JSONBackend{}},
		{"yaml", ".yaml", YAMLBackend{}},
		{"toml", ".toml", TOMLBackend{}},
	}

	for _, tc := range backends {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings"+tc.ext)
			if err := tc.b.Save(path, mapping); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := tc.b.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(got) != len(mapping) {
				t.Fatalf("Load returned %d keys, want %d: %v", len(got), len(mapping), got)
			}
			for k, want := range mapping {
				if got[k] != want {
					t.Errorf("key %q = %q, want %q", k, got[k], want)
				}
			}
		})
	}
}

func TestScalarAndChildKeysCoexist(t *testing.T) {
	mapping := Mapping{
		"a":     "scalar",
		"a.b":   "child",
		"a.b.c": "grandchild",
	}

	backends := []struct {
		name string
		ext  string
		b    Backend
	}{
		{"json", ".json", JSONBackend{}},
		{"yaml", ".yaml", YAMLBackend{}},
		{"toml", ".toml", TOMLBackend{}},
	}

	for _, tc := range backends {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings"+tc.ext)
			if err := tc.b.Save(path, mapping); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := tc.b.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			for k, want := range mapping {
				if got[k] != want {
					t.Errorf("round-trip lost key %q: got %v", k, got)
				}
			}
			if len(got) != len(mapping) {
				t.Errorf("Load returned %d keys, want %d: %v", len(got), len(mapping), got)
			}
		})
	}
}

func TestSaveIdempotent(t *testing.T) {
	mapping := Mapping{"db.host": "localhost", "db.port": "5432", "flat": "x"}

	backends := []struct {
		name string
		ext  string
		b    Backend
	}{
		{"ini", ".ini", INIBackend{}},
		{"json", ".json", JSONBackend{}},
		{"yaml", ".yaml", YAMLBackend{}},
		{"toml", ".toml", TOMLBackend{}},
	}

	for _, tc := range backends {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings"+tc.ext)
			if err := tc.b.Save(path, mapping); err != nil {
				t.Fatalf("first Save: %v", err)
			}
			first, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if err := tc.b.Save(path, mapping); err != nil {
				t.Fatalf("second Save: %v", err)
			}
			second, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(first) != string(second) {
				t.Errorf("repeated save changed file contents:\n--- first ---\n%s\n--- second ---\n%s", first, second)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()

	// Missing file in an existing directory.
	_, err := INIBackend{}.Load(filepath.Join(dir, "absent.ini"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing file: err = %v, want ErrNotFound", err)
	}

	// Missing parent directory is the same condition.
	_, err = INIBackend{}.Load(filepath.Join(dir, "no", "such", "dir", "absent.ini"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing parent: err = %v, want ErrNotFound", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		b       Backend
		content string
	}{
		{"json garbage", ".json", JSONBackend{}, "{not json"},
		{"json non-object", ".json", JSONBackend{}, `[1, 2, 3]`},
		{"yaml garbage", ".yaml", YAMLBackend{}, "{\n  : broken"},
		{"toml garbage", ".toml", TOMLBackend{}, "= no key"},
		{"ini garbage", ".ini", INIBackend{}, "[unclosed\nkey value without equals and section"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings"+tt.ext)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := tt.b.Load(path)
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("Load = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestSaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deeply", "nested", "settings.ini")
	if err := (INIBackend{}).Save(path, Mapping{"a.b": "1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := INIBackend{}.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["a.b"] != "1" {
		t.Errorf("a.b = %q, want %q", got["a.b"], "1")
	}
}

func TestInterruptedWriteKeepsOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.ini")
	b := INIBackend{}
	if err := b.Save(path, Mapping{"db.port": "5432"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	// A crash between temp-write and rename leaves a stray truncated temp
	// file next to the target. The original must survive untouched.
	stray := filepath.Join(filepath.Dir(path), ".settings.ini.tmp-deadbeef")
	if err := os.WriteFile(stray, []byte("[db]\npo"), 0o600); err != nil {
		t.Fatalf("write stray temp: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("original file changed by an interrupted write")
	}
	got, err := b.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["db.port"] != "5432" {
		t.Fatalf("db.port = %q after interrupted write", got["db.port"])
	}
}
