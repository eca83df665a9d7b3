package scope

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testScopes() []Scope {
	return []Scope{
		{ID: ScopeEnv, Kind: Overlay},
		{ID: ScopeProject, Writable: true, Path: func(p string) (string, error) {
			return filepath.Join("/proj/.sigil", p, "settings.ini"), nil
		}},
		{ID: ScopeUser, Writable: true, Path: func(p string) (string, error) {
			return filepath.Join("/home/u/.config/sigil", p, "settings.ini"), nil
		}},
		{ID: ScopeDefault, Path: func(p string) (string, error) {
			return filepath.Join("/pkg", p, "settings.ini"), nil
		}},
	}
}

func TestNewPolicyValidation(t *testing.T) {
	tests := []struct {
		name    string
		scopes  []Scope
		wantErr error
	}{
		{
			name:    "no scopes",
			scopes:  nil,
			wantErr: ErrNoScopes,
		},
		{
			name: "duplicate id",
			scopes: []Scope{
				{ID: "user", Writable: true},
				{ID: "user", Writable: true},
				{ID: ScopeDefault},
			},
			wantErr: ErrDuplicateScope,
		},
		{
			name: "missing default scope",
			scopes: []Scope{
				{ID: "user", Writable: true},
				{ID: "project", Writable: true},
			},
			wantErr: ErrNoDefaultScope,
		},
		{
			name:   "valid policy",
			scopes: testScopes(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPolicy(tt.scopes...)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewPolicy: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewPolicy = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewPolicyRejectsWritableDefault(t *testing.T) {
	_, err := NewPolicy(Scope{ID: ScopeDefault, Writable: true})
	if err == nil {
		t.Fatal("expected error for writable default scope")
	}
}

func TestPolicyOrderIsPrecedence(t *testing.T) {
	p, err := NewPolicy(testScopes()...)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	want := []string{ScopeEnv, ScopeProject, ScopeUser, ScopeDefault}
	got := p.IDs()
	if len(got) != len(want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPolicyCanWrite(t *testing.T) {
	p, err := NewPolicy(testScopes()...)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	tests := []struct {
		id      string
		want    bool
		wantErr error
	}{
		{id: ScopeUser, want: true},
		{id: ScopeProject, want: true},
		{id: ScopeEnv, want: false},
		{id: ScopeDefault, want: false},
		{id: "bogus", wantErr: ErrUnknownScope},
	}

	for _, tt := range tests {
		got, err := p.CanWrite(tt.id)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CanWrite(%q) err = %v, want %v", tt.id, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("CanWrite(%q): %v", tt.id, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CanWrite(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestPolicyResolvePath(t *testing.T) {
	p, err := NewPolicy(testScopes()...)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	path, err := p.ResolvePath(ScopeUser, "demo")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if want := filepath.Join("/home/u/.config/sigil", "demo", "settings.ini"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	if _, err := p.ResolvePath(ScopeEnv, "demo"); !errors.Is(err, ErrOverlayScope) {
		t.Errorf("overlay path err = %v, want ErrOverlayScope", err)
	}
	if _, err := p.ResolvePath("bogus", "demo"); !errors.Is(err, ErrUnknownScope) {
		t.Errorf("unknown scope err = %v, want ErrUnknownScope", err)
	}
}

func TestWithScopesDoesNotMutate(t *testing.T) {
	p, err := NewPolicy(testScopes()...)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	extra := Scope{ID: "site", Writable: true, Path: func(string) (string, error) {
		return "/etc/site/settings.ini", nil
	}}
	next, err := p.WithScopes([]Scope{extra}, ScopeProject)
	if err != nil {
		t.Fatalf("WithScopes: %v", err)
	}

	// New policy: added scope first, removed scope gone.
	gotIDs := next.IDs()
	wantIDs := []string{"site", ScopeEnv, ScopeUser, ScopeDefault}
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Fatalf("next.IDs() = %v, want %v", gotIDs, wantIDs)
		}
	}

	// Original policy unchanged.
	if len(p.IDs()) != 4 {
		t.Errorf("original policy mutated: %v", p.IDs())
	}
	if _, ok := p.Lookup(ScopeProject); !ok {
		t.Error("original policy lost its project scope")
	}
}

func TestDefaultPolicyMachinePaths(t *testing.T) {
	p, err := DefaultPolicy(
		WithUserDir("/u/cfg"),
		WithProjectDir("/proj"),
		WithHost("buildbox"),
	)
	if err != nil {
		t.Fatalf("DefaultPolicy: %v", err)
	}

	tests := []struct {
		id   string
		want string
	}{
		{ScopeUser, filepath.Join("/u/cfg", "demo", "settings.ini")},
		{ScopeUserLocal, filepath.Join("/u/cfg", "demo", "settings-local-buildbox.ini")},
		{ScopeProject, filepath.Join("/proj", ".sigil", "demo", "settings.ini")},
		{ScopeProjectLocal, filepath.Join("/proj", ".sigil", "demo", "settings-local-buildbox.ini")},
	}
	for _, tt := range tests {
		got, err := p.ResolvePath(tt.id, "demo")
		if err != nil {
			t.Errorf("ResolvePath(%s): %v", tt.id, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolvePath(%s) = %q, want %q", tt.id, got, tt.want)
		}
	}

	// Machine scopes are flagged.
	for _, id := range []string{ScopeUserLocal, ScopeProjectLocal} {
		s, ok := p.Lookup(id)
		if !ok || !s.Machine {
			t.Errorf("scope %s should be machine-affine", id)
		}
	}
}

func TestUserWinsPolicyOrder(t *testing.T) {
	p, err := UserWinsPolicy(WithUserDir("/u/cfg"), WithProjectDir("/proj"))
	if err != nil {
		t.Fatalf("UserWinsPolicy: %v", err)
	}
	want := []string{ScopeEnv, ScopeUserLocal, ScopeUser, ScopeProjectLocal, ScopeProject, ScopeDefault}
	got := p.IDs()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", got, want)
		}
	}
}

func TestDefaultPolicyOutsideProject(t *testing.T) {
	// Force detection to fail by starting from a bare temp dir.
	t.Setenv("SIGIL_ROOT", "")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	p, err := DefaultPolicy(WithUserDir("/u/cfg"))
	if err != nil {
		t.Fatalf("DefaultPolicy: %v", err)
	}
	path, err := p.ResolvePath(ScopeProject, "demo")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path outside a project, got %q", path)
	}
}

func TestNormalizeProviderID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Demo", "demo"},
		{"my_package", "my-package"},
		{"My..Odd__Name", "my-odd-name"},
		{"  spaced  ", "spaced"},
		{"already-normal", "already-normal"},
	}
	for _, tt := range tests {
		if got := NormalizeProviderID(tt.in); got != tt.want {
			t.Errorf("NormalizeProviderID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindProjectRoot(t *testing.T) {
	t.Setenv("SIGIL_ROOT", "")

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ".sigil-root"), nil, 0o644); err != nil {
		t.Fatalf("write sentinel: %v", err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	// Resolve symlinks: on some systems TempDir is behind a symlink.
	if !strings.HasSuffix(got, filepath.Base(root)) {
		t.Errorf("FindProjectRoot = %q, want suffix %q", got, filepath.Base(root))
	}

	t.Setenv("SIGIL_ROOT", "/pinned/root")
	got, err = FindProjectRoot(nested)
	if err != nil || got != "/pinned/root" {
		t.Errorf("FindProjectRoot with SIGIL_ROOT = %q, %v", got, err)
	}
}
