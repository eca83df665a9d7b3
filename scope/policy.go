package scope

import (
	"path/filepath"
	"sync"
)

// PolicyOption adjusts how the built-in policies resolve paths.
type PolicyOption func(*policyConfig)

type policyConfig struct {
	userDir     string
	projectDir  string
	host        string
	defaultPath PathFunc
}

// WithUserDir overrides the user-scope base directory (default: UserConfigDir).
func WithUserDir(dir string) PolicyOption {
	return func(c *policyConfig) { c.userDir = dir }
}

// WithProjectDir pins the project root instead of detecting it from the
// working directory.
func WithProjectDir(dir string) PolicyOption {
	return func(c *policyConfig) { c.projectDir = dir }
}

// WithHost overrides the machine-affinity host suffix (default: HostID).
func WithHost(host string) PolicyOption {
	return func(c *policyConfig) { c.host = host }
}

// WithDefaultsResolver supplies the resolver that locates a provider's
// shipped defaults file. Without one the default scope resolves empty.
func WithDefaultsResolver(fn PathFunc) PolicyOption {
	return func(c *policyConfig) { c.defaultPath = fn }
}

func buildConfig(opts []PolicyOption) *policyConfig {
	c := &policyConfig{host: HostID()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *policyConfig) userPath(provider, file string) (string, error) {
	base := c.userDir
	if base == "" {
		dir, err := UserConfigDir()
		if err != nil {
			return "", err
		}
		base = dir
	}
	return filepath.Join(base, provider, file), nil
}

func (c *policyConfig) projectPath(provider, file string) (string, error) {
	root := c.projectDir
	if root == "" {
		found, err := FindProjectRoot(".")
		if err != nil {
			// Outside a project the scope simply has no backing file.
			return "", nil
		}
		root = found
	}
	return filepath.Join(root, ".sigil", provider, file), nil
}

func (c *policyConfig) localFile() string {
	return "settings-local-" + c.host + ".ini"
}

// DefaultPolicy returns the standard project-over-user policy, highest
// precedence first: env, project-local, project, user-local, user, default.
func DefaultPolicy(opts ...PolicyOption) (*Policy, error) {
	c := buildConfig(opts)
	return NewPolicy(
		Scope{ID: ScopeEnv, Kind: Overlay},
		Scope{ID: ScopeProjectLocal, Writable: true, Machine: true, Path: func(p string) (string, error) {
			return c.projectPath(p, c.localFile())
		}},
		Scope{ID: ScopeProject, Writable: true, Path: func(p string) (string, error) {
			return c.projectPath(p, settingsFile)
		}},
		Scope{ID: ScopeUserLocal, Writable: true, Machine: true, Path: func(p string) (string, error) {
			return c.userPath(p, c.localFile())
		}},
		Scope{ID: ScopeUser, Writable: true, Path: func(p string) (string, error) {
			return c.userPath(p, settingsFile)
		}},
		Scope{ID: ScopeDefault, Path: func(p string) (string, error) {
			if c.defaultPath == nil {
				return "", nil
			}
			return c.defaultPath(p)
		}},
	)
}

// UserWinsPolicy is DefaultPolicy with the user scopes promoted above the
// project scopes.
func UserWinsPolicy(opts ...PolicyOption) (*Policy, error) {
	p, err := DefaultPolicy(opts...)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Scope, len(p.scopes))
	for _, s := range p.scopes {
		byID[s.ID] = s
	}
	return NewPolicy(
		byID[ScopeEnv],
		byID[ScopeUserLocal],
		byID[ScopeUser],
		byID[ScopeProjectLocal],
		byID[ScopeProject],
		byID[ScopeDefault],
	)
}

// The process-wide policy handle. Explicitly installed, explicitly replaced;
// engines snapshot it at construction so installing a new policy never
// affects an existing resolution session.
var (
	installedMu sync.RWMutex
	installed   *Policy
)

// Install replaces the process-wide default policy.
func Install(p *Policy) {
	installedMu.Lock()
	installed = p
	installedMu.Unlock()
}

// Installed returns the process-wide default policy, or nil if none was
// installed.
func Installed() *Policy {
	installedMu.RLock()
	defer installedMu.RUnlock()
	return installed
}
