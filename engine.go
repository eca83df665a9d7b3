package sigil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/randalmurphal/sigil/backend"
	"github.com/randalmurphal/sigil/devlink"
	"github.com/randalmurphal/sigil/scope"
	"github.com/randalmurphal/sigil/secrets"
)

// secretPrefix marks keys that route to the secrets chain instead of the
// scope files.
const secretPrefix = "secret."

// Engine resolves effective configuration values for one provider under one
// scope policy. Engines snapshot their policy at construction; installing a
// new process-wide policy never affects a live engine.
//
// Engines are safe for concurrent use. Cross-process safety comes from the
// backends' atomic rename discipline, not from locking.
type Engine struct {
	provider  string
	policy    *scope.Policy
	backends  *backend.Registry
	envReader EnvReader
	chain     *secrets.Chain
	vault     *secrets.Vault
	logger    *slog.Logger

	// directEnv enables the SIGIL_<PROVIDER>_<KEY> live lookup for keys the
	// synthesized overlay mapping cannot name. Only the built-in reader
	// follows that convention.
	directEnv    bool
	chainSet     bool
	defaultsPath string

	mu    sync.Mutex
	cache map[string]backend.Mapping
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy pins the scope policy instead of using the installed process
// default.
func WithPolicy(p *scope.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithBackends replaces the backend registry.
func WithBackends(r *backend.Registry) Option {
	return func(e *Engine) { e.backends = r }
}

// WithEnvReader replaces the environment-overlay mapping function.
func WithEnvReader(fn EnvReader) Option {
	return func(e *Engine) { e.envReader = fn }
}

// WithSecrets replaces the secrets chain. Passing nil disables secret keys.
func WithSecrets(c *secrets.Chain) Option {
	return func(e *Engine) {
		e.chain = c
		e.chainSet = true
	}
}

// WithLogger sets the logger. nil falls back to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDefaultsPath pins the provider's shipped-defaults file instead of
// dev-link discovery. Ignored when WithPolicy supplies a policy or a
// process-wide policy is installed.
func WithDefaultsPath(path string) Option {
	return func(e *Engine) { e.defaultsPath = path }
}

// NormalizeProviderID returns the canonical provider identity: lowercase
// with runs of dots, dashes and underscores collapsed to a single dash.
func NormalizeProviderID(raw string) string {
	return scope.NormalizeProviderID(raw)
}

// New creates an engine for a provider. Without WithPolicy it uses the
// installed process policy, or builds the default project-over-user policy
// with dev-link discovery supplying the defaults scope.
func New(provider string, opts ...Option) (*Engine, error) {
	id := NormalizeProviderID(provider)
	if id == "" || id == "-" {
		return nil, fmt.Errorf("empty provider id")
	}

	e := &Engine{
		provider: id,
		cache:    make(map[string]backend.Mapping),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.backends == nil {
		e.backends = backend.Default()
	}
	if e.envReader == nil {
		e.envReader = ReadEnv
		e.directEnv = true
	}
	if e.policy == nil {
		e.policy = scope.Installed()
	}
	if e.policy == nil {
		resolver := defaultsResolver()
		if e.defaultsPath != "" {
			pinned := e.defaultsPath
			resolver = func(string) (string, error) { return pinned, nil }
		}
		p, err := scope.DefaultPolicy(scope.WithDefaultsResolver(resolver))
		if err != nil {
			return nil, fmt.Errorf("build default policy: %w", err)
		}
		e.policy = p
	}
	if e.chain == nil && !e.chainSet {
		chain, vault, err := defaultChain(id, e.logger)
		if err != nil {
			return nil, err
		}
		e.chain = chain
		e.vault = vault
	}
	return e, nil
}

// defaultsResolver adapts the dev-link registry into a scope path resolver.
// A provider without a link simply has an empty defaults scope.
func defaultsResolver() scope.PathFunc {
	return func(provider string) (string, error) {
		reg, err := devlink.Open("")
		if err != nil {
			return "", err
		}
		path, err := reg.Resolve(provider)
		if errors.Is(err, devlink.ErrNotLinked) {
			return "", nil
		}
		return path, err
	}
}

// defaultChain builds the built-in secret chain: OS keyring, encrypted file
// vault next to the user settings, environment variables. The vault unlocks
// eagerly from SIGIL_MASTER_PWD when set.
func defaultChain(provider string, logger *slog.Logger) (*secrets.Chain, *secrets.Vault, error) {
	base, err := scope.UserConfigDir()
	if err != nil {
		return nil, nil, fmt.Errorf("locate user config dir: %w", err)
	}
	vault := secrets.NewVault(filepath.Join(base, provider, "vault.enc.json"), logger)
	if _, err := vault.UnlockFromEnv(); err != nil {
		logger.Warn("vault passphrase from environment rejected", "error", err)
	}
	chain := secrets.NewChain(logger,
		secrets.NewKeyringProvider(""),
		vault,
		secrets.NewEnvProvider(provider),
	)
	return chain, vault, nil
}

// Provider returns the normalized provider identity.
func (e *Engine) Provider() string { return e.provider }

// Policy returns the engine's scope policy.
func (e *Engine) Policy() *scope.Policy { return e.policy }

// Secrets returns the engine's secret chain, or nil.
func (e *Engine) Secrets() *secrets.Chain { return e.chain }

// Vault returns the engine's vault provider when the default chain is in
// use, or nil.
func (e *Engine) Vault() *secrets.Vault { return e.vault }

// Get returns the effective value for a key: the raw value from the highest
// precedence scope that defines it, passed through the automatic cast chain.
// Keys under "secret." consult the secrets chain instead. Get fails with
// ErrKeyNotFound when nothing defines the key.
func (e *Engine) Get(key string) (any, error) {
	if name, ok := strings.CutPrefix(key, secretPrefix); ok {
		raw, err := e.secret(name)
		if err != nil {
			return nil, err
		}
		return autoCast(raw), nil
	}
	raw, _, err := e.lookup(key)
	if err != nil {
		return nil, err
	}
	return autoCast(raw), nil
}

// GetOr returns the effective value, or fallback when no scope defines the
// key. Other failures (corrupt file, unsupported format) still propagate.
func (e *Engine) GetOr(key string, fallback any) (any, error) {
	v, err := e.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return fallback, nil
	}
	return v, err
}

// GetString returns the raw effective value without casting.
func (e *Engine) GetString(key string) (string, error) {
	if name, ok := strings.CutPrefix(key, secretPrefix); ok {
		return e.secret(name)
	}
	raw, _, err := e.lookup(key)
	return raw, err
}

// GetInt returns the effective value as an int64, or a CastError.
func (e *Engine) GetInt(key string) (int64, error) {
	raw, err := e.GetString(key)
	if err != nil {
		return 0, err
	}
	v, ok := autoCast(raw).(int64)
	if !ok {
		return 0, &CastError{Key: key, Value: raw, Want: "integer"}
	}
	return v, nil
}

// GetFloat returns the effective value as a float64, or a CastError.
// Integer values widen.
func (e *Engine) GetFloat(key string) (float64, error) {
	raw, err := e.GetString(key)
	if err != nil {
		return 0, err
	}
	switch v := autoCast(raw).(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, &CastError{Key: key, Value: raw, Want: "float"}
	}
}

// GetBool returns the effective value as a bool, or a CastError.
func (e *Engine) GetBool(key string) (bool, error) {
	raw, err := e.GetString(key)
	if err != nil {
		return false, err
	}
	v, ok := parseBool(raw)
	if !ok {
		return false, &CastError{Key: key, Value: raw, Want: "boolean"}
	}
	return v, nil
}

// Set writes a value to a scope. It fails with ErrNotWritable for read-only
// scopes (defaults, env overlay) without touching disk, and persists
// atomically otherwise. Only the written scope's cache entry is invalidated.
// Secret-prefixed keys route to the secrets chain and ignore scopeID.
func (e *Engine) Set(key string, value any, scopeID string) error {
	if name, ok := strings.CutPrefix(key, secretPrefix); ok {
		if e.chain == nil {
			return ErrNoSecrets
		}
		return e.chain.Set(name, formatValue(value))
	}

	sc, path, b, err := e.writableTarget(scopeID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.loadForWrite(b, path)
	if err != nil {
		return err
	}
	current[key] = formatValue(value)
	if err := b.Save(path, current); err != nil {
		return fmt.Errorf("save scope %q: %w", sc.ID, err)
	}
	delete(e.cache, sc.ID)
	return nil
}

// Clear removes a key from a scope if present; clearing an absent key is not
// an error. Presence in the scope's own mapping is what matters: a value
// equal to a lower scope's value is still present and still removable.
func (e *Engine) Clear(key, scopeID string) error {
	sc, path, b, err := e.writableTarget(scopeID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.loadForWrite(b, path)
	if err != nil {
		return err
	}
	if _, ok := current[key]; !ok {
		return nil
	}
	delete(current, key)
	if err := b.Save(path, current); err != nil {
		return fmt.Errorf("save scope %q: %w", sc.ID, err)
	}
	delete(e.cache, sc.ID)
	return nil
}

// Keys returns the keys defined in one scope, sorted.
func (e *Engine) Keys(scopeID string) ([]string, error) {
	sc, ok := e.policy.Lookup(scopeID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", scope.ErrUnknownScope, scopeID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	m, err := e.scopeMapping(sc)
	if err != nil {
		return nil, err
	}
	return m.Keys(), nil
}

// ScopedValues returns a snapshot of every scope's mapping, keyed by scope id.
func (e *Engine) ScopedValues() (map[string]backend.Mapping, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]backend.Mapping, len(e.policy.Scopes()))
	for _, sc := range e.policy.Scopes() {
		m, err := e.scopeMapping(sc)
		if err != nil {
			return nil, err
		}
		out[sc.ID] = m.Clone()
	}
	return out, nil
}

// Origin returns the id of the scope supplying the effective value for a
// key, or ErrKeyNotFound.
func (e *Engine) Origin(key string) (string, error) {
	_, origin, err := e.lookup(key)
	return origin, err
}

// ExportEnv renders every effective non-secret value as environment variable
// assignments in the SIGIL_<PROVIDER>_<KEY> convention, for handing a
// resolved configuration to a child process or CI step.
func (e *Engine) ExportEnv() (map[string]string, error) {
	values, err := e.ScopedValues()
	if err != nil {
		return nil, err
	}

	keys := make(map[string]bool)
	for _, m := range values {
		for k := range m {
			if !strings.HasPrefix(k, secretPrefix) {
				keys[k] = true
			}
		}
	}

	out := make(map[string]string, len(keys))
	for k := range keys {
		raw, _, err := e.lookup(k)
		if err != nil {
			if errors.Is(err, ErrKeyNotFound) {
				continue
			}
			return nil, err
		}
		out[EnvVarName(e.provider, k)] = raw
	}
	return out, nil
}

// InvalidateCache drops all cached scope mappings, forcing a reload on next
// access. Call it after settings files change behind the engine's back.
func (e *Engine) InvalidateCache() {
	e.mu.Lock()
	e.cache = make(map[string]backend.Mapping)
	e.mu.Unlock()
}

// lookup scans scopes highest precedence first and returns the first raw hit
// and the scope that supplied it.
func (e *Engine) lookup(key string) (raw, origin string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, sc := range e.policy.Scopes() {
		m, err := e.scopeMapping(sc)
		if err != nil {
			return "", "", err
		}
		if v, ok := m[key]; ok {
			return v, sc.ID, nil
		}
		// The default overlay mapping cannot represent keys containing
		// underscores or dashes (both fold to "_" in the variable name);
		// check the live variable directly before moving past the env
		// scope.
		if sc.Kind == scope.Overlay && e.directEnv && strings.ContainsAny(key, "_-") {
			if v, ok := os.LookupEnv(EnvVarName(e.provider, key)); ok {
				return v, sc.ID, nil
			}
		}
	}
	return "", "", fmt.Errorf("%q: %w", key, ErrKeyNotFound)
}

// scopeMapping returns the mapping for one scope, loading and caching file
// scopes and synthesizing overlays fresh. Callers hold e.mu.
func (e *Engine) scopeMapping(sc scope.Scope) (backend.Mapping, error) {
	if sc.Kind == scope.Overlay {
		return e.envReader(e.provider), nil
	}
	if m, ok := e.cache[sc.ID]; ok {
		return m, nil
	}

	path, err := e.policy.ResolvePath(sc.ID, e.provider)
	if err != nil {
		return nil, fmt.Errorf("resolve scope %q: %w", sc.ID, err)
	}
	m := make(backend.Mapping)
	if path != "" {
		b, err := e.backends.ForPath(path)
		if err != nil {
			return nil, err
		}
		loaded, err := b.Load(path)
		switch {
		case errors.Is(err, backend.ErrNotFound):
			e.logger.Debug("scope file absent, treating as empty",
				"scope", sc.ID, "path", path)
		case err != nil:
			return nil, fmt.Errorf("load scope %q: %w", sc.ID, err)
		default:
			m = loaded
		}
	}
	e.cache[sc.ID] = m
	return m, nil
}

// writableTarget validates a write against the policy and resolves the
// target file and backend. The writability check happens before any disk
// access.
func (e *Engine) writableTarget(scopeID string) (scope.Scope, string, backend.Backend, error) {
	sc, ok := e.policy.Lookup(scopeID)
	if !ok {
		return scope.Scope{}, "", nil, fmt.Errorf("%w: %q", scope.ErrUnknownScope, scopeID)
	}
	if !sc.Writable || sc.Kind == scope.Overlay {
		return scope.Scope{}, "", nil, fmt.Errorf("scope %q: %w", scopeID, ErrNotWritable)
	}
	path, err := e.policy.ResolvePath(sc.ID, e.provider)
	if err != nil {
		return scope.Scope{}, "", nil, fmt.Errorf("resolve scope %q: %w", sc.ID, err)
	}
	if path == "" {
		return scope.Scope{}, "", nil, fmt.Errorf("scope %q: %w", scopeID, ErrNoScopePath)
	}
	b, err := e.backends.ForPath(path)
	if err != nil {
		return scope.Scope{}, "", nil, err
	}
	return sc, path, b, nil
}

// loadForWrite reads the target scope's current contents before a mutation.
// A missing file starts empty; a corrupt file aborts the write rather than
// clobbering data. Callers hold e.mu.
func (e *Engine) loadForWrite(b backend.Backend, path string) (backend.Mapping, error) {
	current, err := b.Load(path)
	if errors.Is(err, backend.ErrNotFound) {
		return make(backend.Mapping), nil
	}
	if err != nil {
		return nil, err
	}
	return current, nil
}

// secret fetches a secret (key already stripped of the "secret." prefix).
func (e *Engine) secret(name string) (string, error) {
	if e.chain == nil {
		return "", ErrNoSecrets
	}
	value, err := e.chain.Get(name)
	if errors.Is(err, secrets.ErrNotFound) {
		return "", fmt.Errorf("%s%s: %w", secretPrefix, name, ErrKeyNotFound)
	}
	return value, err
}
