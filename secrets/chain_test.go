package secrets

import (
	"errors"
	"testing"
)

// stubProvider is a scriptable in-memory provider.
type stubProvider struct {
	name        string
	values      map[string]string
	unavailable bool
	readOnly    bool
	stores      int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Lookup(key string) Result {
	if s.unavailable {
		return Result{Status: Unavailable}
	}
	if v, ok := s.values[key]; ok {
		return Result{Status: Hit, Value: v}
	}
	return Result{Status: Miss}
}

func (s *stubProvider) Store(key, value string) error {
	if s.unavailable {
		return ErrUnavailable
	}
	if s.readOnly {
		return ErrReadOnly
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	s.stores++
	return nil
}

func (s *stubProvider) Writable() bool { return !s.readOnly }

func TestChainGetFirstHit(t *testing.T) {
	first := &stubProvider{name: "first", values: map[string]string{"token": "aaa"}}
	second := &stubProvider{name: "second", values: map[string]string{"token": "bbb", "other": "ccc"}}
	chain := NewChain(nil, first, second)

	got, err := chain.Get("token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "aaa" {
		t.Errorf("Get = %q, want %q (first provider wins)", got, "aaa")
	}

	got, err = chain.Get("other")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "ccc" {
		t.Errorf("Get = %q, want %q", got, "ccc")
	}

	if _, err := chain.Get("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(absent) = %v, want ErrNotFound", err)
	}
}

func TestChainSkipsUnavailableProviders(t *testing.T) {
	// Keyring unreachable, vault locked, env var set: the env value wins.
	// This is the headless-CI scenario.
	keyring := &stubProvider{name: "keyring", unavailable: true}
	vault := NewVault(t.TempDir()+"/vault.enc.json", nil) // stays Locked
	t.Setenv("SIGIL_SECRET_DEMO_API_KEY", "abc123")
	env := NewEnvProvider("demo")

	chain := NewChain(nil, keyring, vault, env)

	got, err := chain.Get("api_key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "abc123" {
		t.Errorf("Get = %q, want %q", got, "abc123")
	}
}

func TestChainSetTargetsFirstWritable(t *testing.T) {
	readOnly := &stubProvider{name: "ro", readOnly: true}
	writable := &stubProvider{name: "rw"}
	fallback := &stubProvider{name: "fallback"}
	chain := NewChain(nil, readOnly, writable, fallback)

	if err := chain.Set("token", "s3cret"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if writable.stores != 1 {
		t.Errorf("first writable provider stores = %d, want 1", writable.stores)
	}
	if fallback.stores != 0 {
		t.Errorf("fallback provider should be untouched, stores = %d", fallback.stores)
	}
}

func TestChainSetFallsThroughOnSoftFailure(t *testing.T) {
	// Claims writable but fails with ErrUnavailable at store time, the way
	// the OS keyring does on a headless host.
	flaky := &stubProvider{name: "flaky"}
	flaky.unavailable = true
	sink := &stubProvider{name: "sink"}
	chain := NewChain(nil, flaky, sink)

	if err := chain.Set("token", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if sink.stores != 1 {
		t.Errorf("sink stores = %d, want 1", sink.stores)
	}
}

func TestChainSetNoWritableProvider(t *testing.T) {
	chain := NewChain(nil, &stubProvider{name: "ro", readOnly: true})
	if err := chain.Set("k", "v"); !errors.Is(err, ErrNoWritableProvider) {
		t.Fatalf("Set = %v, want ErrNoWritableProvider", err)
	}
}

func TestChainSetAt(t *testing.T) {
	first := &stubProvider{name: "first"}
	second := &stubProvider{name: "second"}
	chain := NewChain(nil, first, second)

	if err := chain.SetAt("second", "k", "v"); err != nil {
		t.Fatalf("SetAt: %v", err)
	}
	if first.stores != 0 || second.stores != 1 {
		t.Errorf("stores = (%d, %d), want (0, 1)", first.stores, second.stores)
	}

	if err := chain.SetAt("nope", "k", "v"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("SetAt(nope) = %v, want ErrUnknownProvider", err)
	}
}

func TestEnvProviderNaming(t *testing.T) {
	t.Setenv("SIGIL_SECRET_MY_PKG_DB_PASSWORD", "hunter2")
	p := NewEnvProvider("my-pkg")

	res := p.Lookup("db.password")
	if res.Status != Hit || res.Value != "hunter2" {
		t.Fatalf("Lookup = %+v, want hit hunter2", res)
	}

	if res := p.Lookup("missing"); res.Status != Miss {
		t.Errorf("Lookup(missing) = %+v, want miss", res)
	}

	if err := p.Store("k", "v"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Store = %v, want ErrReadOnly", err)
	}
}
