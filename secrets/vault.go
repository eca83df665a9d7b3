package secrets

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/crypto/scrypt"

	"github.com/randalmurphal/sigil/backend"
)

// EnvMasterPassphrase names the environment variable that unlocks the vault
// non-interactively (CI, scripted use).
const EnvMasterPassphrase = "SIGIL_MASTER_PWD"

// scrypt parameters for the vault key derivation.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// vaultFile is the on-disk envelope: a fresh salt and nonce per write, with
// the JSON key-value payload sealed by AES-256-GCM.
type vaultFile struct {
	KDF    string `json:"kdf"`
	Salt   string `json:"salt"`
	Nonce  string `json:"nonce"`
	Cipher string `json:"cipher"`
}

// Vault is the encrypted-file secret provider. It starts Locked; Unlock
// derives the symmetric key from a master passphrase. There is no automatic
// re-lock; the vault stays Unlocked until process exit.
type Vault struct {
	path   string
	logger *slog.Logger

	mu         sync.Mutex
	passphrase []byte // nil while Locked
}

// NewVault creates a vault provider backed by the file at path. A nil logger
// falls back to slog.Default().
func NewVault(path string, logger *slog.Logger) *Vault {
	if logger == nil {
		logger = slog.Default()
	}
	return &Vault{path: path, logger: logger}
}

// Path returns the vault file location.
func (v *Vault) Path() string { return v.path }

// Name implements Provider.
func (v *Vault) Name() string { return "vault" }

// Locked reports whether the vault still needs Unlock.
func (v *Vault) Locked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.passphrase == nil
}

// Unlock transitions the vault to Unlocked. If the vault file exists the
// passphrase is verified against it; ErrBadPassphrase means the derived key
// failed authenticated decryption. Unlocking an already-unlocked vault with
// the same passphrase is a no-op.
func (v *Vault) Unlock(passphrase []byte) error {
	if len(passphrase) == 0 {
		return fmt.Errorf("empty passphrase: %w", ErrBadPassphrase)
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.passphrase != nil && bytes.Equal(v.passphrase, passphrase) {
		return nil
	}
	if _, err := os.Stat(v.path); err == nil {
		if _, err := v.decrypt(passphrase); err != nil {
			return err
		}
	}
	v.passphrase = append([]byte(nil), passphrase...)
	return nil
}

// UnlockFromEnv unlocks using EnvMasterPassphrase. It reports whether the
// variable was set.
func (v *Vault) UnlockFromEnv() (bool, error) {
	pass := os.Getenv(EnvMasterPassphrase)
	if pass == "" {
		return false, nil
	}
	if err := v.Unlock([]byte(pass)); err != nil {
		return true, err
	}
	return true, nil
}

// Lookup implements Provider. A locked or absent vault is Unavailable so the
// chain falls through; decryption problems are logged and also reported as
// Unavailable rather than aborting the scan.
func (v *Vault) Lookup(key string) Result {
	value, err := v.Get(key)
	switch {
	case err == nil:
		return Result{Status: Hit, Value: value}
	case errors.Is(err, ErrNotFound):
		return Result{Status: Miss}
	default:
		if !errors.Is(err, ErrVaultLocked) {
			v.logger.Error("vault lookup failed", "error", err)
		}
		return Result{Status: Unavailable}
	}
}

var errKeyAbsent = fmt.Errorf("key absent: %w", ErrNotFound)

// Get returns the secret stored under key. It fails with ErrVaultLocked
// before Unlock and ErrNotFound when the vault (or the key) is absent.
func (v *Vault) Get(key string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.passphrase == nil {
		return "", ErrVaultLocked
	}
	if _, err := os.Stat(v.path); err != nil {
		return "", errKeyAbsent
	}
	data, err := v.decrypt(v.passphrase)
	if err != nil {
		return "", err
	}
	value, ok := data[key]
	if !ok {
		return "", errKeyAbsent
	}
	return value, nil
}

// Store implements Provider: load-mutate-save under the derived key, with an
// atomic temp-write-then-rename so a crash never corrupts the previous vault.
func (v *Vault) Store(key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.passphrase == nil {
		return ErrVaultLocked
	}
	data := map[string]string{}
	if _, err := os.Stat(v.path); err == nil {
		loaded, err := v.decrypt(v.passphrase)
		if err != nil {
			return err
		}
		data = loaded
	}
	data[key] = value
	return v.write(data, v.passphrase)
}

// Writable implements Provider.
func (v *Vault) Writable() bool {
	return !v.Locked()
}

// RotateKey re-encrypts the full vault contents under a new passphrase. The
// write is atomic: a crash mid-rotation leaves either the old vault or the
// new one intact, never a partial file.
func (v *Vault) RotateKey(newPassphrase []byte) error {
	if len(newPassphrase) == 0 {
		return fmt.Errorf("empty passphrase: %w", ErrBadPassphrase)
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.passphrase == nil {
		return ErrVaultLocked
	}
	data := map[string]string{}
	if _, err := os.Stat(v.path); err == nil {
		loaded, err := v.decrypt(v.passphrase)
		if err != nil {
			return err
		}
		data = loaded
	}
	if err := v.write(data, newPassphrase); err != nil {
		return err
	}
	v.passphrase = append([]byte(nil), newPassphrase...)
	return nil
}

// decrypt reads and opens the vault file with the given passphrase.
// Callers hold v.mu.
func (v *Vault) decrypt(passphrase []byte) (map[string]string, error) {
	raw, err := os.ReadFile(v.path)
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}
	var envelope vaultFile
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("parse vault %s: %w", v.path, ErrVaultCorrupt)
	}
	salt, err := hex.DecodeString(envelope.Salt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", ErrVaultCorrupt)
	}
	nonce, err := hex.DecodeString(envelope.Nonce)
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", ErrVaultCorrupt)
	}
	sealed, err := hex.DecodeString(envelope.Cipher)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", ErrVaultCorrupt)
	}

	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrBadPassphrase
	}
	var data map[string]string
	if err := json.Unmarshal(plain, &data); err != nil {
		return nil, fmt.Errorf("decode vault payload: %w", ErrVaultCorrupt)
	}
	return data, nil
}

// write seals data under passphrase with a fresh salt and nonce and renames
// it over the vault file. Callers hold v.mu.
func (v *Vault) write(data map[string]string, passphrase []byte) error {
	plain, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode vault payload: %w", err)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nil, nonce, plain, nil)

	envelope, err := json.Marshal(vaultFile{
		KDF:    "scrypt",
		Salt:   hex.EncodeToString(salt),
		Nonce:  hex.EncodeToString(nonce),
		Cipher: hex.EncodeToString(sealed),
	})
	if err != nil {
		return fmt.Errorf("encode vault: %w", err)
	}
	return backend.WriteFileAtomic(v.path, envelope, 0o600)
}

func newAEAD(passphrase, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(passphrase, salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}
	return aead, nil
}
