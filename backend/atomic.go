package backend

import (
	"fmt"
	"os"
	"path/filepath"

	nanoid "github.com/matoous/go-nanoid/v2"
)

const tmpSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// WriteFileAtomic writes data to path through a temporary file in the same
// directory followed by a rename, creating missing parent directories. A
// reader concurrent with the write sees either the old contents or the new,
// and a crash before the rename leaves the previous file untouched.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	suffix, err := nanoid.Generate(tmpSuffixAlphabet, 8)
	if err != nil {
		return fmt.Errorf("generate temp suffix: %w", err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%s", filepath.Base(path), suffix))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file over %s: %w", path, err)
	}
	return nil
}
