package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/sigil"
	"github.com/randalmurphal/sigil/backend"
	"github.com/randalmurphal/sigil/secrets"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"generic", errors.New("boom"), 1},
		{"key not found", fmt.Errorf("get: %w", sigil.ErrKeyNotFound), 2},
		{"secret not found", secrets.ErrNotFound, 2},
		{"not writable", sigil.ErrNotWritable, 3},
		{"no scope path", sigil.ErrNoScopePath, 3},
		{"cast", &sigil.CastError{Key: "k", Value: "v", Want: "integer"}, 4},
		{"vault locked", secrets.ErrVaultLocked, 5},
		{"bad passphrase", secrets.ErrBadPassphrase, 5},
		{"corrupt file", fmt.Errorf("load: %w", backend.ErrCorrupt), 6},
		{"unsupported format", backend.ErrUnsupportedFormat, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
