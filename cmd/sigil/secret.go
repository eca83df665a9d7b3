package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/randalmurphal/sigil"
	"github.com/randalmurphal/sigil/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage provider secrets",
	Long: `Secret reads and writes values through the secret provider chain:
the OS keyring, the encrypted file vault and SIGIL_SECRET_* environment
variables. Vault operations prompt for the master passphrase unless
SIGIL_MASTER_PWD is set.`,
}

var secretGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		chain := eng.Secrets()
		if chain == nil {
			return sigil.ErrNoSecrets
		}
		value, err := chain.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var secretSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Store a secret in the first writable provider",
	Long: `Set stores a secret in the keyring, falling back to the vault when
no keyring is available. Omit the value to enter it without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		chain := eng.Secrets()
		if chain == nil {
			return sigil.ErrNoSecrets
		}

		value := ""
		if len(args) == 2 {
			value = args[1]
		} else {
			value, err = promptHidden("Secret value: ")
			if err != nil {
				return err
			}
		}

		err = chain.Set(args[0], value)
		// A locked vault does not report itself writable; unlock and retry
		// before giving up.
		if (errors.Is(err, secrets.ErrNoWritableProvider) || errors.Is(err, secrets.ErrVaultLocked)) && eng.Vault() != nil {
			if err := unlockVault(eng); err != nil {
				return err
			}
			err = chain.Set(args[0], value)
		}
		if err != nil {
			return err
		}
		fmt.Printf("stored secret %s\n", args[0])
		return nil
	},
}

var secretUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the encrypted vault for this process",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		if err := unlockVault(eng); err != nil {
			return err
		}
		fmt.Println("vault unlocked")
		return nil
	},
}

var secretRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Re-encrypt the vault under a new master passphrase",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		vault := eng.Vault()
		if vault == nil {
			return errors.New("no vault in the secret chain")
		}
		if vault.Locked() {
			if err := unlockVault(eng); err != nil {
				return err
			}
		}

		next, err := promptHidden("New master passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := promptHidden("Repeat new master passphrase: ")
		if err != nil {
			return err
		}
		if next != confirm {
			return errors.New("passphrases do not match")
		}
		if err := vault.RotateKey([]byte(next)); err != nil {
			return err
		}
		fmt.Println("vault re-encrypted")
		return nil
	},
}

// unlockVault obtains the master passphrase and unlocks the engine's vault.
// SIGIL_MASTER_PWD wins over the prompt so scripts never block on a TTY.
func unlockVault(eng *sigil.Engine) error {
	vault := eng.Vault()
	if vault == nil {
		return errors.New("no vault in the secret chain")
	}
	if !vault.Locked() {
		return nil
	}
	if ok, err := vault.UnlockFromEnv(); err != nil {
		return err
	} else if ok {
		return nil
	}
	pass, err := promptHidden("Master passphrase: ")
	if err != nil {
		return err
	}
	return vault.Unlock([]byte(pass))
}

// promptHidden reads a line without echo on a terminal, or a plain line when
// stdin is piped.
func promptHidden(prompt string) (string, error) {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		raw, err := term.ReadPassword(int(fd))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	secretCmd.AddCommand(secretGetCmd)
	secretCmd.AddCommand(secretSetCmd)
	secretCmd.AddCommand(secretUnlockCmd)
	secretCmd.AddCommand(secretRotateCmd)
}
