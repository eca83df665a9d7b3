// Package main provides the sigil CLI for inspecting and editing layered
// provider configuration.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/sigil"
	"github.com/randalmurphal/sigil/backend"
	"github.com/randalmurphal/sigil/secrets"
)

var (
	// providerID is set by the --provider flag.
	providerID string

	// scopeID is set by the --scope flag on write-capable commands.
	scopeID string

	// verbose enables debug logging.
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sigil:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error kinds to distinct codes so scripts can branch on the
// failure class.
func exitCode(err error) int {
	switch {
	case errors.Is(err, sigil.ErrKeyNotFound), errors.Is(err, secrets.ErrNotFound):
		return 2
	case errors.Is(err, sigil.ErrNotWritable), errors.Is(err, sigil.ErrNoScopePath):
		return 3
	case sigil.IsCastError(err):
		return 4
	case errors.Is(err, secrets.ErrVaultLocked), errors.Is(err, secrets.ErrBadPassphrase):
		return 5
	case errors.Is(err, backend.ErrCorrupt):
		return 6
	case errors.Is(err, backend.ErrUnsupportedFormat):
		return 7
	default:
		return 1
	}
}

var rootCmd = &cobra.Command{
	Use:   "sigil",
	Short: "Sigil resolves layered provider configuration",
	Long: `Sigil reads and writes provider settings across precedence-ordered
scopes: environment variables, project files, user files and shipped
defaults. The highest scope that defines a key supplies its value.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&providerID, "provider", "p", "", "provider id (required)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	_ = rootCmd.MarkPersistentFlagRequired("provider")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scopesCmd)
	rootCmd.AddCommand(whichCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(secretCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sigil v0.1.0")
	},
}

// newEngine builds an engine for the --provider flag.
func newEngine() (*sigil.Engine, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return sigil.New(providerID, sigil.WithLogger(logger))
}
