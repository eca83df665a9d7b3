package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/sigil/scope"
)

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a key into a scope",
	Long: `Set writes a key into the scope named by --scope (default: user).
Values are stored as strings; readers recover typed values through the
automatic cast chain.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		if err := eng.Set(args[0], args[1], scopeID); err != nil {
			return err
		}
		fmt.Printf("%s = %s (%s)\n", args[0], args[1], scopeID)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear <key>",
	Short: "Remove a key from a scope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		if err := eng.Clear(args[0], scopeID); err != nil {
			return err
		}
		fmt.Printf("cleared %s (%s)\n", args[0], scopeID)
		return nil
	},
}

func init() {
	setCmd.Flags().StringVarP(&scopeID, "scope", "s", scope.ScopeUser, "target scope")
	clearCmd.Flags().StringVarP(&scopeID, "scope", "s", scope.ScopeUser, "target scope")
}
