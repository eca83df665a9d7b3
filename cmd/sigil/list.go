package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/sigil"
	"github.com/randalmurphal/sigil/scope"
)

var listScope string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List effective values, or one scope's raw contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		if listScope != "" {
			return listOneScope(eng, listScope)
		}
		return listEffective(eng)
	},
}

// listEffective renders every key visible through the policy with its
// effective value and origin scope.
func listEffective(eng *sigil.Engine) error {
	values, err := eng.ScopedValues()
	if err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, m := range values {
		for k := range m {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		raw, err := eng.GetString(k)
		if errors.Is(err, sigil.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		origin, err := eng.Origin(k)
		if err != nil {
			return err
		}
		rows = append(rows, []string{k, raw, origin})
	}
	fmt.Println(renderTable([]string{"KEY", "VALUE", "SCOPE"}, rows))
	return nil
}

func listOneScope(eng *sigil.Engine, id string) error {
	keys, err := eng.Keys(id)
	if err != nil {
		return err
	}
	values, err := eng.ScopedValues()
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, values[id][k]})
	}
	fmt.Println(renderTable([]string{"KEY", "VALUE"}, rows))
	return nil
}

var scopesCmd = &cobra.Command{
	Use:   "scopes",
	Short: "Show the scope policy, highest precedence first",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(eng.Policy().Scopes()))
		for _, sc := range eng.Policy().Scopes() {
			path := "(process environment)"
			if sc.Kind == scope.FileBacked {
				resolved, err := eng.Policy().ResolvePath(sc.ID, eng.Provider())
				switch {
				case err != nil:
					path = "error: " + err.Error()
				case resolved == "":
					path = "(none)"
				default:
					path = resolved
					if _, statErr := os.Stat(resolved); statErr != nil {
						path += " (absent)"
					}
				}
			}
			rows = append(rows, []string{sc.ID, writableLabel(sc), path})
		}
		fmt.Println(renderTable([]string{"SCOPE", "ACCESS", "PATH"}, rows))
		return nil
	},
}

func writableLabel(sc scope.Scope) string {
	if sc.Writable {
		return "read-write"
	}
	return "read-only"
}

func init() {
	listCmd.Flags().StringVarP(&listScope, "scope", "s", "", "list one scope's own keys instead of effective values")
}
