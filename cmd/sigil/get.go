package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var getRaw bool

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		if getRaw {
			raw, err := eng.GetString(args[0])
			if err != nil {
				return err
			}
			fmt.Println(raw)
			return nil
		}
		v, err := eng.Get(args[0])
		if err != nil {
			return err
		}
		switch v.(type) {
		case []any, map[string]any:
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
		default:
			fmt.Println(v)
		}
		return nil
	},
}

var whichCmd = &cobra.Command{
	Use:   "which <key>",
	Short: "Print the scope supplying the effective value of a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		origin, err := eng.Origin(args[0])
		if err != nil {
			return err
		}
		fmt.Println(origin)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the effective configuration as environment assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		env, err := eng.ExportEnv()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(env))
		for name := range env {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s=%s\n", name, env[name])
		}
		return nil
	},
}

func init() {
	getCmd.Flags().BoolVar(&getRaw, "raw", false, "print the stored string without casting")
}
