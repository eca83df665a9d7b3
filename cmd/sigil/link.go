package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/sigil/backend"
	"github.com/randalmurphal/sigil/devlink"
)

var linkCmd = &cobra.Command{
	Use:   "link [defaults-file]",
	Short: "Register a development defaults file for the provider",
	Long: `Link records where the provider's shipped defaults live during
development, so the defaults scope resolves without installing anything.
Without an argument, link prints the current registrations.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := devlink.Open("")
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return printLinks(reg)
		}

		target, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		if err := devlink.Validate(backend.Default(), target); err != nil {
			return err
		}
		if err := reg.Link(providerID, target); err != nil {
			return err
		}
		fmt.Printf("linked %s -> %s\n", providerID, target)
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Remove the provider's development defaults registration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := devlink.Open("")
		if err != nil {
			return err
		}
		removed, err := reg.Unlink(providerID)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Printf("%s was not linked\n", providerID)
			return nil
		}
		fmt.Printf("unlinked %s\n", providerID)
		return nil
	},
}

func printLinks(reg *devlink.Registry) error {
	links, err := reg.Links()
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(links))
	for id := range links {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{id, links[id]})
	}
	fmt.Println(renderTable([]string{"PROVIDER", "DEFAULTS FILE"}, rows))
	return nil
}
