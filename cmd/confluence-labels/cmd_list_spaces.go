/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-labels/confluence"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var IncludePersonal bool

var listSpacesUsage = strings.TrimSpace(`
If you want to find out what spaces your Confluence wiki has, and which keys to pass to --space,
use this command.
`)

var listSpacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "Print list of spaces",
	Long:  listSpacesUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		api, stop, err := newAPI()
		if err != nil {
			return fmt.Errorf("list spaces: %w", err)
		}
		defer stop()

		logger.Debug("listing Confluence spaces", "instance", api.BaseURI.Host)
		spacesRemote, err := api.ListAllSpaces(ctx, IncludePersonal)
		if err != nil {
			return fmt.Errorf("list spaces: couldn't list Confluence spaces: %w", err)
		}
		logger.Debug("found spaces", "count", len(spacesRemote))

		spaceKeys := maps.Keys(spacesRemote)
		slices.Sort(spaceKeys)

		spaces := make([]confluence.Space, 0, len(spaceKeys))
		for _, k := range spaceKeys {
			spaces = append(spaces, spacesRemote[k])
		}

		return render(os.Stdout, spaces, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "KEY\tNAME\tTYPE")
			for _, s := range spaces {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Key, s.Name, s.Type)
			}
		})
	},
}

func init() {
	listCmd.AddCommand(listSpacesCmd)

	listSpacesCmd.Flags().BoolVar(&IncludePersonal, "include-personal-spaces", false, "list individuals' personal spaces")
}
