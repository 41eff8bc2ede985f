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
	"github.com/toothbrush/confluence-labels/labels"
)

var listPagesUsage = strings.TrimSpace(`
Print the ID and title of every current page in the space.  Use the IDs with the add command.
`)

var listPagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Print pages in a space",
	Long:  listPagesUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		api, stop, err := newAPI()
		if err != nil {
			return fmt.Errorf("list pages: %w", err)
		}
		defer stop()

		organizer := newOrganizer(api, labels.Options{})
		pages, err := organizer.GetPages(ctx, labels.Context{SpaceKey: Space})
		if err != nil {
			return fmt.Errorf("list pages: %w", err)
		}

		return render(os.Stdout, pages, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "ID\tTITLE")
			for _, p := range pages {
				fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.Title)
			}
		})
	},
}

func init() {
	listCmd.AddCommand(listPagesCmd)
}
