/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-labels/labels"
)

var addUsage = strings.TrimSpace(`
Attach LABEL to each of the given pages.  Find page IDs with "list pages".

Pages are labelled in the order given.  Unless --keep-going is set, the first failure stops the
run; the pages labelled before it keep their label.
`)

var addCmd = &cobra.Command{
	Use:   "add LABEL PAGE_ID...",
	Short: "Attach a label to pages",
	Long:  addUsage,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := labels.AddLabelRequest{
			LabelName: args[0],
			PageIDs:   args[1:],
		}
		return runMutation(cmd, "add", func(ctx context.Context, o *labels.Organizer) (*labels.MutationResult, error) {
			return o.AddLabel(ctx, req)
		})
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addMutationFlags(addCmd)
}
