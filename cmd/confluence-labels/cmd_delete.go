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

var deleteUsage = strings.TrimSpace(`
Remove each LABEL from every page and blog post in the space that carries it.  Confluence drops a
label for good once nothing uses it any more.
`)

var deleteCmd = &cobra.Command{
	Use:   "delete LABEL...",
	Short: "Remove labels from everything in a space",
	Long:  deleteUsage,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := labels.DeleteLabelsRequest{
			Labels:  args,
			Context: labels.Context{SpaceKey: Space},
		}
		return runMutation(cmd, "delete", func(ctx context.Context, o *labels.Organizer) (*labels.MutationResult, error) {
			return o.DeleteLabels(ctx, req)
		})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	addMutationFlags(deleteCmd)
}
