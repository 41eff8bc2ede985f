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

var MergeTarget string

var mergeUsage = strings.TrimSpace(`
Fold each SOURCE label into the --into label: everything carrying a source gets the target label,
then loses the source.  Handy for typos and plural/singular pairs.

  confluence-labels merge --into runbook run-book runbooks
`)

var mergeCmd = &cobra.Command{
	Use:   "merge --into TARGET SOURCE...",
	Short: "Merge labels into one",
	Long:  mergeUsage,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := labels.MergeLabelsRequest{
			SourceLabels: args,
			TargetLabel:  MergeTarget,
			Context:      labels.Context{SpaceKey: Space},
		}
		return runMutation(cmd, "merge", func(ctx context.Context, o *labels.Organizer) (*labels.MutationResult, error) {
			return o.MergeLabels(ctx, req)
		})
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	addMutationFlags(mergeCmd)

	mergeCmd.Flags().StringVar(&MergeTarget, "into", "", "label to merge the sources into")
}
