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

var (
	LabelSort   string
	LabelFilter string
)

var listLabelsUsage = strings.TrimSpace(`
Print every label used in the space, with the number of pages and blog posts carrying it.  This is
the place to spot typos and near-duplicates worth merging.
`)

var listLabelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Print label usage in a space",
	Long:  listLabelsUsage,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		sortKey, err := parseSortKey(LabelSort)
		if err != nil {
			return fmt.Errorf("list labels: %w", err)
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		api, stop, err := newAPI()
		if err != nil {
			return fmt.Errorf("list labels: %w", err)
		}
		defer stop()

		organizer := newOrganizer(api, labels.Options{})
		usage, err := organizer.GetLabels(ctx, labels.Context{SpaceKey: Space})
		if err != nil {
			return fmt.Errorf("list labels: %w", err)
		}

		usage = labels.FilterUsage(usage, LabelFilter)
		labels.SortUsage(usage, sortKey)

		return render(os.Stdout, usage, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "LABEL\tPAGES\tBLOG POSTS\tTOTAL")
			for _, u := range usage {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", u.Name, u.PageCount, u.BlogPostCount, u.TotalCount)
			}
		})
	},
}

func parseSortKey(s string) (labels.SortKey, error) {
	switch k := labels.SortKey(strings.ToLower(s)); k {
	case labels.SortNone, labels.SortName, labels.SortCount:
		return k, nil
	}
	if strings.EqualFold(s, "none") {
		return labels.SortNone, nil
	}
	return labels.SortNone, fmt.Errorf("unknown sort order %q, want name, count or none", s)
}

func init() {
	listCmd.AddCommand(listLabelsCmd)

	listLabelsCmd.Flags().StringVar(&LabelSort, "sort", string(labels.SortName), "order labels by name, count or none (as first seen)")
	listLabelsCmd.Flags().StringVar(&LabelFilter, "filter", "", "only show labels containing this text")
}
