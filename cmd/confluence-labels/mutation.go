package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/toothbrush/confluence-labels/labels"
)

var (
	Workers    int
	KeepGoing  bool
	NoProgress bool
)

func addMutationFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&Workers, "workers", 1, "how many pages to relabel at once")
	cmd.Flags().BoolVar(&KeepGoing, "keep-going", false, "carry on past failed label calls and report them all at the end")
	cmd.Flags().BoolVar(&NoProgress, "no-progress", false, "don't draw a progress bar")
}

type mutationFunc func(ctx context.Context, o *labels.Organizer) (*labels.MutationResult, error)

// runMutation does the plumbing shared by add, delete and merge: it sets up the client and
// progress bar, runs the operation, and prints whatever was done, even when it failed part way.
func runMutation(cmd *cobra.Command, name string, do mutationFunc) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	api, stop, err := newAPI()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer stop()

	opts := labels.Options{
		Workers:         Workers,
		ContinueOnError: KeepGoing,
	}
	var bar *progressBar
	if !NoProgress {
		bar = newProgressBar(name)
		opts.Progress = bar
	}

	res, err := do(ctx, newOrganizer(api, opts))
	if bar != nil {
		bar.Wait()
	}

	if res != nil {
		if rerr := renderResult(res); rerr != nil {
			logger.Error("couldn't print result", "error", rerr)
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func renderResult(res *labels.MutationResult) error {
	return render(os.Stdout, res, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "ACTION\tCONTENT\tLABEL\tRESULT")
		for _, o := range res.Succeeded {
			fmt.Fprintf(tw, "%s\t%s\t%s\tok\n", o.Action, o.ContentID, o.Label)
		}
		for _, f := range res.Failed {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Action, f.ContentID, f.Label, f.Reason)
		}
	})
}
