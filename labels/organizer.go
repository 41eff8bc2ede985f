// Package labels lists, adds, deletes and merges labels across the pages and blog posts of one
// Confluence space.
package labels

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/toothbrush/confluence-labels/confluence"
)

// ContentRef is the bit of a page a caller needs to pick it.
type ContentRef struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

type Options struct {
	FallbackSpace   string
	PageSize        int
	Workers         int
	ContinueOnError bool
	Progress        Progress
	Logger          hclog.Logger
}

// Organizer is the set of procedures offered to a front end.  It keeps no state between calls;
// every call resolves its own space key.
type Organizer struct {
	Resolver *SpaceResolver
	Fetcher  *Fetcher
	Mutator  *Mutator
	Logger   hclog.Logger
}

func NewOrganizer(api ContentAPI, opts Options) *Organizer {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	fetcher := &Fetcher{
		API:      api,
		PageSize: opts.PageSize,
		Logger:   logger.Named("fetcher"),
	}

	return &Organizer{
		Resolver: &SpaceResolver{
			API:      api,
			Fallback: opts.FallbackSpace,
			Logger:   logger.Named("space"),
		},
		Fetcher: fetcher,
		Mutator: &Mutator{
			API:             api,
			Fetcher:         fetcher,
			Workers:         opts.Workers,
			ContinueOnError: opts.ContinueOnError,
			Progress:        opts.Progress,
			Logger:          logger.Named("mutator"),
		},
		Logger: logger,
	}
}

func (o *Organizer) ResolveSpace(ctx context.Context, c Context) Resolution {
	return o.Resolver.Resolve(ctx, c.SpaceKey)
}

// GetLabels tallies every label used on pages and blog posts in the space.  The records come back
// in first-seen order; sorting is up to the caller.
func (o *Organizer) GetLabels(ctx context.Context, c Context) ([]LabelUsage, error) {
	space := o.ResolveSpace(ctx, c)

	pages, err := o.Fetcher.Fetch(ctx, FetchQuery{
		SpaceKey:     space.Key,
		Type:         confluence.PageContent,
		ExpandLabels: true,
	})
	if err != nil {
		return nil, fmt.Errorf("labels: couldn't list page labels: %w", err)
	}

	blogPosts, err := o.Fetcher.Fetch(ctx, FetchQuery{
		SpaceKey:     space.Key,
		Type:         confluence.BlogContent,
		ExpandLabels: true,
	})
	if err != nil {
		return nil, fmt.Errorf("labels: couldn't list blog post labels: %w", err)
	}

	usage := Aggregate(pages, blogPosts)
	o.Logger.Debug("aggregated labels", "space", space.Key, "pages", len(pages), "blogposts", len(blogPosts), "labels", usage.Len())

	return usage.Records(), nil
}

// GetPages lists the current pages in the space.
func (o *Organizer) GetPages(ctx context.Context, c Context) ([]ContentRef, error) {
	space := o.ResolveSpace(ctx, c)

	pages, err := o.Fetcher.Fetch(ctx, FetchQuery{
		SpaceKey: space.Key,
		Type:     confluence.PageContent,
		Status:   []string{"current"},
	})
	if err != nil {
		return nil, fmt.Errorf("labels: couldn't list pages: %w", err)
	}

	refs := make([]ContentRef, 0, len(pages))
	for _, p := range pages {
		refs = append(refs, ContentRef{ID: p.ID, Title: p.Title})
	}
	return refs, nil
}

func (o *Organizer) AddLabel(ctx context.Context, req AddLabelRequest) (*MutationResult, error) {
	logger := o.Logger.With("op", "addLabel", "op_id", uuid.NewString())

	res, err := o.Mutator.AddLabel(ctx, req)
	o.logOutcome(logger, res, err)
	return res, err
}

func (o *Organizer) DeleteLabels(ctx context.Context, req DeleteLabelsRequest) (*MutationResult, error) {
	logger := o.Logger.With("op", "deleteLabels", "op_id", uuid.NewString())

	if err := req.Validate(); err != nil {
		return newResult(), err
	}

	space := o.ResolveSpace(ctx, req.Context)
	res, err := o.Mutator.DeleteLabels(ctx, space.Key, req.Labels)
	o.logOutcome(logger.With("space", space.Key), res, err)
	return res, err
}

func (o *Organizer) MergeLabels(ctx context.Context, req MergeLabelsRequest) (*MutationResult, error) {
	logger := o.Logger.With("op", "mergeLabels", "op_id", uuid.NewString())

	if err := req.Validate(); err != nil {
		return newResult(), err
	}

	space := o.ResolveSpace(ctx, req.Context)
	res, err := o.Mutator.MergeLabels(ctx, space.Key, req.SourceLabels, req.TargetLabel)
	o.logOutcome(logger.With("space", space.Key), res, err)
	return res, err
}

func (o *Organizer) logOutcome(logger hclog.Logger, res *MutationResult, err error) {
	if err != nil {
		logger.Error("operation failed", "applied", len(res.Succeeded), "failed", len(res.Failed), "error", err)
		return
	}
	logger.Info("operation complete", "applied", len(res.Succeeded))
}
