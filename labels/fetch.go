package labels

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/toothbrush/confluence-labels/confluence"
)

// DefaultPageSize bounds each individual content request.
const DefaultPageSize = 100

// ContentAPI is the slice of Confluence this package needs.  *confluence.API satisfies it.
type ContentAPI interface {
	GetSpaces(ctx context.Context, opts confluence.SpacesQuery) (*confluence.AllSpaces, error)
	GetContent(ctx context.Context, opts confluence.ContentQuery) (*confluence.ContentResponse, error)
	AddLabel(ctx context.Context, contentID string, name string) error
	RemoveLabel(ctx context.Context, contentID string, name string) error
}

type FetchQuery struct {
	SpaceKey     string
	Type         confluence.ContentType
	Label        string   // optional: only content carrying this label
	ExpandLabels bool     // include label metadata on every item
	Status       []string // optional: defaults to whatever Confluence defaults to (current)
}

type Fetcher struct {
	API      ContentAPI
	PageSize int
	Logger   hclog.Logger
}

// Fetch returns every item matching the query.  Each request asks for at most PageSize items; we
// keep following _links.next until Confluence stops handing one out.
func (f *Fetcher) Fetch(ctx context.Context, q FetchQuery) ([]confluence.Content, error) {
	if q.SpaceKey == "" {
		return nil, fmt.Errorf("labels: can't fetch content without a space key")
	}

	query := confluence.ContentQuery{
		Type:     q.Type.String(),
		SpaceKey: q.SpaceKey,
		Label:    q.Label,
		Status:   q.Status,
		Limit:    f.pageSize(),
	}
	if q.ExpandLabels {
		query.Expand = []string{"metadata.labels"}
	}

	logger := f.logger().With("space", q.SpaceKey, "type", query.Type)
	if q.Label != "" {
		logger = logger.With("label", q.Label)
	}

	contents := []confluence.Content{}
	for {
		res, err := f.API.GetContent(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("labels: couldn't fetch %ss in %s: %w", query.Type, q.SpaceKey, err)
		}
		contents = append(contents, res.Results...)
		logger.Trace("fetched content", "start", query.Start, "found", len(res.Results))

		next, more, err := confluence.ResolveNext(res.Links.Next)
		if err != nil {
			return nil, fmt.Errorf("labels: couldn't follow pagination: %w", err)
		}
		if !more {
			break
		}
		if !next.Advances(query.Start, query.Cursor) {
			return nil, fmt.Errorf("labels: pagination did not advance past offset %d", query.Start)
		}
		query.Start, query.Cursor = next.Start, next.Cursor
		if next.Limit > 0 {
			query.Limit = next.Limit
		}
	}

	logger.Debug("fetched all content", "count", len(contents))
	return contents, nil
}

func (f *Fetcher) pageSize() int {
	if f.PageSize < 1 {
		return DefaultPageSize
	}
	return f.PageSize
}

func (f *Fetcher) logger() hclog.Logger {
	if f.Logger == nil {
		return hclog.NewNullLogger()
	}
	return f.Logger
}
