package labels

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/toothbrush/confluence-labels/confluence"
)

// fakeAPI is an in-memory Confluence that records every call it sees.
type fakeAPI struct {
	mu sync.Mutex

	spaces    []confluence.Space
	spacesErr error

	// content by "type|label"; label is empty for unfiltered listings.
	content map[string][]confluence.Content

	// errors to return for particular calls, keyed like the entries in calls.
	failOn map[string]error

	// delay for label calls that don't fail, so concurrent work overlaps.
	delay time.Duration

	calls []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		content: map[string][]confluence.Content{},
		failOn:  map[string]error{},
	}
}

func (f *fakeAPI) put(typ confluence.ContentType, label string, items ...confluence.Content) {
	key := fmt.Sprintf("%s|%s", typ, label)
	f.content[key] = append(f.content[key], items...)
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.failOn[call]
}

func (f *fakeAPI) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.calls...)
}

func (f *fakeAPI) GetSpaces(ctx context.Context, opts confluence.SpacesQuery) (*confluence.AllSpaces, error) {
	f.record("spaces")
	if f.spacesErr != nil {
		return nil, f.spacesErr
	}
	return &confluence.AllSpaces{Results: f.spaces}, nil
}

func (f *fakeAPI) GetContent(ctx context.Context, opts confluence.ContentQuery) (*confluence.ContentResponse, error) {
	call := fmt.Sprintf("list %s label=%s start=%d", opts.Type, opts.Label, opts.Start)
	if err := f.record(call); err != nil {
		return nil, err
	}

	f.mu.Lock()
	items := f.content[fmt.Sprintf("%s|%s", opts.Type, opts.Label)]
	f.mu.Unlock()

	limit := opts.Limit
	if limit < 1 {
		limit = 25
	}
	start := opts.Start
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}

	res := &confluence.ContentResponse{
		Results: items[start:end],
		Start:   start,
		Limit:   limit,
		Size:    end - start,
	}
	if end < len(items) {
		res.Links.Next = fmt.Sprintf("/rest/api/content?limit=%d&start=%d", limit, end)
	}
	return res, nil
}

func (f *fakeAPI) AddLabel(ctx context.Context, contentID string, name string) error {
	return f.labelCall(fmt.Sprintf("attach %s %s", contentID, name))
}

func (f *fakeAPI) RemoveLabel(ctx context.Context, contentID string, name string) error {
	return f.labelCall(fmt.Sprintf("detach %s %s", contentID, name))
}

func (f *fakeAPI) labelCall(call string) error {
	if err := f.record(call); err != nil {
		return err
	}
	time.Sleep(f.delay)
	return nil
}

func content(id string, labels ...string) confluence.Content {
	c := confluence.Content{ID: id, Title: "Title " + id}
	for _, l := range labels {
		c.Metadata.Labels.Results = append(c.Metadata.Labels.Results, confluence.Label{Prefix: "global", Name: l})
	}
	return c
}
