package confluence

import (
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
)

// getSpacesEndpoint returns the (v1) API endpoint to list spaces
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-space/#api-wiki-rest-api-space-get
func (a *API) getSpacesEndpoint(opts SpacesQuery) (*url.URL, error) {
	ep, err := a.resolveEndpoint("/wiki/rest/api/space")
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getContentEndpoint returns the (v1) API endpoint to list pages or blogposts, optionally filtered
// by label:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-get
func (a *API) getContentEndpoint(opts ContentQuery) (*url.URL, error) {
	ep, err := a.resolveEndpoint("/wiki/rest/api/content")
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getContentLabelsEndpoint returns the (v1) API endpoint to add labels to one piece of content:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content-labels/#api-wiki-rest-api-content-id-label-post
func (a *API) getContentLabelsEndpoint(contentID string) (*url.URL, error) {
	if contentID == "" {
		return nil, fmt.Errorf("confluence: please provide content ID to label")
	}

	ep, err := a.resolveEndpoint(fmt.Sprintf("/wiki/rest/api/content/%s/label", url.PathEscape(contentID)))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't resolve endpoint: %w", err)
	}

	return ep, nil
}

// getRemoveLabelEndpoint returns the (v1) API endpoint to remove one label from one piece of
// content:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content-labels/#api-wiki-rest-api-content-id-label-delete
func (a *API) getRemoveLabelEndpoint(opts LabelQuery) (*url.URL, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("confluence: please provide label name to remove")
	}

	ep, err := a.getContentLabelsEndpoint(opts.ContentID)
	if err != nil {
		return nil, err
	}

	v, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't encode query params: %w", err)
	}
	ep.RawQuery = v.Encode()

	return ep, nil
}

// getCurrentUserEndpoint returns the (v1) API endpoint to query current user
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-users/#api-wiki-rest-api-user-current-get
func (a *API) getCurrentUserEndpoint() (*url.URL, error) {
	return a.resolveEndpoint("/wiki/rest/api/user/current")
}

// Do a bit of error checking on endpoint format, and return it relative to the base URI.
func (a *API) resolveEndpoint(endpoint string) (*url.URL, error) {
	baseUri := a.BaseURI

	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("confluence: failed to parse endpoint ref: %w", err)
	}

	return baseUri.ResolveReference(ref), nil
}

// Continuation is where the next page of a listing starts.  v1 listings hand out a start offset;
// some Cloud listings hand out an opaque cursor instead of, or as well as, the offset.
type Continuation struct {
	Start  int
	Limit  int
	Cursor string
}

// Advances reports whether c moves a listing on from the given offset and cursor.
func (c Continuation) Advances(start int, cursor string) bool {
	if c.Cursor != "" {
		return c.Cursor != cursor
	}
	return c.Start > start
}

// ResolveNext turns a _links.next value into the continuation it stands for, so the caller can
// keep its own typed query and just move it on.  Returns ok=false when there is no next page.
func ResolveNext(next string) (c Continuation, ok bool, err error) {
	if next == "" {
		return Continuation{}, false, nil
	}

	u, err := url.Parse(next)
	if err != nil {
		return Continuation{}, false, fmt.Errorf("confluence: couldn't parse _links.next: %w", err)
	}

	q := u.Query()
	c.Cursor = q.Get("cursor")
	if s := q.Get("start"); s != "" {
		if _, err := fmt.Sscan(s, &c.Start); err != nil {
			return Continuation{}, false, fmt.Errorf("confluence: bad parameter 'start' in %q: %w", next, err)
		}
	} else if c.Cursor == "" {
		return Continuation{}, false, fmt.Errorf("confluence: expected parameter 'start' or 'cursor' in %q", next)
	}
	if l := q.Get("limit"); l != "" {
		if _, err := fmt.Sscan(l, &c.Limit); err != nil {
			return Continuation{}, false, fmt.Errorf("confluence: bad parameter 'limit' in %q: %w", next, err)
		}
	}

	return c, true, nil
}
