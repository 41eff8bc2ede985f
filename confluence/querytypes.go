package confluence

// SpacesQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-space/#api-wiki-rest-api-space-get
type SpacesQuery struct {
	// Filter the results to spaces based on...
	Keys   []string `url:"spaceKey,omitempty"` // their keys.
	Type   string   `url:"type,omitempty"`     // their types. Valid values: "global" or "personal"
	Status string   `url:"status,omitempty"`   // their status: current, archived.

	// v1 pagination is offset based.  The next offset, or a cursor, comes back in _links.next.
	Start  int    `url:"start,omitempty"`
	Cursor string `url:"cursor,omitempty"`
	Limit  int    `url:"limit,omitempty"` // page limit; default 25
}

// ContentQuery defines the query parameters for:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-get
//
// Note that the v1 endpoint returns pages only unless Type is set, so ask for blogposts
// explicitly.
type ContentQuery struct {
	Type     string   `url:"type,omitempty"`   // page, blogpost
	SpaceKey string   `url:"spaceKey,omitempty"`
	Label    string   `url:"label,omitempty"`  // only content carrying this label
	Status   []string `url:"status,omitempty"` // current, trashed, historical, draft, any
	Expand   []string `url:"expand,omitempty,comma"`

	Start  int    `url:"start,omitempty"`
	Cursor string `url:"cursor,omitempty"`
	Limit  int    `url:"limit,omitempty"` // page limit; default 25
}

// LabelQuery identifies a label attached to one piece of content, for:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content-labels/#api-wiki-rest-api-content-id-label-delete
//
// The query-parameter form of the delete call copes with label names containing a slash, which
// the path form does not.
type LabelQuery struct {
	ContentID string `url:"-"`
	Name      string `url:"name"`
}
