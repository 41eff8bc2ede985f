package confluence

import "fmt"

// See https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-users/#api-wiki-rest-api-user-current-get
type User struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	UserKey     string `json:"userKey"`
	AccountID   string `json:"accountId"`
	AccountType string `json:"accountType"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// See https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-space/#api-wiki-rest-api-space-get
type Space struct {
	ID     int64  `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

// Content is a page or a blog post, as returned by the v1 content endpoint:
// https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content/#api-wiki-rest-api-content-get
//
// We only ever ask for the label metadata (expand=metadata.labels), so no body or ancestry here.
type Content struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status,omitempty"`
	Title  string `json:"title"`

	Metadata struct {
		Labels LabelArray `json:"labels"`
	} `json:"metadata"`
}

// LabelNames returns the names of the attached labels, in the order the API reported them.  It is
// empty unless the content was fetched with label metadata expanded.
func (c Content) LabelNames() []string {
	names := make([]string, 0, len(c.Metadata.Labels.Results))
	for _, l := range c.Metadata.Labels.Results {
		names = append(names, l.Name)
	}
	return names
}

// Label as in https://developer.atlassian.com/cloud/confluence/rest/v1/api-group-content-labels/
type Label struct {
	Prefix string `json:"prefix,omitempty"` // global, my, team
	Name   string `json:"name"`
	ID     string `json:"id,omitempty"`
	Label  string `json:"label,omitempty"`
}

type LabelArray struct {
	Results []Label `json:"results"`
	Start   int     `json:"start"`
	Limit   int     `json:"limit"`
	Size    int     `json:"size"`
}

type ContentType int

const (
	PageContent ContentType = iota
	BlogContent
)

func (c ContentType) String() string {
	switch c {
	case BlogContent:
		return "blogpost"
	default:
		return "page"
	}
}

// ParseContentType is the inverse of ContentType.String.
func ParseContentType(s string) (ContentType, error) {
	switch s {
	case "page":
		return PageContent, nil
	case "blogpost":
		return BlogContent, nil
	}
	return PageContent, fmt.Errorf("confluence: unknown content type %q", s)
}
