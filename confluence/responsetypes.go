package confluence

// Links is the v1 pagination block.  Next is the relative URL of the following page of results,
// with the start offset already advanced; it is absent on the last page.
type Links struct {
	Base    string `json:"base,omitempty"`
	Context string `json:"context,omitempty"`
	Next    string `json:"next,omitempty"`
}

// AllSpaces response type
type AllSpaces struct {
	Results []Space `json:"results"`
	Start   int     `json:"start"`
	Limit   int     `json:"limit"`
	Size    int     `json:"size"`

	Links Links `json:"_links"`
}

type ContentResponse struct {
	Results []Content `json:"results"`
	Start   int       `json:"start"`
	Limit   int       `json:"limit"`
	Size    int       `json:"size"`

	Links Links `json:"_links"`
}
