package confluence

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func NewAPI(instance string, username string, token string) (*API, error) {
	if instance == "" {
		return nil, fmt.Errorf("confluence: configure your Confluence instance name --confluence-instance")
	}

	return NewAPIForURL(fmt.Sprintf("https://%s.atlassian.net", instance), username, token)
}

// NewAPIForURL is like NewAPI, but talks to an arbitrary base URL.  Useful for Data Center
// installs, or a test server.  The URL should not include the /wiki suffix.
func NewAPIForURL(baseURL string, username string, token string) (*API, error) {
	if token == "" {
		return nil, fmt.Errorf("confluence: auth token is empty, please check auth-token-cmd")
	}

	u, err := url.ParseRequestURI(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse REST API URL: %w", err)
	}

	a := &API{
		BaseURI:  u,
		token:    token,
		username: username,
	}
	a.Client = &http.Client{}

	return a, nil
}

type API struct {
	// Where Confluence lives, e.g. https://INSTANCE.atlassian.net
	BaseURI *url.URL

	// An HTTP client - you can substitute VCR or whatnot.
	Client *http.Client

	// Auth info.  With an empty username the token is sent as a bearer token.
	username, token string
}
