package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

func (api *API) GetSpaces(ctx context.Context, opts SpacesQuery) (*AllSpaces, error) {
	ep, err := api.getSpacesEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get spaces endpoint: %w", err)
	}

	body, err := api.request(ctx, http.MethodGet, ep, nil)
	if err != nil {
		return nil, err
	}

	var allSpaces AllSpaces

	if err := json.Unmarshal(body, &allSpaces); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &allSpaces, nil
}

func (api *API) GetContent(ctx context.Context, opts ContentQuery) (*ContentResponse, error) {
	ep, err := api.getContentEndpoint(opts)
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get content endpoint: %w", err)
	}

	body, err := api.request(ctx, http.MethodGet, ep, nil)
	if err != nil {
		return nil, err
	}

	var contentList ContentResponse

	if err := json.Unmarshal(body, &contentList); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &contentList, nil
}

// AddLabel attaches a global label to one piece of content.  Confluence treats re-adding an
// existing label as a no-op.
func (api *API) AddLabel(ctx context.Context, contentID string, name string) error {
	ep, err := api.getContentLabelsEndpoint(contentID)
	if err != nil {
		return fmt.Errorf("confluence: couldn't get label endpoint: %w", err)
	}

	payload, err := json.Marshal([]Label{{Prefix: "global", Name: name}})
	if err != nil {
		return fmt.Errorf("confluence: couldn't encode label: %w", err)
	}

	if _, err := api.request(ctx, http.MethodPost, ep, payload); err != nil {
		return err
	}

	return nil
}

// RemoveLabel detaches one label from one piece of content.
func (api *API) RemoveLabel(ctx context.Context, contentID string, name string) error {
	ep, err := api.getRemoveLabelEndpoint(LabelQuery{ContentID: contentID, Name: name})
	if err != nil {
		return fmt.Errorf("confluence: couldn't get label endpoint: %w", err)
	}

	if _, err := api.request(ctx, http.MethodDelete, ep, nil); err != nil {
		return err
	}

	return nil
}

// CurrentUser return current user information
func (api *API) CurrentUser(ctx context.Context) (*User, error) {
	ep, err := api.getCurrentUserEndpoint()
	if err != nil {
		return nil, fmt.Errorf("confluence: couldn't get current user endpoint: %w", err)
	}

	body, err := api.request(ctx, http.MethodGet, ep, nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("confluence: couldn't parse json response: %w", err)
	}

	return &user, nil
}

// request performs one call.  Any failure comes back as an *APIError naming the path.
func (api *API) request(ctx context.Context, method string, url *url.URL, payload []byte) ([]byte, error) {
	apiErr := &APIError{Method: method, Path: url.Path}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url.String(), reqBody)
	if err != nil {
		apiErr.Err = fmt.Errorf("couldn't instantiate http request: %w", err)
		return nil, apiErr
	}

	req.Header.Add("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// if user & token are not set, do not add authorization header
	if api.username != "" && api.token != "" {
		req.SetBasicAuth(api.username, api.token)
	} else if api.token != "" {
		req.Header.Set("Authorization", "Bearer "+api.token)
	}

	response, err := api.Client.Do(req)
	if err != nil {
		apiErr.Err = fmt.Errorf("couldn't perform http request: %w", err)
		return nil, apiErr
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		response.Body.Close()
		apiErr.Err = fmt.Errorf("couldn't read http response body: %w", err)
		return nil, apiErr
	}

	if err := response.Body.Close(); err != nil {
		apiErr.Err = fmt.Errorf("couldn't close response body: %w", err)
		return nil, apiErr
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return body, nil
	}

	apiErr.StatusCode = response.StatusCode
	apiErr.Status = response.Status
	apiErr.Message = errorMessage(body)
	apiErr.Err = fmt.Errorf("%s", statusMessage(response.StatusCode))
	return nil, apiErr
}

// errorMessage digs the human-readable message out of a Confluence error payload, if there is
// one.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
