package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/confluence-labels/confluence"
	"github.com/toothbrush/confluence-labels/labels"
)

type fakeProcedures struct {
	gotContext labels.Context
	gotAdd     labels.AddLabelRequest
	gotMerge   labels.MergeLabelsRequest

	labelsErr error
	addRes    *labels.MutationResult
	addErr    error
	block     bool
}

func (f *fakeProcedures) GetLabels(ctx context.Context, c labels.Context) ([]labels.LabelUsage, error) {
	f.gotContext = c
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.labelsErr != nil {
		return nil, f.labelsErr
	}
	return []labels.LabelUsage{{Name: "a", PageCount: 1, BlogPostCount: 1, TotalCount: 2}}, nil
}

func (f *fakeProcedures) GetPages(ctx context.Context, c labels.Context) ([]labels.ContentRef, error) {
	f.gotContext = c
	return []labels.ContentRef{{ID: "1", Title: "One"}}, nil
}

func (f *fakeProcedures) AddLabel(ctx context.Context, req labels.AddLabelRequest) (*labels.MutationResult, error) {
	f.gotAdd = req
	return f.addRes, f.addErr
}

func (f *fakeProcedures) DeleteLabels(ctx context.Context, req labels.DeleteLabelsRequest) (*labels.MutationResult, error) {
	return &labels.MutationResult{Succeeded: []labels.Outcome{}, Failed: []labels.Failure{}}, nil
}

func (f *fakeProcedures) MergeLabels(ctx context.Context, req labels.MergeLabelsRequest) (*labels.MutationResult, error) {
	f.gotMerge = req
	return &labels.MutationResult{Succeeded: []labels.Outcome{}, Failed: []labels.Failure{}}, nil
}

func call(t *testing.T, h http.Handler, name string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/procedures/"+name, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var decoded map[string]any
	if strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestGetLabels(t *testing.T) {
	procs := &fakeProcedures{}
	h := NewServer(procs, hclog.NewNullLogger(), 0).Handler()

	w, _ := call(t, h, "getLabels", `{"context": {"spaceKey": "OPS"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name": "a", "pageCount": 1, "blogPostCount": 1, "totalCount": 2}]`, w.Body.String())
	assert.Equal(t, "OPS", procs.gotContext.SpaceKey)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGetPagesWithoutBody(t *testing.T) {
	procs := &fakeProcedures{}
	h := NewServer(procs, nil, 0).Handler()

	w, _ := call(t, h, "getPages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id": "1", "title": "One"}]`, w.Body.String())
	assert.Empty(t, procs.gotContext.SpaceKey)
}

func TestAddLabel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		procs := &fakeProcedures{addRes: &labels.MutationResult{
			Succeeded: []labels.Outcome{{ContentID: "1", Label: "x", Action: labels.ActionAttach}},
			Failed:    []labels.Failure{},
		}}
		h := NewServer(procs, nil, 0).Handler()

		w, body := call(t, h, "addLabel", `{"labelName": "x", "pageIds": ["1"]}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])
		assert.Len(t, body["succeeded"], 1)
		assert.Equal(t, labels.AddLabelRequest{LabelName: "x", PageIDs: []string{"1"}}, procs.gotAdd)
	})

	t.Run("validation error", func(t *testing.T) {
		procs := &fakeProcedures{
			addRes: &labels.MutationResult{Succeeded: []labels.Outcome{}, Failed: []labels.Failure{}},
			addErr: &labels.ValidationError{Op: "addLabel", Err: errors.New("pageIds: cannot be blank")},
		}
		h := NewServer(procs, nil, 0).Handler()

		w, body := call(t, h, "addLabel", `{"labelName": "x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "validation", body["kind"])
	})

	t.Run("partial failure keeps the result", func(t *testing.T) {
		procs := &fakeProcedures{
			addRes: &labels.MutationResult{
				Succeeded: []labels.Outcome{{ContentID: "1", Label: "x", Action: labels.ActionAttach}},
				Failed: []labels.Failure{{
					Outcome: labels.Outcome{ContentID: "2", Label: "x", Action: labels.ActionAttach},
					Reason:  "403 Forbidden",
				}},
			},
			addErr: &confluence.APIError{Method: "POST", Path: "/wiki/rest/api/content/2/label", StatusCode: 403, Status: "403 Forbidden"},
		}
		h := NewServer(procs, nil, 0).Handler()

		w, body := call(t, h, "addLabel", `{"labelName": "x", "pageIds": ["1", "2"]}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "api", body["kind"])
		assert.Len(t, body["succeeded"], 1)
		require.Len(t, body["failed"], 1)
		failed := body["failed"].([]any)[0].(map[string]any)
		assert.Equal(t, "2", failed["contentId"])
		assert.Equal(t, "403 Forbidden", failed["reason"])
	})
}

func TestMergeLabelsDecodesContext(t *testing.T) {
	procs := &fakeProcedures{}
	h := NewServer(procs, nil, 0).Handler()

	w, body := call(t, h, "mergeLabels", `{"sourceLabels": ["a", "b"], "targetLabel": "c", "context": {"spaceKey": "DEV"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, labels.MergeLabelsRequest{
		SourceLabels: []string{"a", "b"},
		TargetLabel:  "c",
		Context:      labels.Context{SpaceKey: "DEV"},
	}, procs.gotMerge)
}

func TestRequestErrors(t *testing.T) {
	h := NewServer(&fakeProcedures{}, nil, 0).Handler()

	t.Run("unknown procedure", func(t *testing.T) {
		w, body := call(t, h, "renameLabel", `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, body["error"], "getLabels")
	})

	t.Run("malformed json", func(t *testing.T) {
		w, body := call(t, h, "deleteLabels", `{"labels": [`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request", body["kind"])
	})

	t.Run("unknown fields", func(t *testing.T) {
		w, _ := call(t, h, "deleteLabels", `{"lables": ["x"]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GET not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/procedures/getLabels", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestReadErrors(t *testing.T) {
	t.Run("api", func(t *testing.T) {
		procs := &fakeProcedures{labelsErr: &confluence.APIError{Method: "GET", Path: "/wiki/rest/api/content", StatusCode: 500}}
		h := NewServer(procs, nil, 0).Handler()

		w, body := call(t, h, "getLabels", `{}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "api", body["kind"])
	})

	t.Run("timeout", func(t *testing.T) {
		procs := &fakeProcedures{block: true}
		h := NewServer(procs, nil, 10*time.Millisecond).Handler()

		w, body := call(t, h, "getLabels", `{}`)
		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Equal(t, "timeout", body["kind"])
	})
}

func TestHealthz(t *testing.T) {
	h := NewServer(&fakeProcedures{}, nil, 0).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNames(t *testing.T) {
	s := NewServer(&fakeProcedures{}, nil, 0)
	assert.Equal(t, []string{"addLabel", "deleteLabels", "getLabels", "getPages", "mergeLabels"}, s.Names())
}
