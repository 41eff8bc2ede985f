// Package rpc serves the label procedures over HTTP, one POST endpoint per procedure, so a front
// end can invoke them by name the way it would invoke any other remote function.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/toothbrush/confluence-labels/confluence"
	"github.com/toothbrush/confluence-labels/labels"
	"golang.org/x/exp/maps"
)

// DefaultTimeout matches what the web front end has always been willing to wait.
const DefaultTimeout = 15 * time.Second

// Procedures is what the server exposes.  *labels.Organizer implements it.
type Procedures interface {
	GetLabels(ctx context.Context, c labels.Context) ([]labels.LabelUsage, error)
	GetPages(ctx context.Context, c labels.Context) ([]labels.ContentRef, error)
	AddLabel(ctx context.Context, req labels.AddLabelRequest) (*labels.MutationResult, error)
	DeleteLabels(ctx context.Context, req labels.DeleteLabelsRequest) (*labels.MutationResult, error)
	MergeLabels(ctx context.Context, req labels.MergeLabelsRequest) (*labels.MutationResult, error)
}

type Server struct {
	procs   Procedures
	logger  hclog.Logger
	timeout time.Duration

	handlers map[string]procedure
}

type procedure func(ctx context.Context, body []byte) (any, error)

type readRequest struct {
	Context labels.Context `json:"context"`
}

type mutationResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`

	*labels.MutationResult
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind"`
}

type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

// NewServer wires the procedures up.  A zero timeout means DefaultTimeout; a negative one means
// no timeout at all.
func NewServer(procs Procedures, logger hclog.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	s := &Server{
		procs:   procs,
		logger:  logger,
		timeout: timeout,
	}

	s.handlers = map[string]procedure{
		"getLabels": func(ctx context.Context, body []byte) (any, error) {
			var req readRequest
			if err := decode(body, &req); err != nil {
				return nil, err
			}
			usage, err := s.procs.GetLabels(ctx, req.Context)
			return usage, err
		},
		"getPages": func(ctx context.Context, body []byte) (any, error) {
			var req readRequest
			if err := decode(body, &req); err != nil {
				return nil, err
			}
			pages, err := s.procs.GetPages(ctx, req.Context)
			return pages, err
		},
		"addLabel": func(ctx context.Context, body []byte) (any, error) {
			var req labels.AddLabelRequest
			if err := decode(body, &req); err != nil {
				return nil, err
			}
			return mutation(s.procs.AddLabel(ctx, req))
		},
		"deleteLabels": func(ctx context.Context, body []byte) (any, error) {
			var req labels.DeleteLabelsRequest
			if err := decode(body, &req); err != nil {
				return nil, err
			}
			return mutation(s.procs.DeleteLabels(ctx, req))
		},
		"mergeLabels": func(ctx context.Context, body []byte) (any, error) {
			var req labels.MergeLabelsRequest
			if err := decode(body, &req); err != nil {
				return nil, err
			}
			return mutation(s.procs.MergeLabels(ctx, req))
		},
	}

	return s
}

func mutation(res *labels.MutationResult, err error) (any, error) {
	return &mutationResponse{Success: err == nil, MutationResult: res}, err
}

func decode(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &requestError{fmt.Errorf("rpc: couldn't parse request body: %w", err)}
	}
	return nil
}

// Handler returns a router with the procedure endpoints mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	s.RegisterHTTP(r)
	return r
}

func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/procedures/{name}", s.handleProcedure)
}

// Names lists the procedures on offer.
func (s *Server) Names() []string {
	names := maps.Keys(s.handlers)
	sort.Strings(names)
	return names
}

func (s *Server) handleProcedure(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	proc, ok := s.handlers[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error: fmt.Sprintf("unknown procedure %q, try one of: %s", name, strings.Join(s.Names(), ", ")),
			Kind:  "request",
		})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "request"})
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	payload, err := proc(ctx, body)
	if err == nil {
		writeJSON(w, http.StatusOK, payload)
		return
	}

	status, kind := classify(err)
	s.logger.Debug("procedure failed", "procedure", name, "kind", kind, "error", err)

	if mr, ok := payload.(*mutationResponse); ok && mr.MutationResult != nil {
		mr.Error = err.Error()
		mr.Kind = kind
		writeJSON(w, status, mr)
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func classify(err error) (int, string) {
	var (
		reqErr *requestError
		vErr   *labels.ValidationError
		apiErr *confluence.APIError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, "request"
	case errors.As(err, &vErr):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, "api"
	}
	return http.StatusInternalServerError, "internal"
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
