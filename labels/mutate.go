package labels

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/toothbrush/confluence-labels/confluence"
	"golang.org/x/sync/errgroup"
)

type Action string

const (
	ActionAttach Action = "attach"
	ActionDetach Action = "detach"
)

// Outcome is one label call against one piece of content.
type Outcome struct {
	ContentID string `json:"contentId" yaml:"contentId"`
	Label     string `json:"label" yaml:"label"`
	Action    Action `json:"action" yaml:"action"`
}

type Failure struct {
	Outcome `yaml:",inline"`
	Reason  string `json:"reason" yaml:"reason"`
	Err     error  `json:"-" yaml:"-"`
}

// MutationResult lists every label call that went through and every one that didn't.  Nothing is
// rolled back, so after a failure Succeeded is exactly what is now applied in Confluence.
type MutationResult struct {
	Succeeded []Outcome `json:"succeeded" yaml:"succeeded"`
	Failed    []Failure `json:"failed" yaml:"failed"`

	mu sync.Mutex
}

func newResult() *MutationResult {
	return &MutationResult{
		Succeeded: []Outcome{},
		Failed:    []Failure{},
	}
}

func (r *MutationResult) Success() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Failed) == 0
}

// Err joins every recorded failure, or returns nil.
func (r *MutationResult) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs *multierror.Error
	for _, f := range r.Failed {
		errs = multierror.Append(errs, f.Err)
	}
	return errs.ErrorOrNil()
}

func (r *MutationResult) succeed(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Succeeded = append(r.Succeeded, o)
}

func (r *MutationResult) fail(o Outcome, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed = append(r.Failed, Failure{Outcome: o, Reason: err.Error(), Err: err})
}

// Progress is told how many items are coming and when each is done.
type Progress interface {
	Expect(n int)
	Done()
}

type Mutator struct {
	API     ContentAPI
	Fetcher *Fetcher

	// Workers > 1 lets that many content items be processed at once.  Calls for a single item
	// always run in order on one goroutine.
	Workers int

	// By default the first failed call stops the operation.  With ContinueOnError every item is
	// attempted and all failures are returned together.
	ContinueOnError bool

	Progress Progress
	Logger   hclog.Logger
}

// job is all the calls for one piece of content, run in order.
type job struct {
	contentID string
	steps     []Outcome
}

// AddLabel attaches labelName to every page in pageIDs.
func (m *Mutator) AddLabel(ctx context.Context, req AddLabelRequest) (*MutationResult, error) {
	res := newResult()
	if err := req.Validate(); err != nil {
		return res, err
	}

	jobs := []job{}
	for _, id := range uniq(req.PageIDs) {
		jobs = append(jobs, job{
			contentID: id,
			steps:     []Outcome{{ContentID: id, Label: req.LabelName, Action: ActionAttach}},
		})
	}

	m.logger().Info("adding label", "label", req.LabelName, "pages", len(jobs))
	if err := m.run(ctx, res, jobs); err != nil {
		return res, err
	}
	return res, nil
}

// DeleteLabels removes each label from all content in the space that carries it.  The lookup for
// a label completes before any of its detach calls go out.
func (m *Mutator) DeleteLabels(ctx context.Context, spaceKey string, names []string) (*MutationResult, error) {
	res := newResult()
	if err := (DeleteLabelsRequest{Labels: names}).Validate(); err != nil {
		return res, err
	}

	var errs *multierror.Error
	for _, name := range uniq(names) {
		contents, err := m.lookup(ctx, spaceKey, name)
		if err != nil {
			return res, err
		}

		jobs := make([]job, 0, len(contents))
		for _, c := range contents {
			jobs = append(jobs, job{
				contentID: c.ID,
				steps:     []Outcome{{ContentID: c.ID, Label: name, Action: ActionDetach}},
			})
		}

		m.logger().Info("deleting label", "space", spaceKey, "label", name, "items", len(jobs))
		if err := m.run(ctx, res, jobs); err != nil {
			if !m.ContinueOnError {
				return res, err
			}
			errs = multierror.Append(errs, err)
		}
	}

	return res, errs.ErrorOrNil()
}

// MergeLabels moves every piece of content labelled with one of sources over to target.  For
// each item the target goes on before the source comes off, so a failure in between leaves both
// rather than neither.  A source equal to the target is skipped.
func (m *Mutator) MergeLabels(ctx context.Context, spaceKey string, sources []string, target string) (*MutationResult, error) {
	res := newResult()
	if err := (MergeLabelsRequest{SourceLabels: sources, TargetLabel: target}).Validate(); err != nil {
		return res, err
	}

	var errs *multierror.Error
	for _, source := range uniq(sources) {
		if source == target {
			m.logger().Debug("skipping merge of label into itself", "label", source)
			continue
		}

		contents, err := m.lookup(ctx, spaceKey, source)
		if err != nil {
			return res, err
		}

		jobs := make([]job, 0, len(contents))
		for _, c := range contents {
			jobs = append(jobs, job{
				contentID: c.ID,
				steps: []Outcome{
					{ContentID: c.ID, Label: target, Action: ActionAttach},
					{ContentID: c.ID, Label: source, Action: ActionDetach},
				},
			})
		}

		m.logger().Info("merging label", "space", spaceKey, "source", source, "target", target, "items", len(jobs))
		if err := m.run(ctx, res, jobs); err != nil {
			if !m.ContinueOnError {
				return res, err
			}
			errs = multierror.Append(errs, err)
		}
	}

	return res, errs.ErrorOrNil()
}

// lookup finds every page and blog post in the space carrying label.
func (m *Mutator) lookup(ctx context.Context, spaceKey string, label string) ([]confluence.Content, error) {
	contents := []confluence.Content{}
	for _, t := range []confluence.ContentType{confluence.PageContent, confluence.BlogContent} {
		found, err := m.Fetcher.Fetch(ctx, FetchQuery{SpaceKey: spaceKey, Type: t, Label: label})
		if err != nil {
			return nil, fmt.Errorf("labels: couldn't look up content labelled %q: %w", label, err)
		}
		contents = append(contents, found...)
	}
	return contents, nil
}

func (m *Mutator) run(ctx context.Context, res *MutationResult, jobs []job) error {
	if m.Progress != nil {
		m.Progress.Expect(len(jobs))
	}

	if m.Workers <= 1 {
		return m.runSequential(ctx, res, jobs)
	}
	return m.runPool(ctx, res, jobs)
}

func (m *Mutator) runSequential(ctx context.Context, res *MutationResult, jobs []job) error {
	var errs *multierror.Error
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("labels: stopped before content %s: %w", j.contentID, err)
		}

		err := m.perform(ctx, res, j)
		m.done()
		if err != nil {
			if !m.ContinueOnError {
				return err
			}
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (m *Mutator) runPool(ctx context.Context, res *MutationResult, jobs []job) error {
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(m.Workers)

	var (
		errs   *multierror.Error
		errsMu sync.Mutex
	)

	for _, j := range jobs {
		j := j
		if gctx.Err() != nil {
			// somebody failed already; don't start anything new.
			break
		}
		grp.Go(func() error {
			// Go may have waited for a free slot while another item failed.
			if gctx.Err() != nil {
				return nil
			}
			err := m.perform(gctx, res, j)
			m.done()
			if err == nil {
				return nil
			}
			if !m.ContinueOnError {
				return err
			}
			errsMu.Lock()
			errs = multierror.Append(errs, err)
			errsMu.Unlock()
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("labels: stopped: %w", err)
	}
	return errs.ErrorOrNil()
}

// perform runs one job's calls in order, stopping at the first failure.
func (m *Mutator) perform(ctx context.Context, res *MutationResult, j job) error {
	for _, step := range j.steps {
		var err error
		switch step.Action {
		case ActionAttach:
			err = m.API.AddLabel(ctx, step.ContentID, step.Label)
		case ActionDetach:
			err = m.API.RemoveLabel(ctx, step.ContentID, step.Label)
		default:
			err = fmt.Errorf("unreachable action %q", step.Action)
		}

		if err != nil {
			res.fail(step, err)
			m.logger().Debug("label call failed", "action", step.Action, "content", step.ContentID, "label", step.Label, "error", err)
			return fmt.Errorf("labels: couldn't %s label %q on content %s: %w", step.Action, step.Label, step.ContentID, err)
		}

		res.succeed(step)
		m.logger().Trace("label call done", "action", step.Action, "content", step.ContentID, "label", step.Label)
	}
	return nil
}

func (m *Mutator) done() {
	if m.Progress != nil {
		m.Progress.Done()
	}
}

func (m *Mutator) logger() hclog.Logger {
	if m.Logger == nil {
		return hclog.NewNullLogger()
	}
	return m.Logger
}
