package labels

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toothbrush/confluence-labels/confluence"
)

func newMutator(api *fakeAPI) *Mutator {
	return &Mutator{API: api, Fetcher: &Fetcher{API: api}}
}

type countingProgress struct {
	mu       sync.Mutex
	expected int
	done     int
}

func (p *countingProgress) Expect(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expected += n
}

func (p *countingProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
}

func TestAddLabel(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches to every page once", func(t *testing.T) {
		api := newFakeAPI()
		progress := &countingProgress{}
		m := newMutator(api)
		m.Progress = progress

		res, err := m.AddLabel(ctx, AddLabelRequest{LabelName: "new", PageIDs: []string{"1", "2", "1"}})
		require.NoError(t, err)
		assert.True(t, res.Success())
		assert.Equal(t, []string{"attach 1 new", "attach 2 new"}, api.recorded())
		assert.Len(t, res.Succeeded, 2)
		assert.Equal(t, 2, progress.expected)
		assert.Equal(t, 2, progress.done)
	})

	t.Run("empty selection issues no calls", func(t *testing.T) {
		api := newFakeAPI()

		res, err := newMutator(api).AddLabel(ctx, AddLabelRequest{LabelName: "new"})
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "addLabel", vErr.Op)
		assert.Empty(t, api.recorded())
		assert.Empty(t, res.Succeeded)
	})

	t.Run("blank label issues no calls", func(t *testing.T) {
		for _, name := range []string{"", "   ", "two words"} {
			api := newFakeAPI()

			_, err := newMutator(api).AddLabel(ctx, AddLabelRequest{LabelName: name, PageIDs: []string{"1"}})
			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr), "label %q", name)
			assert.Empty(t, api.recorded())
		}
	})

	t.Run("stops at the first failure without rollback", func(t *testing.T) {
		api := newFakeAPI()
		boom := errors.New("boom")
		api.failOn["attach 2 new"] = boom

		res, err := newMutator(api).AddLabel(ctx, AddLabelRequest{LabelName: "new", PageIDs: []string{"1", "2", "3"}})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"attach 1 new", "attach 2 new"}, api.recorded())
		assert.Equal(t, []Outcome{{ContentID: "1", Label: "new", Action: ActionAttach}}, res.Succeeded)
		require.Len(t, res.Failed, 1)
		assert.Equal(t, "2", res.Failed[0].ContentID)
		assert.Equal(t, "boom", res.Failed[0].Reason)
		assert.False(t, res.Success())
	})

	t.Run("keep going collects every failure", func(t *testing.T) {
		api := newFakeAPI()
		api.failOn["attach 1 new"] = errors.New("one")
		api.failOn["attach 3 new"] = errors.New("three")
		m := newMutator(api)
		m.ContinueOnError = true

		res, err := m.AddLabel(ctx, AddLabelRequest{LabelName: "new", PageIDs: []string{"1", "2", "3"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "one")
		assert.Contains(t, err.Error(), "three")
		assert.Len(t, api.recorded(), 3)
		assert.Len(t, res.Succeeded, 1)
		assert.Len(t, res.Failed, 2)
		assert.Error(t, res.Err())
	})
}

func TestDeleteLabels(t *testing.T) {
	ctx := context.Background()

	t.Run("one detach per item in lookup order", func(t *testing.T) {
		api := newFakeAPI()
		api.put(confluence.PageContent, "x", content("20", "x"), content("10", "x"))

		res, err := newMutator(api).DeleteLabels(ctx, "DEV", []string{"x"})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"list page label=x start=0",
			"list blogpost label=x start=0",
			"detach 20 x",
			"detach 10 x",
		}, api.recorded())
		assert.Len(t, res.Succeeded, 2)
	})

	t.Run("blog posts too", func(t *testing.T) {
		api := newFakeAPI()
		api.put(confluence.PageContent, "x", content("1", "x"))
		api.put(confluence.BlogContent, "x", content("2", "x"))

		_, err := newMutator(api).DeleteLabels(ctx, "DEV", []string{"x"})
		require.NoError(t, err)
		assert.Contains(t, api.recorded(), "detach 1 x")
		assert.Contains(t, api.recorded(), "detach 2 x")
	})

	t.Run("whole lookup before any detach", func(t *testing.T) {
		api := newFakeAPI()
		for i := 0; i < 5; i++ {
			api.put(confluence.PageContent, "x", content(fmt.Sprint(i), "x"))
		}
		m := newMutator(api)
		m.Fetcher.PageSize = 2

		_, err := m.DeleteLabels(ctx, "DEV", []string{"x"})
		require.NoError(t, err)

		calls := api.recorded()
		lastList, firstDetach := -1, -1
		for i, c := range calls {
			if strings.HasPrefix(c, "list") {
				lastList = i
			}
			if strings.HasPrefix(c, "detach") && firstDetach < 0 {
				firstDetach = i
			}
		}
		assert.Less(t, lastList, firstDetach)
		assert.Equal(t, 5, len(calls)-firstDetach)
	})

	t.Run("failure aborts the rest", func(t *testing.T) {
		api := newFakeAPI()
		api.put(confluence.PageContent, "x", content("1", "x"), content("2", "x"))
		api.put(confluence.PageContent, "y", content("3", "y"))
		api.failOn["detach 1 x"] = errors.New("nope")

		res, err := newMutator(api).DeleteLabels(ctx, "DEV", []string{"x", "y"})
		require.Error(t, err)
		assert.NotContains(t, api.recorded(), "detach 2 x")
		assert.NotContains(t, api.recorded(), "list page label=y start=0")
		assert.Empty(t, res.Succeeded)
		assert.Len(t, res.Failed, 1)
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		api := newFakeAPI()
		api.failOn["list page label=x start=0"] = &confluence.APIError{Method: "GET", Path: "/wiki/rest/api/content", StatusCode: 503}

		_, err := newMutator(api).DeleteLabels(ctx, "DEV", []string{"x"})
		var apiErr *confluence.APIError
		assert.True(t, errors.As(err, &apiErr))
	})

	t.Run("nothing to delete", func(t *testing.T) {
		api := newFakeAPI()

		_, err := newMutator(api).DeleteLabels(ctx, "DEV", nil)
		var vErr *ValidationError
		assert.True(t, errors.As(err, &vErr))
		assert.Empty(t, api.recorded())
	})
}

func TestMergeLabels(t *testing.T) {
	ctx := context.Background()

	t.Run("attach strictly before detach", func(t *testing.T) {
		api := newFakeAPI()
		api.put(confluence.PageContent, "old", content("1", "old"))

		res, err := newMutator(api).MergeLabels(ctx, "DEV", []string{"old"}, "new")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"list page label=old start=0",
			"list blogpost label=old start=0",
			"attach 1 new",
			"detach 1 old",
		}, api.recorded())
		assert.Equal(t, []Outcome{
			{ContentID: "1", Label: "new", Action: ActionAttach},
			{ContentID: "1", Label: "old", Action: ActionDetach},
		}, res.Succeeded)
	})

	t.Run("skips the target among the sources", func(t *testing.T) {
		api := newFakeAPI()
		api.put(confluence.PageContent, "new", content("1", "new"))
		api.put(confluence.PageContent, "old", content("2", "old"))

		_, err := newMutator(api).MergeLabels(ctx, "DEV", []string{"new", "old"}, "new")
		require.NoError(t, err)
		for _, c := range api.recorded() {
			assert.NotContains(t, c, "label=new")
			assert.NotEqual(t, "detach 1 new", c)
			assert.NotEqual(t, "attach 1 new", c)
		}
		assert.Contains(t, api.recorded(), "attach 2 new")
		assert.Contains(t, api.recorded(), "detach 2 old")
	})

	t.Run("only the target is a conflict", func(t *testing.T) {
		api := newFakeAPI()

		_, err := newMutator(api).MergeLabels(ctx, "DEV", []string{"new"}, "new")
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Empty(t, api.recorded())
	})

	t.Run("missing target", func(t *testing.T) {
		api := newFakeAPI()

		_, err := newMutator(api).MergeLabels(ctx, "DEV", []string{"old"}, "")
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Empty(t, api.recorded())
	})

	t.Run("failed attach leaves the source alone", func(t *testing.T) {
		api := newFakeAPI()
		api.put(confluence.PageContent, "old", content("1", "old"))
		api.failOn["attach 1 new"] = errors.New("denied")

		res, err := newMutator(api).MergeLabels(ctx, "DEV", []string{"old"}, "new")
		require.Error(t, err)
		assert.NotContains(t, api.recorded(), "detach 1 old")
		require.Len(t, res.Failed, 1)
		assert.Equal(t, ActionAttach, res.Failed[0].Action)
	})

	t.Run("shared content gets redundant attaches", func(t *testing.T) {
		api := newFakeAPI()
		api.put(confluence.PageContent, "a", content("1", "a", "b"))
		api.put(confluence.PageContent, "b", content("1", "a", "b"))

		_, err := newMutator(api).MergeLabels(ctx, "DEV", []string{"a", "b"}, "c")
		require.NoError(t, err)

		attaches := 0
		for _, c := range api.recorded() {
			if c == "attach 1 c" {
				attaches++
			}
		}
		assert.Equal(t, 2, attaches)
	})
}

func TestMutatorWorkers(t *testing.T) {
	ctx := context.Background()

	t.Run("per-item order holds under concurrency", func(t *testing.T) {
		api := newFakeAPI()
		for i := 0; i < 40; i++ {
			api.put(confluence.PageContent, "old", content(fmt.Sprint(i), "old"))
		}
		m := newMutator(api)
		m.Workers = 8

		res, err := m.MergeLabels(ctx, "DEV", []string{"old"}, "new")
		require.NoError(t, err)
		assert.Len(t, res.Succeeded, 80)

		attachedAt := map[string]int{}
		for i, c := range api.recorded() {
			var action, id, label string
			if _, err := fmt.Sscan(c, &action, &id, &label); err != nil || action == "list" {
				continue
			}
			switch action {
			case "attach":
				attachedAt[id] = i
			case "detach":
				at, ok := attachedAt[id]
				require.True(t, ok, "detach before attach for %s", id)
				assert.Less(t, at, i)
			}
		}
		assert.Len(t, attachedAt, 40)
	})

	t.Run("fail fast", func(t *testing.T) {
		api := newFakeAPI()
		for i := 0; i < 10; i++ {
			api.put(confluence.PageContent, "x", content(fmt.Sprint(i), "x"))
		}
		api.failOn["detach 0 x"] = errors.New("nope")
		m := newMutator(api)
		m.Workers = 2

		res, err := m.DeleteLabels(ctx, "DEV", []string{"x"})
		require.Error(t, err)
		assert.False(t, res.Success())
	})

	t.Run("fail fast starts nothing after the failure", func(t *testing.T) {
		api := newFakeAPI()
		api.delay = 50 * time.Millisecond
		api.failOn["attach 0 new"] = errors.New("nope")
		m := newMutator(api)
		m.Workers = 2

		res, err := m.AddLabel(ctx, AddLabelRequest{LabelName: "new", PageIDs: []string{"1", "0", "2", "3", "4"}})
		require.Error(t, err)

		// item 1 was already in flight when 0 failed; nothing queued behind them may start.
		assert.ElementsMatch(t, []string{"attach 1 new", "attach 0 new"}, api.recorded())
		assert.Equal(t, []Outcome{{ContentID: "1", Label: "new", Action: ActionAttach}}, res.Succeeded)
		require.Len(t, res.Failed, 1)
		assert.Equal(t, "0", res.Failed[0].ContentID)
	})

	t.Run("keep going", func(t *testing.T) {
		api := newFakeAPI()
		for i := 0; i < 10; i++ {
			api.put(confluence.PageContent, "x", content(fmt.Sprint(i), "x"))
		}
		api.failOn["detach 3 x"] = errors.New("nope")
		m := newMutator(api)
		m.Workers = 4
		m.ContinueOnError = true

		res, err := m.DeleteLabels(ctx, "DEV", []string{"x"})
		require.Error(t, err)
		assert.Len(t, res.Succeeded, 9)
		assert.Len(t, res.Failed, 1)
	})
}
