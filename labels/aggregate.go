package labels

import (
	"strings"

	"github.com/toothbrush/confluence-labels/confluence"
	"golang.org/x/exp/slices"
)

// LabelUsage tallies where one label is used.  TotalCount is always PageCount + BlogPostCount.
type LabelUsage struct {
	Name          string `json:"name" yaml:"name"`
	PageCount     int    `json:"pageCount" yaml:"pageCount"`
	BlogPostCount int    `json:"blogPostCount" yaml:"blogPostCount"`
	TotalCount    int    `json:"totalCount" yaml:"totalCount"`
}

// Usage is the label index built by Aggregate.  It remembers the order in which labels were
// first seen.
type Usage struct {
	order   []string
	records map[string]*LabelUsage
}

// Aggregate counts label occurrences: pages first, then blog posts.  Every label reported on an
// item counts once per report, so duplicates in an item's label list are counted as the API
// gives them.
func Aggregate(pages []confluence.Content, blogPosts []confluence.Content) *Usage {
	u := &Usage{records: make(map[string]*LabelUsage)}

	for _, page := range pages {
		for _, name := range page.LabelNames() {
			u.record(name).PageCount++
		}
	}

	for _, post := range blogPosts {
		for _, name := range post.LabelNames() {
			u.record(name).BlogPostCount++
		}
	}

	for _, r := range u.records {
		r.TotalCount = r.PageCount + r.BlogPostCount
	}

	return u
}

func (u *Usage) record(name string) *LabelUsage {
	r, ok := u.records[name]
	if !ok {
		r = &LabelUsage{Name: name}
		u.records[name] = r
		u.order = append(u.order, name)
	}
	return r
}

// Records returns a copy of every record in first-seen order.
func (u *Usage) Records() []LabelUsage {
	out := make([]LabelUsage, 0, len(u.order))
	for _, name := range u.order {
		out = append(out, *u.records[name])
	}
	return out
}

func (u *Usage) Get(name string) (LabelUsage, bool) {
	r, ok := u.records[name]
	if !ok {
		return LabelUsage{}, false
	}
	return *r, true
}

func (u *Usage) Len() int {
	return len(u.order)
}

type SortKey string

const (
	SortNone  SortKey = ""
	SortName  SortKey = "name"
	SortCount SortKey = "count"
)

// SortUsage orders records for display: by name ascending, or by total count descending with
// ties broken by name.  SortNone leaves them alone.
func SortUsage(records []LabelUsage, by SortKey) {
	switch by {
	case SortName:
		slices.SortStableFunc(records, func(a, b LabelUsage) int {
			return strings.Compare(a.Name, b.Name)
		})
	case SortCount:
		slices.SortStableFunc(records, func(a, b LabelUsage) int {
			if a.TotalCount != b.TotalCount {
				return b.TotalCount - a.TotalCount
			}
			return strings.Compare(a.Name, b.Name)
		})
	}
}

// FilterUsage keeps records whose name contains substr, case-insensitively.
func FilterUsage(records []LabelUsage, substr string) []LabelUsage {
	if substr == "" {
		return records
	}
	needle := strings.ToLower(substr)
	out := []LabelUsage{}
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}
