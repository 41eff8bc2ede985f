package labels

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Context carries the caller's optional hint about which space it is looking at.
type Context struct {
	SpaceKey string `json:"spaceKey,omitempty"`
}

type AddLabelRequest struct {
	LabelName string   `json:"labelName"`
	PageIDs   []string `json:"pageIds"`
}

type DeleteLabelsRequest struct {
	Labels  []string `json:"labels"`
	Context Context  `json:"context"`
}

type MergeLabelsRequest struct {
	SourceLabels []string `json:"sourceLabels"`
	TargetLabel  string   `json:"targetLabel"`
	Context      Context  `json:"context"`
}

// ValidationError means a request was rejected before anything was sent to Confluence.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("labels: invalid %s request: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Confluence refuses labels with whitespace in them, or longer than 255 characters.
var labelName = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	if utf8.RuneCountInString(s) > 255 {
		return errors.New("must be at most 255 characters")
	}
	if strings.IndexFunc(s, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }) >= 0 {
		return errors.New("must not contain whitespace")
	}
	return nil
})

func (r AddLabelRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.LabelName, validation.Required, labelName),
		validation.Field(&r.PageIDs, validation.Required, validation.Each(validation.Required)),
	)
	if err != nil {
		return &ValidationError{Op: "addLabel", Err: err}
	}
	return nil
}

func (r DeleteLabelsRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Labels, validation.Required, validation.Each(labelName)),
	)
	if err != nil {
		return &ValidationError{Op: "deleteLabels", Err: err}
	}
	return nil
}

func (r MergeLabelsRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.SourceLabels,
			validation.Required,
			validation.Each(labelName),
			validation.By(func(interface{}) error {
				for _, s := range r.SourceLabels {
					if s != r.TargetLabel {
						return nil
					}
				}
				return errors.New("must contain a label other than the target")
			}),
		),
		validation.Field(&r.TargetLabel, validation.Required, labelName),
	)
	if err != nil {
		return &ValidationError{Op: "mergeLabels", Err: err}
	}
	return nil
}

// uniq drops repeats, keeping first occurrences in order.
func uniq(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
