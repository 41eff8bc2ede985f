package labels

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/toothbrush/confluence-labels/confluence"
)

// DefaultFallbackSpace is used when nothing better is configured.
const DefaultFallbackSpace = "DEV"

// Source says where a resolved space key came from.
type Source int

const (
	SourceHint Source = iota
	SourceAPI
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceHint:
		return "hint"
	case SourceAPI:
		return "api"
	default:
		return "fallback"
	}
}

// Resolution is the outcome of resolving a space key.  Key is never empty.  When Source is
// SourceFallback the key is a guess, and Err holds whatever made us guess (nil if the space list
// simply came back empty).
type Resolution struct {
	Key    string
	Source Source
	Err    error
}

func (r Resolution) Degraded() bool {
	return r.Source == SourceFallback
}

type SpaceResolver struct {
	API      ContentAPI
	Fallback string
	Logger   hclog.Logger
}

// Resolve picks the space to operate on: the caller's hint if there is one, else the first space
// Confluence lists (in whatever order it lists them, so with several spaces this is not stable
// across accounts), else the fallback.  It never fails.
func (r *SpaceResolver) Resolve(ctx context.Context, hint string) Resolution {
	logger := r.logger()

	if hint != "" {
		logger.Debug("using space key from context", "space", hint)
		return Resolution{Key: hint, Source: SourceHint}
	}

	spaces, err := r.API.GetSpaces(ctx, confluence.SpacesQuery{Limit: 1})
	if err == nil && len(spaces.Results) > 0 && spaces.Results[0].Key != "" {
		logger.Debug("using first listed space", "space", spaces.Results[0].Key)
		return Resolution{Key: spaces.Results[0].Key, Source: SourceAPI}
	}

	if err != nil {
		err = fmt.Errorf("labels: couldn't list spaces: %w", err)
	}

	fallback := r.Fallback
	if fallback == "" {
		fallback = DefaultFallbackSpace
	}

	if err != nil {
		logger.Warn("space lookup failed, using fallback space key", "space", fallback, "error", err)
	} else {
		logger.Warn("no spaces found, using fallback space key", "space", fallback)
	}

	return Resolution{Key: fallback, Source: SourceFallback, Err: err}
}

func (r *SpaceResolver) logger() hclog.Logger {
	if r.Logger == nil {
		return hclog.NewNullLogger()
	}
	return r.Logger
}
