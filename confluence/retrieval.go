package confluence

import (
	"context"
	"fmt"
	"time"
)

func (api *API) ListAllSpaces(ctx context.Context, includePersonal bool) (map[string]Space, error) {
	spaces := map[string]Space{}

	query := SpacesQuery{
		Limit: 25,
	}

	if !includePersonal {
		// The `type` parameter may be "global", "personal", or nothing at all for both.  Leaving
		// it empty gives us everything, so we only set this if we _do not_ intend to include
		// personal spaces in our query.
		query.Type = "global"
	}

	for {
		allspaces, err := api.getSpacesPage(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("confluence: couldn't list spaces: %w", err)
		}

		for _, space := range allspaces.Results {
			spaces[space.Key] = space
		}

		next, more, err := ResolveNext(allspaces.Links.Next)
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		if !next.Advances(query.Start, query.Cursor) {
			return nil, fmt.Errorf("confluence: _links.next did not advance past offset %d", query.Start)
		}
		query.Start, query.Cursor = next.Start, next.Cursor
	}

	return spaces, nil
}

func (api *API) getSpacesPage(ctx context.Context, query SpacesQuery) (*AllSpaces, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return api.GetSpaces(ctx, query)
}
