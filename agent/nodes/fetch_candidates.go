package selectornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
)

func FetchCandidates(
	ctx context.Context,
	in *GraphState,
	searcher contractx.NearbySearcher,
	radiusMeters int,
	placeType string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	candidates, err := searcher.SearchNearby(ctx, in.Center, radiusMeters, placeType)
	if err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}
	log.Debug().
		Str("run_id", in.RunID).
		Stringer("center", in.Center).
		Int("candidates", len(candidates)).
		Msg("nearby candidates fetched")

	in.Candidates = candidates
	return in, nil
}
