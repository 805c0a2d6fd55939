package selectornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
)

func SelectVenue(
	ctx context.Context,
	in *GraphState,
	details contractx.DetailFetcher,
	proximityMeters float64,
) (*GraphState, error) {
	if in == nil || in.Memory == nil {
		return nil, fmt.Errorf("%w: graph memory is nil", contractx.ErrValidation)
	}

	sel, err := restaurant.SelectDistinct(ctx, details, in.Candidates, in.Memory, proximityMeters, in.Now)
	if err != nil {
		return nil, err
	}
	in.Selection = sel
	return in, nil
}
