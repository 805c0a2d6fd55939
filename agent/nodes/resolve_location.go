package selectornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
)

func ResolveLocation(ctx context.Context, in *GraphState, geocoder contractx.Geocoder) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if in.Coordinates != nil {
		in.Center = *in.Coordinates
		return in, nil
	}

	center, err := geocoder.Geocode(ctx, in.Location)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", in.Location, err)
	}
	log.Debug().Str("run_id", in.RunID).Str("location", in.Location).Stringer("center", center).Msg("location resolved")

	in.Center = center
	return in, nil
}
