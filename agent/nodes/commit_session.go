package selectornode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	statex "github.com/tanpawarit/trip-dining/agent/state"
)

// CommitSession persists the run memory after a venue was claimed. The
// claim already holds in this process, so a failed save is logged and the
// venue is still returned.
func CommitSession(ctx context.Context, in *GraphState, registry *statex.Registry) (*GraphState, error) {
	if in == nil || in.Memory == nil {
		return nil, fmt.Errorf("%w: graph memory is nil", contractx.ErrValidation)
	}

	err := registry.Commit(ctx, in.Memory)
	switch {
	case err == nil:
	case errors.Is(err, statex.ErrRunForgotten):
		log.Info().Str("run_id", in.RunID).Msg("run forgotten during selection, memory not persisted")
	default:
		log.Error().Err(err).Str("run_id", in.RunID).Msg("persist run memory failed")
	}
	return in, nil
}
