package selectornode

import (
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
)

func Finalize(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	status := in.Selection.Status
	if status == "" {
		status = restaurant.StatusNoCandidates
	}

	out := GraphOutput{
		RunID:    in.RunID,
		Status:   status,
		Center:   in.Center,
		Detail:   in.Selection.Detail,
		Record:   in.Record,
		Text:     in.Text,
		Examined: in.Selection.Examined,
		Rejected: in.Selection.Rejected,
	}
	if status == restaurant.StatusSelected && in.Record == nil {
		return GraphOutput{}, fmt.Errorf("%w: selected venue was not normalized", contractx.ErrValidation)
	}

	log.Info().
		Str("run_id", out.RunID).
		Str("status", string(out.Status)).
		Int("examined", out.Examined).
		Int("rejected", len(out.Rejected)).
		Msg("restaurant selection finished")
	return out, nil
}
