package selectornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	statex "github.com/tanpawarit/trip-dining/agent/state"
)

func OpenSession(ctx context.Context, in *GraphState, registry *statex.Registry) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	mem, err := registry.Open(ctx, in.RunID)
	if err != nil {
		return nil, err
	}
	in.Memory = mem
	return in, nil
}
