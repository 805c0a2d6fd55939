package selectornode

import (
	"fmt"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
)

func NormalizeDetail(
	in *GraphState,
	mode restaurant.HoursMode,
	placeType string,
	format restaurant.Format,
) (*GraphState, error) {
	if in == nil || in.Selection.Detail == nil {
		return nil, fmt.Errorf("%w: no selected venue to normalize", contractx.ErrValidation)
	}

	rec := restaurant.Normalize(*in.Selection.Detail, in.Date, mode, placeType)
	text, err := restaurant.Render(rec, format)
	if err != nil {
		return nil, err
	}

	in.Record = &rec
	in.Text = text
	return in, nil
}
