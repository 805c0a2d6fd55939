package tool

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
)

type TopRestaurantOutput struct {
	RunID      string             `json:"run_id"`
	Text       string             `json:"text"`
	Restaurant *restaurant.Record `json:"restaurant"`
}

func executeTopRestaurant(ctx context.Context, sel Selector, tool string, args map[string]any) (contractx.ToolResult, error) {
	req, err := selectRequestFromArgs(args)
	if err != nil {
		return contractx.ToolResult{Tool: tool, Error: err.Error()}, nil
	}

	res, err := sel.Select(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("tool", tool).Str("location", req.Location).Msg("restaurant selection failed")
		return contractx.ToolResult{Tool: tool, Error: restaurant.Message(err)}, nil
	}
	if err := res.Err(); err != nil {
		return contractx.ToolResult{Tool: tool, Error: restaurant.Message(err)}, nil
	}

	return contractx.ToolResult{
		Tool: tool,
		Result: TopRestaurantOutput{
			RunID:      res.RunID,
			Text:       res.Text,
			Restaurant: res.Record,
		},
	}, nil
}

func selectRequestFromArgs(args map[string]any) (contractx.SelectRequest, error) {
	var req contractx.SelectRequest
	var err error

	if req.Location, err = stringArg(args, "location"); err != nil {
		return req, err
	}
	if req.Date, err = stringArg(args, "date"); err != nil {
		return req, err
	}
	if req.RunID, err = stringArg(args, "run_id"); err != nil {
		return req, err
	}
	if req.Latitude, err = numberArg(args, "latitude"); err != nil {
		return req, err
	}
	if req.Longitude, err = numberArg(args, "longitude"); err != nil {
		return req, err
	}
	return req, nil
}
