package tool

import (
	"context"
	"errors"
	"fmt"
	"math"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/geo"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
)

type DistanceOutput struct {
	Origin      geo.Coordinate `json:"origin"`
	Destination geo.Coordinate `json:"destination"`
	Meters      float64        `json:"meters"`
	Kilometers  float64        `json:"kilometers"`
}

func executeDistance(ctx context.Context, geocoder contractx.Geocoder, tool string, args map[string]any) (contractx.ToolResult, error) {
	origin, err := endpointFromArgs(ctx, geocoder, args, "origin")
	if err != nil {
		return contractx.ToolResult{Tool: tool, Error: distanceMessage(err)}, nil
	}
	destination, err := endpointFromArgs(ctx, geocoder, args, "destination")
	if err != nil {
		return contractx.ToolResult{Tool: tool, Error: distanceMessage(err)}, nil
	}

	meters := geo.Distance(origin, destination)
	return contractx.ToolResult{
		Tool: tool,
		Result: DistanceOutput{
			Origin:      origin,
			Destination: destination,
			Meters:      math.Round(meters*10) / 10,
			Kilometers:  math.Round(meters) / 1000,
		},
	}, nil
}

func endpointFromArgs(ctx context.Context, geocoder contractx.Geocoder, args map[string]any, name string) (geo.Coordinate, error) {
	lat, err := numberArg(args, name+"_lat")
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}
	lng, err := numberArg(args, name+"_lng")
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}
	if lat != nil && lng != nil {
		c := geo.Coordinate{Lat: *lat, Lng: *lng}
		if !c.Valid() {
			return geo.Coordinate{}, fmt.Errorf("%w: %s coordinates out of range", contractx.ErrValidation, name)
		}
		return c, nil
	}

	text, err := stringArg(args, name)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}
	if text == "" {
		return geo.Coordinate{}, fmt.Errorf("%w: %s is required", contractx.ErrMissingInput, name)
	}
	if geocoder == nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %s must be given as coordinates", contractx.ErrValidation, name)
	}
	return geocoder.Geocode(ctx, text)
}

func distanceMessage(err error) string {
	switch {
	case errors.Is(err, contractx.ErrMissingInput):
		return "ERROR: Please provide both an origin and a destination."
	case errors.Is(err, contractx.ErrValidation):
		return "ERROR: " + err.Error()
	default:
		return restaurant.Message(err)
	}
}
