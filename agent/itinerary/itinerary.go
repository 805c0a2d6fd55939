// Package itinerary attaches one restaurant to every stop of a trip plan.
package itinerary

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/tanpawarit/trip-dining/agent/agents/selector"
	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/geo"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
)

// Stop is one place the traveller visits on a given day. Period is
// "morning" or "afternoon" and decides whether the meal is lunch or dinner.
type Stop struct {
	Location  string   `yaml:"location" json:"location"`
	Date      string   `yaml:"date" json:"date"`
	Period    string   `yaml:"period,omitempty" json:"period,omitempty"`
	Latitude  *float64 `yaml:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `yaml:"longitude,omitempty" json:"longitude,omitempty"`
}

type Plan struct {
	RunID string `yaml:"run_id,omitempty" json:"run_id,omitempty"`
	Stops []Stop `yaml:"locations" json:"locations"`
}

// Entry is the restaurant picked for a stop, or the reason none was.
type Entry struct {
	Location     string   `json:"location"`
	Date         string   `json:"date"`
	Period       string   `json:"period,omitempty"`
	Name         string   `json:"name,omitempty"`
	Address      string   `json:"address,omitempty"`
	Rating       *float64 `json:"rating"`
	OpeningHours string   `json:"opening_hours"`
	Cuisine      string   `json:"cuisine,omitempty"`
	Error        string   `json:"error,omitempty"`

	StopLocation       *geo.Coordinate `json:"stop_location,omitempty"`
	RestaurantLocation *geo.Coordinate `json:"restaurant_location,omitempty"`
}

type Selector interface {
	Select(ctx context.Context, req contractx.SelectRequest) (selector.Result, error)
}

// Parse reads a plan in YAML or JSON. A bare list of stops is accepted too.
func Parse(data []byte) (Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		var stops []Stop
		if listErr := yaml.Unmarshal(data, &stops); listErr != nil {
			return Plan{}, fmt.Errorf("%w: parse itinerary: %v", contractx.ErrValidation, err)
		}
		plan.Stops = stops
	}
	if len(plan.Stops) == 0 {
		return Plan{}, fmt.Errorf("%w: itinerary has no locations", contractx.ErrValidation)
	}
	return plan, nil
}

func Load(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	return Parse(data)
}

// Run selects a restaurant for each stop in order, all in one run so no
// venue repeats across the trip. A failed stop is recorded in its entry.
func Run(ctx context.Context, sel Selector, plan Plan) ([]Entry, error) {
	entries := make([]Entry, 0, len(plan.Stops))
	for i, stop := range plan.Stops {
		if err := ctx.Err(); err != nil {
			return entries, err
		}

		entry := Entry{
			Location: strings.TrimSpace(stop.Location),
			Date:     strings.TrimSpace(stop.Date),
			Period:   strings.ToLower(strings.TrimSpace(stop.Period)),
		}

		res, err := sel.Select(ctx, contractx.SelectRequest{
			RunID:     plan.RunID,
			Location:  stop.Location,
			Latitude:  stop.Latitude,
			Longitude: stop.Longitude,
			Date:      stop.Date,
		})
		if err == nil {
			center := res.Center
			entry.StopLocation = &center
			err = res.Err()
		}
		if err != nil {
			log.Warn().Err(err).Int("stop", i).Str("location", entry.Location).Msg("no restaurant for stop")
			entry.Error = restaurant.Message(err)
			entries = append(entries, entry)
			continue
		}

		rec := res.Record
		entry.Name = rec.Name
		entry.Address = rec.Address
		entry.Rating = rec.Rating
		entry.OpeningHours = rec.OpeningHours
		entry.Cuisine = rec.Cuisine
		if res.Detail != nil {
			venue := res.Detail.Location
			entry.RestaurantLocation = &venue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
