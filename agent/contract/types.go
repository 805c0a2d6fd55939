package contract

import (
	"github.com/tanpawarit/trip-dining/agent/geo"
)

// Candidate is a venue returned by a nearby search, before detail enrichment.
type Candidate struct {
	PlaceID  string         `json:"place_id"`
	Name     string         `json:"name"`
	Location geo.Coordinate `json:"location"`
	Rating   *float64       `json:"rating,omitempty"` // nil when the venue is unrated
	Types    []string       `json:"types,omitempty"`
}

// Score is the ranking key; unrated venues sort as zero.
func (c Candidate) Score() float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}

// VenueDetail is the detail lookup of a single venue.
type VenueDetail struct {
	PlaceID          string         `json:"place_id"`
	Name             string         `json:"name"`
	FormattedAddress string         `json:"formatted_address"`
	Location         geo.Coordinate `json:"location"`
	Rating           *float64       `json:"rating,omitempty"`
	WeekdayText      []string       `json:"weekday_text,omitempty"` // Monday first
	Types            []string       `json:"types,omitempty"`
}

// SelectRequest is the tool input of top_restaurant.
type SelectRequest struct {
	RunID     string   `json:"run_id,omitempty"`
	Location  string   `json:"location,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Date      string   `json:"date,omitempty"` // YYYY-MM-DD
}

// HasCoordinates reports whether both latitude and longitude were supplied.
func (r SelectRequest) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
