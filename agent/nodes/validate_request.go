package selectornode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/geo"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
	statex "github.com/tanpawarit/trip-dining/agent/state"
)

type GraphInput struct {
	Request contractx.SelectRequest
}

type GraphOutput struct {
	RunID    string
	Status   restaurant.Status
	Center   geo.Coordinate
	Detail   *contractx.VenueDetail
	Record   *restaurant.Record
	Text     string
	Examined int
	Rejected []restaurant.Rejection
}

type GraphState struct {
	RunID       string
	Location    string
	Coordinates *geo.Coordinate
	Date        string
	Now         time.Time

	Memory     *statex.Memory
	Center     geo.Coordinate
	Candidates []contractx.Candidate
	Selection  restaurant.Selection

	Record *restaurant.Record
	Text   string
}

// ValidateRequest turns the tool input into graph state. Coordinates win
// over the textual location when both are present.
func ValidateRequest(in GraphInput, nowFn func() time.Time, defaultRunID string) (*GraphState, error) {
	req := in.Request

	runID := strings.TrimSpace(req.RunID)
	if runID == "" {
		runID = defaultRunID
	}
	if runID == "" {
		return nil, statex.ErrInvalidRun
	}

	st := &GraphState{
		RunID:    runID,
		Location: strings.TrimSpace(req.Location),
		Date:     strings.TrimSpace(req.Date),
		Now:      nowFn().UTC(),
	}

	if req.HasCoordinates() {
		c := geo.Coordinate{Lat: *req.Latitude, Lng: *req.Longitude}
		if !c.Valid() {
			return nil, fmt.Errorf("%w: coordinates %s out of range", contractx.ErrValidation, c)
		}
		st.Coordinates = &c
		return st, nil
	}

	if st.Location == "" {
		return nil, contractx.ErrMissingInput
	}
	return st, nil
}
