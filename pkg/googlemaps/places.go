package googlemaps

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/geo"
)

// Geocode returns the first match for address.
func (c *Client) Geocode(ctx context.Context, address string) (geo.Coordinate, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return geo.Coordinate{}, contract.ErrMissingInput
	}

	var resp geocodeResponse
	status, err := c.call(ctx, "geocode/json", url.Values{"address": {address}}, c.geocodeTimeout, &resp)
	if err != nil {
		return geo.Coordinate{}, err
	}
	if status == statusZeroResults || len(resp.Results) == 0 {
		return geo.Coordinate{}, fmt.Errorf("%w: %q", contract.ErrLocationNotFound, address)
	}

	loc := resp.Results[0].Geometry.Location
	return geo.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// SearchNearby runs a single-page nearby search. ZERO_RESULTS yields an
// empty slice.
func (c *Client) SearchNearby(ctx context.Context, center geo.Coordinate, radiusMeters int, placeType string) ([]contract.Candidate, error) {
	params := url.Values{
		"location": {center.String()},
		"radius":   {strconv.Itoa(radiusMeters)},
	}
	if placeType != "" {
		params.Set("type", placeType)
	}

	var resp nearbyResponse
	if _, err := c.call(ctx, "place/nearbysearch/json", params, c.searchTimeout, &resp); err != nil {
		return nil, err
	}

	out := make([]contract.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.PlaceID == "" {
			continue
		}
		out = append(out, contract.Candidate{
			PlaceID:  r.PlaceID,
			Name:     r.Name,
			Location: geo.Coordinate{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			Rating:   r.Rating,
			Types:    r.Types,
		})
	}
	return out, nil
}

func (c *Client) PlaceDetail(ctx context.Context, placeID string) (contract.VenueDetail, error) {
	if strings.TrimSpace(placeID) == "" {
		return contract.VenueDetail{}, fmt.Errorf("%w: place id is required", contract.ErrValidation)
	}

	params := url.Values{
		"place_id": {placeID},
		"fields":   {detailFields},
	}
	var resp detailsResponse
	status, err := c.call(ctx, detailsEndpoint, params, c.searchTimeout, &resp)
	if err != nil {
		return contract.VenueDetail{}, err
	}
	if status == statusZeroResults {
		return contract.VenueDetail{}, &APIError{Endpoint: detailsEndpoint, Status: status, Message: placeID}
	}

	r := resp.Result
	detail := contract.VenueDetail{
		PlaceID:          placeID,
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		Location:         geo.Coordinate{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Rating:           r.Rating,
		Types:            r.Types,
	}
	if r.OpeningHours != nil {
		detail.WeekdayText = r.OpeningHours.WeekdayText
	}
	return detail, nil
}
