package contract

import (
	"context"

	"github.com/tanpawarit/trip-dining/agent/geo"
)

// Geocoder resolves free text into a coordinate.
// It returns ErrLocationNotFound when the upstream yields no result.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Coordinate, error)
}

// NearbySearcher lists venues of placeType within radiusMeters of center.
// An empty slice is a valid answer.
type NearbySearcher interface {
	SearchNearby(ctx context.Context, center geo.Coordinate, radiusMeters int, placeType string) ([]Candidate, error)
}

// DetailFetcher enriches a candidate by its place id.
type DetailFetcher interface {
	PlaceDetail(ctx context.Context, placeID string) (VenueDetail, error)
}

// PlacesProvider bundles the three upstream lookups a selection needs.
type PlacesProvider interface {
	Geocoder
	NearbySearcher
	DetailFetcher
}
