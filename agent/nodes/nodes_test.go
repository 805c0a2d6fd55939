package selectornode

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/geo"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
	statex "github.com/tanpawarit/trip-dining/agent/state"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 2, 12, 0, 0, 0, time.FixedZone("ICT", 7*3600))
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	st, err := ValidateRequest(GraphInput{Request: contractx.SelectRequest{Location: "  Hangzhou  ", Date: " 2025-06-02 "}}, fixedNow, "default")
	require.NoError(t, err)
	assert.Equal(t, "default", st.RunID)
	assert.Equal(t, "Hangzhou", st.Location)
	assert.Equal(t, "2025-06-02", st.Date)
	assert.Nil(t, st.Coordinates)
	assert.Equal(t, time.UTC, st.Now.Location())

	lat, lng := 30.25, 120.13
	st, err = ValidateRequest(GraphInput{Request: contractx.SelectRequest{RunID: "r", Latitude: &lat, Longitude: &lng}}, fixedNow, "default")
	require.NoError(t, err)
	assert.Equal(t, "r", st.RunID)
	require.NotNil(t, st.Coordinates)
	assert.Equal(t, geo.Coordinate{Lat: lat, Lng: lng}, *st.Coordinates)
}

func TestValidateRequestRejects(t *testing.T) {
	t.Parallel()

	_, err := ValidateRequest(GraphInput{}, fixedNow, "default")
	assert.ErrorIs(t, err, contractx.ErrMissingInput)

	_, err = ValidateRequest(GraphInput{Request: contractx.SelectRequest{Location: "x"}}, fixedNow, "")
	assert.ErrorIs(t, err, statex.ErrInvalidRun)

	bad := 200.0
	zero := 0.0
	_, err = ValidateRequest(GraphInput{Request: contractx.SelectRequest{Latitude: &zero, Longitude: &bad}}, fixedNow, "default")
	assert.ErrorIs(t, err, contractx.ErrValidation)
}

type stubGeocoder struct{ calls int }

func (s *stubGeocoder) Geocode(ctx context.Context, address string) (geo.Coordinate, error) {
	s.calls++
	return geo.Coordinate{Lat: 1, Lng: 2}, nil
}

func TestResolveLocationPrefersCoordinates(t *testing.T) {
	t.Parallel()

	g := &stubGeocoder{}
	c := geo.Coordinate{Lat: 5, Lng: 6}
	st, err := ResolveLocation(context.Background(), &GraphState{Location: "x", Coordinates: &c}, g)
	require.NoError(t, err)
	assert.Equal(t, c, st.Center)
	assert.Equal(t, 0, g.calls)

	st, err = ResolveLocation(context.Background(), &GraphState{Location: "x"}, g)
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinate{Lat: 1, Lng: 2}, st.Center)
	assert.Equal(t, 1, g.calls)
}

func TestFinalize(t *testing.T) {
	t.Parallel()

	out, err := Finalize(&GraphState{RunID: "r"})
	require.NoError(t, err)
	assert.Equal(t, restaurant.StatusNoCandidates, out.Status)

	_, err = Finalize(&GraphState{Selection: restaurant.Selection{Status: restaurant.StatusSelected}})
	assert.ErrorIs(t, err, contractx.ErrValidation)

	_, err = Finalize(nil)
	assert.ErrorIs(t, err, contractx.ErrValidation)
}

func TestNormalizeDetailRequiresSelection(t *testing.T) {
	t.Parallel()

	_, err := NormalizeDetail(&GraphState{}, restaurant.HoursForDay, "restaurant", restaurant.FormatJSON)
	assert.ErrorIs(t, err, contractx.ErrValidation)
}
