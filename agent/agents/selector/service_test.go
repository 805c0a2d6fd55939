package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/geo"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
	statex "github.com/tanpawarit/trip-dining/agent/state"
)

type fakePlaces struct {
	mu sync.Mutex

	geocode    map[string]geo.Coordinate
	geocodeErr error
	candidates []contractx.Candidate
	searchErr  error
	details    map[string]contractx.VenueDetail
	detailErr  error

	geocodeCalls int
	searchCalls  int
	lastRadius   int
	lastType     string
}

func (f *fakePlaces) Geocode(ctx context.Context, address string) (geo.Coordinate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geocodeCalls++
	if f.geocodeErr != nil {
		return geo.Coordinate{}, f.geocodeErr
	}
	c, ok := f.geocode[address]
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("%w: %q", contractx.ErrLocationNotFound, address)
	}
	return c, nil
}

func (f *fakePlaces) SearchNearby(ctx context.Context, center geo.Coordinate, radiusMeters int, placeType string) ([]contractx.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	f.lastRadius = radiusMeters
	f.lastType = placeType
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.candidates, nil
}

func (f *fakePlaces) PlaceDetail(ctx context.Context, placeID string) (contractx.VenueDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailErr != nil {
		return contractx.VenueDetail{}, f.detailErr
	}
	return f.details[placeID], nil
}

func rating(v float64) *float64 { return &v }

func newPlaces(bLat float64) *fakePlaces {
	a := geo.Coordinate{Lat: 40.0, Lng: -74.0}
	b := geo.Coordinate{Lat: bLat, Lng: -74.0}
	return &fakePlaces{
		geocode: map[string]geo.Coordinate{"Midtown": {Lat: 40.0005, Lng: -74.0}},
		candidates: []contractx.Candidate{
			{PlaceID: "b", Name: "B", Location: b, Rating: rating(4.5)},
			{PlaceID: "a", Name: "A", Location: a, Rating: rating(4.8)},
		},
		details: map[string]contractx.VenueDetail{
			"a": {
				PlaceID: "a", Name: "A", FormattedAddress: "A", Location: a, Rating: rating(4.8),
				WeekdayText: []string{"Monday: 9 AM – 5 PM", "Tuesday: 9 AM – 5 PM"},
				Types:       []string{"restaurant", "italian_restaurant", "bar", "food", "establishment"},
			},
			"b": {PlaceID: "b", Name: "B", FormattedAddress: "B", Location: b, Rating: rating(4.5)},
		},
	}
}

func newService(t *testing.T, places contractx.PlacesProvider, mutate ...func(*Config)) *Service {
	t.Helper()
	cfg := DefaultConfig
	cfg.RunID = "trip-1"
	for _, m := range mutate {
		m(&cfg)
	}
	svc, err := New(places, statex.NewRegistry(statex.NewMemoryStore()), cfg)
	require.NoError(t, err)
	return svc
}

func TestSelectRotatesThroughDistinctVenues(t *testing.T) {
	t.Parallel()

	places := newPlaces(40.003)
	svc := newService(t, places)

	first, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "Midtown", Date: "2025-06-02"})
	require.NoError(t, err)
	require.Equal(t, restaurant.StatusSelected, first.Status)
	assert.Equal(t, "trip-1", first.RunID)
	assert.Equal(t, "A", first.Record.Name)
	assert.Equal(t, "Monday: 9 AM – 5 PM", first.Record.OpeningHours)
	assert.Equal(t, "bar, food", first.Record.Cuisine)
	assert.Equal(t, 3000, places.lastRadius)
	assert.Equal(t, "restaurant", places.lastType)
	assert.JSONEq(t, `{"name":"A","address":"A","rating":4.8,"opening_hours":"Monday: 9 AM – 5 PM","cuisine":"bar, food"}`, first.Text)

	second, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "Midtown"})
	require.NoError(t, err)
	require.Equal(t, restaurant.StatusSelected, second.Status)
	assert.Equal(t, "B", second.Record.Name)
	assert.Equal(t, "Unknown", second.Record.Cuisine)

	third, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "Midtown"})
	require.NoError(t, err)
	assert.Equal(t, restaurant.StatusExhausted, third.Status)
	assert.ErrorIs(t, third.Err(), contractx.ErrAllRecommended)
	assert.Nil(t, third.Record)
}

func TestSelectNearbySecondVenueIsExhausted(t *testing.T) {
	t.Parallel()

	svc := newService(t, newPlaces(40.001))

	first, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "Midtown"})
	require.NoError(t, err)
	assert.Equal(t, "A", first.Record.Name)

	second, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "Midtown"})
	require.NoError(t, err)
	assert.Equal(t, restaurant.StatusExhausted, second.Status)
	assert.Equal(t, 2, second.Examined)
}

func TestSelectUsesCoordinatesWithoutGeocoding(t *testing.T) {
	t.Parallel()

	places := newPlaces(40.003)
	svc := newService(t, places)

	lat, lng := 40.0, -74.0
	got, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "ignored", Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	assert.Equal(t, restaurant.StatusSelected, got.Status)
	assert.Equal(t, geo.Coordinate{Lat: 40, Lng: -74}, got.Center)
	assert.Equal(t, 0, places.geocodeCalls)
}

func TestSelectRunsAreIndependent(t *testing.T) {
	t.Parallel()

	svc := newService(t, newPlaces(40.001))

	for _, run := range []string{"day-1", "day-2"} {
		got, err := svc.Select(context.Background(), contractx.SelectRequest{RunID: run, Location: "Midtown"})
		require.NoError(t, err)
		assert.Equal(t, run, got.RunID)
		assert.Equal(t, "A", got.Record.Name)
	}
}

func TestSelectForgetResetsRun(t *testing.T) {
	t.Parallel()

	svc := newService(t, newPlaces(40.001))
	ctx := context.Background()

	_, err := svc.Select(ctx, contractx.SelectRequest{Location: "Midtown"})
	require.NoError(t, err)
	require.NoError(t, svc.Forget(ctx, ""))

	got, err := svc.Select(ctx, contractx.SelectRequest{Location: "Midtown"})
	require.NoError(t, err)
	assert.Equal(t, "A", got.Record.Name)
}

func TestSelectEmptyCandidates(t *testing.T) {
	t.Parallel()

	places := newPlaces(40.003)
	places.candidates = nil
	svc := newService(t, places)

	got, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "Midtown"})
	require.NoError(t, err)
	assert.Equal(t, restaurant.StatusNoCandidates, got.Status)
	assert.ErrorIs(t, got.Err(), contractx.ErrNoCandidates)
}

func TestSelectErrors(t *testing.T) {
	t.Parallel()

	lat := 95.0
	lng := 0.0
	tests := []struct {
		name    string
		req     contractx.SelectRequest
		mutate  func(*fakePlaces)
		wantErr error
	}{
		{name: "missing input", req: contractx.SelectRequest{}, wantErr: contractx.ErrMissingInput},
		{name: "only latitude", req: contractx.SelectRequest{Latitude: &lng}, wantErr: contractx.ErrMissingInput},
		{name: "invalid coordinates", req: contractx.SelectRequest{Latitude: &lat, Longitude: &lng}, wantErr: contractx.ErrValidation},
		{name: "unknown location", req: contractx.SelectRequest{Location: "Atlantis"}, wantErr: contractx.ErrLocationNotFound},
		{
			name:    "search upstream failure",
			req:     contractx.SelectRequest{Location: "Midtown"},
			mutate:  func(f *fakePlaces) { f.searchErr = fmt.Errorf("%w: timeout", contractx.ErrUpstream) },
			wantErr: contractx.ErrUpstream,
		},
		{
			name:    "detail upstream failure",
			req:     contractx.SelectRequest{Location: "Midtown"},
			mutate:  func(f *fakePlaces) { f.detailErr = fmt.Errorf("%w: 503", contractx.ErrUpstream) },
			wantErr: contractx.ErrUpstream,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			places := newPlaces(40.003)
			if tt.mutate != nil {
				tt.mutate(places)
			}
			svc := newService(t, places)

			_, err := svc.Select(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestSelectUpstreamFailureDoesNotClaim(t *testing.T) {
	t.Parallel()

	places := newPlaces(40.001)
	places.detailErr = contractx.ErrUpstream
	svc := newService(t, places)

	_, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "Midtown"})
	require.Error(t, err)

	places.detailErr = nil
	got, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "Midtown"})
	require.NoError(t, err)
	assert.Equal(t, "A", got.Record.Name)
}

func TestSelectMarkdownWeekHours(t *testing.T) {
	t.Parallel()

	svc := newService(t, newPlaces(40.003), func(c *Config) {
		c.OutputFormat = "markdown"
		c.HoursMode = "week"
	})

	got, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "Midtown", Date: "2025-06-02"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.Text, "- **Name:** A\n"))
	assert.Contains(t, got.Text, "- **Opening Hours:** Monday: 9 AM – 5 PM; Tuesday: 9 AM – 5 PM")
}

func TestSelectConcurrentCallsNeverDuplicate(t *testing.T) {
	t.Parallel()

	places := newPlaces(40.003)
	svc := newService(t, places)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan Result, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "Midtown"})
			if err == nil {
				results <- got
			}
		}()
	}
	wg.Wait()
	close(results)

	selected := map[string]int{}
	total := 0
	for r := range results {
		total++
		if r.Status == restaurant.StatusSelected {
			selected[r.Record.Name]++
		}
	}
	assert.Equal(t, callers, total)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, selected)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultConfig.Validate())

	bad := DefaultConfig
	bad.RadiusMeters = 0
	assert.ErrorIs(t, bad.Validate(), contractx.ErrValidation)

	bad = DefaultConfig
	bad.OutputFormat = "html"
	assert.ErrorIs(t, bad.Validate(), contractx.ErrValidation)

	_, err := New(nil, nil, DefaultConfig)
	assert.Error(t, err)
}

func TestSelectStampsRecommendationWithServiceClock(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	svc, err := New(newPlaces(40.003), statex.NewRegistry(store), Config{
		RadiusMeters:    3000,
		ProximityMeters: 300,
		PlaceType:       "restaurant",
		OutputFormat:    "json",
		HoursMode:       "day",
		RunID:           "trip-clock",
	})
	require.NoError(t, err)
	at := time.Date(2025, 6, 2, 11, 45, 0, 0, time.FixedZone("ICT", 7*3600))
	svc.now = func() time.Time { return at }

	res, err := svc.Select(context.Background(), contractx.SelectRequest{Location: "Midtown"})
	require.NoError(t, err)
	require.Equal(t, restaurant.StatusSelected, res.Status)

	snap, err := store.Load(context.Background(), "trip-clock")
	require.NoError(t, err)
	require.Len(t, snap.Entries, 1)
	assert.True(t, at.Equal(snap.Entries[0].SelectedAt))
	assert.Equal(t, time.UTC, snap.Entries[0].SelectedAt.Location())
}
