package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/geo"
	nodex "github.com/tanpawarit/trip-dining/agent/nodes"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
	statex "github.com/tanpawarit/trip-dining/agent/state"
)

type Config struct {
	RadiusMeters    int     `split_words:"true" default:"3000"`
	ProximityMeters float64 `split_words:"true" default:"300"`
	PlaceType       string  `split_words:"true" default:"restaurant"`
	OutputFormat    string  `split_words:"true" default:"json"`
	HoursMode       string  `split_words:"true" default:"day"`
	// RunID names the run used when a request carries none. Empty means a
	// fresh run per process.
	RunID string `split_words:"true"`
}

var DefaultConfig = Config{
	RadiusMeters:    3000,
	ProximityMeters: 300,
	PlaceType:       "restaurant",
	OutputFormat:    string(restaurant.FormatJSON),
	HoursMode:       string(restaurant.HoursForDay),
}

func (c Config) Validate() error {
	if c.RadiusMeters <= 0 || c.RadiusMeters > 50000 {
		return fmt.Errorf("%w: radius must be in (0, 50000] meters, got %d", contractx.ErrValidation, c.RadiusMeters)
	}
	if c.ProximityMeters < 0 {
		return fmt.Errorf("%w: proximity threshold must not be negative", contractx.ErrValidation)
	}
	if _, err := restaurant.ParseFormat(c.OutputFormat); err != nil {
		return err
	}
	if _, err := restaurant.ParseHoursMode(c.HoursMode); err != nil {
		return err
	}
	return nil
}

// Result is the outcome of one top_restaurant call.
type Result struct {
	RunID    string
	Status   restaurant.Status
	Center   geo.Coordinate
	Detail   *contractx.VenueDetail
	Record   *restaurant.Record
	Text     string
	Examined int
	Rejected []restaurant.Rejection
}

// Err is nil for a selected venue and the matching sentinel otherwise.
func (r Result) Err() error {
	switch r.Status {
	case restaurant.StatusSelected:
		return nil
	case restaurant.StatusExhausted:
		return contractx.ErrAllRecommended
	default:
		return contractx.ErrNoCandidates
	}
}

type Service struct {
	places   contractx.PlacesProvider
	registry *statex.Registry

	radiusMeters    int
	proximityMeters float64
	placeType       string
	format          restaurant.Format
	hoursMode       restaurant.HoursMode
	defaultRunID    string

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(places contractx.PlacesProvider, registry *statex.Registry, cfg Config) (*Service, error) {
	if places == nil {
		return nil, errors.New("places provider is required")
	}
	if registry == nil {
		registry = statex.NewRegistry(nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	format, _ := restaurant.ParseFormat(cfg.OutputFormat)
	hoursMode, _ := restaurant.ParseHoursMode(cfg.HoursMode)

	placeType := strings.TrimSpace(cfg.PlaceType)
	if placeType == "" {
		placeType = DefaultConfig.PlaceType
	}
	runID := strings.TrimSpace(cfg.RunID)
	if runID == "" {
		runID = statex.NewRunID()
	}

	s := &Service{
		places:          places,
		registry:        registry,
		radiusMeters:    cfg.RadiusMeters,
		proximityMeters: cfg.ProximityMeters,
		placeType:       placeType,
		format:          format,
		hoursMode:       hoursMode,
		defaultRunID:    runID,
		now:             time.Now,
	}

	graphRunner, err := s.compileSelectGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// Select recommends the best venue near the request location that the run
// has not recommended yet. Empty and exhausted outcomes are reported in
// Result.Status, not as errors.
func (s *Service) Select(ctx context.Context, req contractx.SelectRequest) (Result, error) {
	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{Request: req})
	if err != nil {
		return Result{}, err
	}
	return Result{
		RunID:    out.RunID,
		Status:   out.Status,
		Center:   out.Center,
		Detail:   out.Detail,
		Record:   out.Record,
		Text:     out.Text,
		Examined: out.Examined,
		Rejected: out.Rejected,
	}, nil
}

// Forget ends a run. An empty id ends the default run.
func (s *Service) Forget(ctx context.Context, runID string) error {
	if strings.TrimSpace(runID) == "" {
		runID = s.defaultRunID
	}
	return s.registry.Forget(ctx, runID)
}

func (s *Service) DefaultRunID() string { return s.defaultRunID }
