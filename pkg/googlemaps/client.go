// Package googlemaps talks to the Google Geocoding and Places web services.
package googlemaps

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tanpawarit/trip-dining/agent/contract"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"

	detailsEndpoint      = "place/details/json"
	detailFields         = "name,rating,formatted_address,geometry,opening_hours,types"
	maxResponseSizeBytes = 4 << 20
)

// API status values returned in the JSON body.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusNotFound       = "NOT_FOUND"
	statusOverQueryLimit = "OVER_QUERY_LIMIT"
	statusUnknownError   = "UNKNOWN_ERROR"
)

type Config struct {
	APIKey         string        `split_words:"true" required:"true"`
	BaseURL        string        `split_words:"true" default:"https://maps.googleapis.com/maps/api"`
	GeocodeTimeout time.Duration `split_words:"true" default:"5s"`
	SearchTimeout  time.Duration `split_words:"true" default:"10s"`
	RetryWait      time.Duration `split_words:"true" default:"300ms"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: google maps api key is required", contract.ErrValidation)
	}
	if c.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
			return fmt.Errorf("%w: google maps base url: %v", contract.ErrValidation, err)
		}
	}
	return nil
}

var _ contract.PlacesProvider = (*Client)(nil)

type Client struct {
	baseURL        string
	apiKey         string
	geocodeTimeout time.Duration
	searchTimeout  time.Duration
	retryWait      time.Duration
	httpClient     *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	geocodeTimeout := cfg.GeocodeTimeout
	if geocodeTimeout <= 0 {
		geocodeTimeout = 5 * time.Second
	}
	searchTimeout := cfg.SearchTimeout
	if searchTimeout <= 0 {
		searchTimeout = 10 * time.Second
	}
	retryWait := cfg.RetryWait
	if retryWait <= 0 {
		retryWait = 300 * time.Millisecond
	}

	return &Client{
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		geocodeTimeout: geocodeTimeout,
		searchTimeout:  searchTimeout,
		retryWait:      retryWait,
		httpClient:     &http.Client{},
	}, nil
}

// APIError is a failed call, either at the HTTP layer or in the body status.
type APIError struct {
	Endpoint   string
	HTTPStatus int
	Status     string
	Message    string
	retryable  bool
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("google maps %s", e.Endpoint)
	if e.HTTPStatus != 0 {
		msg += fmt.Sprintf(" http_status=%d", e.HTTPStatus)
	}
	if e.Status != "" {
		msg += " status=" + e.Status
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) Retryable() bool { return e.retryable }

func (e *APIError) Unwrap() error { return contract.ErrUpstream }

// Is matches contract.ErrPlaceNotFound when a detail lookup names a place
// that no longer exists.
func (e *APIError) Is(target error) bool {
	if target != contract.ErrPlaceNotFound || e.Endpoint != detailsEndpoint {
		return false
	}
	return e.Status == statusNotFound || e.Status == statusZeroResults
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type envelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type geocodeResponse struct {
	Results []struct {
		FormattedAddress string   `json:"formatted_address"`
		Geometry         geometry `json:"geometry"`
	} `json:"results"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating"`
	Types            []string `json:"types"`
	Geometry         geometry `json:"geometry"`
	OpeningHours     *struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
}

type nearbyResponse struct {
	Results []placeResult `json:"results"`
}

type detailsResponse struct {
	Result placeResult `json:"result"`
}
