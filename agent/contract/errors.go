package contract

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrMissingInput     = errors.New("missing required input")
	ErrLocationNotFound = errors.New("location not found")
	ErrNoCandidates     = errors.New("no venues nearby")
	ErrAllRecommended   = errors.New("all nearby venues already recommended")
	ErrUpstream         = errors.New("upstream service failed")
	ErrPlaceNotFound    = errors.New("place not found")
)
