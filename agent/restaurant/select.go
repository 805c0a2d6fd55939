// Package restaurant picks the best nearby venue that has not been
// recommended earlier in the same planning run.
package restaurant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/state"
)

type Status string

const (
	StatusSelected     Status = "selected"
	StatusNoCandidates Status = "no_candidates"
	StatusExhausted    Status = "exhausted"
)

// Rejection records a candidate skipped as already recommended.
type Rejection struct {
	PlaceID string             `json:"place_id"`
	Name    string             `json:"name"`
	Reason  state.RejectReason `json:"reason"`
}

// Selection is the outcome of one pass over the candidate list.
type Selection struct {
	Status   Status
	Detail   *contract.VenueDetail
	Examined int
	Rejected []Rejection
	// Missing lists candidates whose detail lookup reported the place gone.
	Missing []string
}

// Err maps the non-selected outcomes onto their sentinel errors.
func (s Selection) Err() error {
	switch s.Status {
	case StatusNoCandidates:
		return contract.ErrNoCandidates
	case StatusExhausted:
		return contract.ErrAllRecommended
	default:
		return nil
	}
}

// Rank orders candidates by rating, highest first. Unrated candidates count
// as zero and ties keep their upstream order.
func Rank(candidates []contract.Candidate) []contract.Candidate {
	ranked := make([]contract.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})
	return ranked
}

// SelectDistinct walks the ranked candidates, fetching each detail in turn,
// and claims the first venue that memory does not consider a duplicate.
// Candidates are examined strictly one after another. A candidate whose
// place no longer exists is skipped; any other detail failure aborts.
// The claim is stamped with selectedAt.
func SelectDistinct(
	ctx context.Context,
	details contract.DetailFetcher,
	candidates []contract.Candidate,
	mem *state.Memory,
	proximityMeters float64,
	selectedAt time.Time,
) (Selection, error) {
	if len(candidates) == 0 {
		return Selection{Status: StatusNoCandidates}, nil
	}

	out := Selection{Status: StatusExhausted}
	for _, cand := range Rank(candidates) {
		if err := ctx.Err(); err != nil {
			return Selection{}, err
		}

		detail, err := details.PlaceDetail(ctx, cand.PlaceID)
		if errors.Is(err, contract.ErrPlaceNotFound) {
			log.Warn().
				Str("run_id", mem.RunID()).
				Str("place_id", cand.PlaceID).
				Msg("candidate detail not found, skipping")
			out.Missing = append(out.Missing, cand.PlaceID)
			continue
		}
		if err != nil {
			return Selection{}, fmt.Errorf("place detail %s: %w", cand.PlaceID, err)
		}
		detail = mergeCandidate(detail, cand)
		out.Examined++
		if strings.TrimSpace(detail.FormattedAddress) == "" {
			log.Warn().
				Str("run_id", mem.RunID()).
				Str("place_id", detail.PlaceID).
				Msg("candidate has no formatted address, only proximity can reject it")
		}

		reason := mem.Claim(state.Recommendation{
			PlaceID:    detail.PlaceID,
			Name:       detail.Name,
			Address:    detail.FormattedAddress,
			Location:   detail.Location,
			SelectedAt: selectedAt,
		}, proximityMeters)
		if reason != state.RejectNone {
			log.Debug().
				Str("run_id", mem.RunID()).
				Str("place_id", detail.PlaceID).
				Str("reason", string(reason)).
				Msg("candidate already recommended")
			out.Rejected = append(out.Rejected, Rejection{
				PlaceID: detail.PlaceID,
				Name:    detail.Name,
				Reason:  reason,
			})
			continue
		}

		out.Status = StatusSelected
		out.Detail = &detail
		return out, nil
	}
	if out.Examined == 0 {
		// Every candidate vanished between search and detail lookup.
		return Selection{}, fmt.Errorf("%w: no candidate detail could be loaded", contract.ErrUpstream)
	}
	return out, nil
}

// mergeCandidate fills the gaps of a sparse detail response with what the
// nearby search already returned.
func mergeCandidate(detail contract.VenueDetail, cand contract.Candidate) contract.VenueDetail {
	if detail.PlaceID == "" {
		detail.PlaceID = cand.PlaceID
	}
	if detail.Name == "" {
		detail.Name = cand.Name
	}
	if detail.Rating == nil {
		detail.Rating = cand.Rating
	}
	if (detail.Location.Lat == 0 && detail.Location.Lng == 0) || !detail.Location.Valid() {
		detail.Location = cand.Location
	}
	if len(detail.Types) == 0 {
		detail.Types = cand.Types
	}
	return detail
}
