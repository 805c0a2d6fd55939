package restaurant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tanpawarit/trip-dining/agent/contract"
)

// Format is the text shape of a rendered record.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts json, markdown or md (case-insensitive); empty means json.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q", contract.ErrValidation, raw)
	}
}

// ParseHoursMode accepts day or week; empty means day.
func ParseHoursMode(raw string) (HoursMode, error) {
	switch HoursMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", HoursForDay:
		return HoursForDay, nil
	case HoursForWeek:
		return HoursForWeek, nil
	default:
		return "", fmt.Errorf("%w: unknown hours mode %q", contract.ErrValidation, raw)
	}
}

// Render writes the record in the requested format.
func Render(rec Record, format Format) (string, error) {
	switch format {
	case FormatMarkdown:
		return renderMarkdown(rec), nil
	case FormatJSON, "":
		b, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("marshal record: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q", contract.ErrValidation, format)
	}
}

func renderMarkdown(rec Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- **Name:** %s\n", rec.Name)
	fmt.Fprintf(&sb, "- **Address:** %s\n", rec.Address)
	fmt.Fprintf(&sb, "- **Rating:** %s\n", FormatRating(rec.Rating))
	fmt.Fprintf(&sb, "- **Opening Hours:** %s\n", rec.OpeningHours)
	fmt.Fprintf(&sb, "- **Cuisine:** %s", rec.Cuisine)
	return sb.String()
}

// FormatRating prints a rating for humans; unrated venues print as N/A.
func FormatRating(rating *float64) string {
	if rating == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*rating, 'f', -1, 64)
}

const (
	MsgMissingInput    = "ERROR: Please provide a location name or coordinates."
	MsgLocationMissing = "ERROR: Could not find the location."
	MsgNoCandidates    = "No restaurant found nearby."
	MsgAllRecommended  = "All nearby restaurants have already been recommended."
	MsgUpstream        = "ERROR: The places service is unavailable right now, please retry."
)

// Message is the user-facing text for a failed selection.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, contract.ErrMissingInput):
		return MsgMissingInput
	case errors.Is(err, contract.ErrLocationNotFound):
		return MsgLocationMissing
	case errors.Is(err, contract.ErrNoCandidates):
		return MsgNoCandidates
	case errors.Is(err, contract.ErrAllRecommended):
		return MsgAllRecommended
	case errors.Is(err, contract.ErrUpstream):
		return MsgUpstream
	default:
		return "ERROR: " + err.Error()
	}
}
