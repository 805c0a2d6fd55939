package restaurant

import (
	"strings"
	"time"

	"github.com/tanpawarit/trip-dining/agent/contract"
)

const (
	dateLayout        = "2006-01-02"
	unknownCuisine    = "Unknown"
	weekSeparator     = "; "
	categorySeparator = ", "
)

// HoursMode selects how opening hours are reported.
type HoursMode string

const (
	// HoursForDay reports the line of the requested date's weekday, or the
	// whole week when no usable date is given.
	HoursForDay HoursMode = "day"
	// HoursForWeek always reports the whole week.
	HoursForWeek HoursMode = "week"
)

// genericTypes never describe a cuisine.
var genericTypes = map[string]bool{
	"point_of_interest": true,
	"establishment":     true,
}

// Record is the normalized tool output.
type Record struct {
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Rating       *float64 `json:"rating"`
	OpeningHours string   `json:"opening_hours"`
	Cuisine      string   `json:"cuisine"`
}

// Normalize turns a selected venue into the record handed back to callers.
func Normalize(detail contract.VenueDetail, date string, mode HoursMode, placeType string) Record {
	name := strings.TrimSpace(detail.Name)
	if name == "" {
		name = "Unknown"
	}
	return Record{
		Name:         name,
		Address:      detail.FormattedAddress,
		Rating:       detail.Rating,
		OpeningHours: OpeningHours(detail.WeekdayText, date, mode),
		Cuisine:      Cuisine(detail.Types, placeType),
	}
}

// WeekdayIndex returns the Monday-based index (Monday=0) of a YYYY-MM-DD date.
func WeekdayIndex(date string) (int, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return 0, false
	}
	return (int(t.Weekday()) + 6) % 7, true
}

// OpeningHours picks the opening-hours line for date out of a Monday-first
// weekly list. Without a usable date the whole week is joined instead.
func OpeningHours(weekdayText []string, date string, mode HoursMode) string {
	if len(weekdayText) == 0 {
		return ""
	}
	if mode != HoursForWeek {
		if idx, ok := WeekdayIndex(date); ok {
			if idx >= len(weekdayText) {
				return ""
			}
			return weekdayText[idx]
		}
	}
	return strings.Join(weekdayText, weekSeparator)
}

// FilterCategories drops tags that restate the searched venue type or that
// are generic place markers.
func FilterCategories(types []string, placeType string) []string {
	placeType = strings.ToLower(strings.TrimSpace(placeType))
	out := make([]string, 0, len(types))
	for _, t := range types {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag == "" || genericTypes[tag] {
			continue
		}
		if placeType != "" && strings.Contains(tag, placeType) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Cuisine is the comma-joined category list, or "Unknown" when nothing
// venue-specific is left.
func Cuisine(types []string, placeType string) string {
	tags := FilterCategories(types, placeType)
	if len(tags) == 0 {
		return unknownCuisine
	}
	return strings.Join(tags, categorySeparator)
}
