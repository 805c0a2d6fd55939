package itinerary

import (
	"fmt"
	"strings"

	"github.com/tanpawarit/trip-dining/agent/geo"
)

// Leg is the straight-line hop between two consecutive places of one day.
type Leg struct {
	Date   string
	From   string
	To     string
	Meters float64
}

type waypoint struct {
	name string
	at   *geo.Coordinate
}

// Legs walks each day in order, stop then its restaurant then the next
// stop, and measures every hop whose two ends have known coordinates.
func Legs(entries []Entry) []Leg {
	dates, byDate := groupByDate(entries)

	var legs []Leg
	for _, date := range dates {
		var route []waypoint
		for _, e := range byDate[date] {
			route = append(route, waypoint{name: e.Location, at: e.StopLocation})
			if e.Name != "" {
				route = append(route, waypoint{name: e.Name, at: e.RestaurantLocation})
			}
		}
		for i := 1; i < len(route); i++ {
			from, to := route[i-1], route[i]
			if from.at == nil || to.at == nil {
				continue
			}
			legs = append(legs, Leg{
				Date:   date,
				From:   from.name,
				To:     to.name,
				Meters: geo.Distance(*from.at, *to.at),
			})
		}
	}
	return legs
}

func writeRoute(b *strings.Builder, entries []Entry) {
	legs := Legs(entries)
	if len(legs) == 0 {
		return
	}

	b.WriteString("\n---\n\n#### Route Distance Analysis\n")
	day := 0
	current := "\x00"
	for _, leg := range legs {
		if leg.Date != current {
			current = leg.Date
			day++
			title := leg.Date
			if title == "" {
				title = "Undated"
			}
			fmt.Fprintf(b, "\n%s (Day %d)\n", title, day)
		}
		fmt.Fprintf(b, "- From %s to %s: %.1f km\n", leg.From, leg.To, leg.Meters/1000)
	}
	b.WriteString("\nDistances are straight-line estimates; travel by road is longer.\n")
}
