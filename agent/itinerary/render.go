package itinerary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/tanpawarit/trip-dining/agent/restaurant"
)

func RenderJSON(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.MarshalIndent(entries, "", "  ")
}

// RenderMarkdown groups entries by date, keeping the order dates first
// appear in, and closes with the day's straight-line legs when
// coordinates are known.
func RenderMarkdown(entries []Entry) string {
	dates, byDate := groupByDate(entries)

	var b strings.Builder
	for i, date := range dates {
		if i > 0 {
			b.WriteString("\n")
		}
		title := date
		if title == "" {
			title = "Undated"
		}
		b.WriteString("### " + title + "\n")
		for _, e := range byDate[date] {
			writeEntry(&b, e)
		}
	}
	writeRoute(&b, entries)
	return b.String()
}

func groupByDate(entries []Entry) ([]string, map[string][]Entry) {
	var dates []string
	byDate := make(map[string][]Entry)
	for _, e := range entries {
		if _, ok := byDate[e.Date]; !ok {
			dates = append(dates, e.Date)
		}
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	return dates, byDate
}

func writeEntry(b *strings.Builder, e Entry) {
	label := "Location"
	meal := "Restaurant Recommendation"
	switch e.Period {
	case "morning":
		label, meal = "Morning", "Lunch Recommendation"
	case "afternoon":
		label, meal = "Afternoon", "Dinner Recommendation"
	}

	b.WriteString("- " + label + ": " + e.Location + "\n")
	b.WriteString("  - " + meal + ":\n")
	if e.Error != "" {
		b.WriteString("    - " + e.Error + "\n")
		return
	}
	b.WriteString("    - Name: " + e.Name + "\n")
	b.WriteString("    - Address: " + e.Address + "\n")
	b.WriteString("    - Rating: " + restaurant.FormatRating(e.Rating) + "\n")
	b.WriteString("    - Opening Hours: " + e.OpeningHours + "\n")
	b.WriteString("    - Cuisine: " + e.Cuisine + "\n")
}

// Write stores entries at path, as Markdown for .md files and JSON
// otherwise.
func Write(path string, entries []Entry) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		data = []byte(RenderMarkdown(entries))
	default:
		raw, err := RenderJSON(entries)
		if err != nil {
			return err
		}
		data = append(raw, '\n')
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
