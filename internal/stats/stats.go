// Package stats derives the dashboard's aggregate figures from a normalized
// energy record collection. Every function is a pure reduction over the
// whole collection; nothing is maintained incrementally.
package stats

import (
	"strings"
	"time"

	"energy_dashboard/internal/model"
)

// InvalidDay is the bucket shared by every SendDate whose date part cannot be
// read as a calendar date.
const InvalidDay = "Invalid Date"

// dayLayouts are tried in order; month-first for the slash and dash forms.
var dayLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Summary holds the figures shown on the stats cards.
type Summary struct {
	TotalSolarEnergy model.Measure `json:"total_solar_energy"`
	UniqueDays       int           `json:"unique_days"`
	RecordCount      int           `json:"record_count"`
}

// Compute returns every aggregate for records.
func Compute(records []model.EnergyRecord) Summary {
	return Summary{
		TotalSolarEnergy: model.Measure(TotalSolarEnergy(records)),
		UniqueDays:       UniqueDayCount(records),
		RecordCount:      len(records),
	}
}

// TotalSolarEnergy sums SolarEnergy over all records. A single NaN makes the
// total NaN.
func TotalSolarEnergy(records []model.EnergyRecord) float64 {
	var total float64
	for _, r := range records {
		total += r.SolarEnergy.Float()
	}
	return total
}

// UniqueDayCount returns the number of distinct calendar days among the
// records' SendDate values. Records from the same day collapse to one.
func UniqueDayCount(records []model.EnergyRecord) int {
	days := make(map[string]struct{})
	for _, r := range records {
		days[DayKey(r.SendDate)] = struct{}{}
	}
	return len(days)
}

// DayKey returns the canonical YYYY-MM-DD form of the date part (text before
// the first space) of sendDate, or InvalidDay.
func DayKey(sendDate string) string {
	datePart, _, _ := strings.Cut(strings.TrimSpace(sendDate), " ")
	if datePart == "" {
		return InvalidDay
	}
	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, datePart); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return InvalidDay
}
