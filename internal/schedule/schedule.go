// Package schedule computes the restaurant's recurring closure dates.
package schedule

import "time"

// HorizonDays is how far ahead closures are computed.
const HorizonDays = 90

// DefaultClosedWeekdays are the standing weekly closure days.
var DefaultClosedWeekdays = []time.Weekday{time.Sunday, time.Monday}

// ClosedDates returns every calendar date in [ref, ref+horizonDays) whose
// UTC weekday is one of the closed weekdays. Dates are normalized to UTC
// midnight so callers can compare them as calendar days.
func ClosedDates(ref time.Time, horizonDays int, closedWeekdays []time.Weekday) []time.Time {
	closed := make(map[time.Weekday]bool, len(closedWeekdays))
	for _, wd := range closedWeekdays {
		closed[wd] = true
	}

	ref = ref.UTC()
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	var dates []time.Time
	for i := 0; i < horizonDays; i++ {
		if closed[day.Weekday()] {
			dates = append(dates, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return dates
}
