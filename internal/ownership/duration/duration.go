// Package duration renders approximate ownership durations for operators,
// e.g. "19 dagar", "2 år, 3 mån". Years are 365 days; the remainder is
// expressed in twelfths of a year. The labels are approximations and must
// not be used for anything that needs calendar precision.
package duration

import (
	"fmt"
	"time"
)

const (
	daysPerYear   = 365
	monthsPerYear = 12
	// Spans shorter than this are always shown in days.
	minMonthSpan = 30
)

// Days returns the whole calendar days from start to end, comparing UTC dates
func Days(start, end time.Time) int {
	return int(calendarDay(end).Sub(calendarDay(start)).Hours() / 24)
}

// Label returns the duration label for start→end, or nil when either date is
// missing or end is before start.
func Label(start, end *time.Time) *string {
	if start == nil || end == nil {
		return nil
	}

	days := Days(*start, *end)
	if days < 0 {
		return nil
	}

	label := Format(days)
	return &label
}

// Format renders a non-negative day count
func Format(days int) string {
	years := days / daysPerYear
	// Proportional months rather than 30-day months ((days%365)/30): a
	// 181-day half year must read "5 mån", not "6 mån".
	months := (days % daysPerYear) * monthsPerYear / daysPerYear

	switch {
	case days < minMonthSpan || (years == 0 && months == 0):
		return fmt.Sprintf("%d dagar", days)
	case months == 0:
		return fmt.Sprintf("%d år", years)
	case years == 0:
		return fmt.Sprintf("%d mån", months)
	default:
		return fmt.Sprintf("%d år, %d mån", years, months)
	}
}

func calendarDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
