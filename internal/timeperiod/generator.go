// Package timeperiod partitions a date range into calendar-aligned buckets
// used as pivot-table columns. Generation walks backward from the end date so
// the most recent buckets align with calendar boundaries, then reverses the
// result to chronological order.
package timeperiod

import (
	"time"

	"github.com/radiusdt/vector-attrib/internal/models"
)

// MaxPeriods caps how many buckets one range can produce. History older than
// the cap is dropped, not reported as an error.
const MaxPeriods = 52

const keyFormat = "2006-01-02"

// Generate partitions [start, end] into ordered periods of the given type.
// The returned periods are chronologically ascending, non-overlapping, and
// exactly cover the range unless the cap truncates older history. end before
// start yields no periods.
func Generate(start, end time.Time, pt models.PeriodType) []models.TimePeriodColumn {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return nil
	}

	periods := make([]models.TimePeriodColumn, 0, 8)
	cursor := end

	for len(periods) < MaxPeriods {
		winStart := windowStart(cursor, pt)

		clamped := false
		if !winStart.After(start) {
			winStart = start
			clamped = true
		}

		periods = append(periods, makeColumn(winStart, cursor))

		if clamped {
			break
		}
		cursor = winStart.AddDate(0, 0, -1)
	}

	// Accumulated newest-first; callers want chronological ascending.
	for i, j := 0, len(periods)-1; i < j; i, j = i+1, j-1 {
		periods[i], periods[j] = periods[j], periods[i]
	}
	return periods
}

// windowStart computes the calendar-aligned start for a window ending at end.
func windowStart(end time.Time, pt models.PeriodType) time.Time {
	switch pt {
	case models.PeriodWeekly:
		return end.AddDate(0, 0, -6)
	case models.PeriodBiweekly:
		if end.Day() >= 15 {
			return time.Date(end.Year(), end.Month(), 15, 0, 0, 0, 0, end.Location())
		}
		return time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	case models.PeriodMonthly:
		return time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	default:
		return end.AddDate(0, 0, -6)
	}
}

func makeColumn(start, end time.Time) models.TimePeriodColumn {
	return models.TimePeriodColumn{
		Key:   start.Format(keyFormat),
		Label: start.Format("Jan 2") + " - " + end.Format("Jan 2, 2006"),
		Start: start,
		End:   end,
	}
}

// PeriodKeyFor returns the key of the period containing t, or "" when t falls
// outside every period.
func PeriodKeyFor(periods []models.TimePeriodColumn, t time.Time) string {
	t = truncateToDay(t)
	for _, p := range periods {
		if p.Contains(t) {
			return p.Key
		}
	}
	return ""
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
