// Package period maps report time periods to concrete date ranges and
// bucket labels. The aggregator and the cache key builder share these
// definitions so the cached key and the actual query bounds never drift
// apart.
package period

import (
	"time"

	apperrors "spendtrack/internal/errors"
)

// TimePeriod determines bucket granularity for a statistics report and
// the width of the default reporting window.
type TimePeriod string

const (
	Day   TimePeriod = "day"
	Week  TimePeriod = "week"
	Month TimePeriod = "month"
	Year  TimePeriod = "year"
)

// Parse validates a raw time period string. The empty string defaults to
// Month, matching the report endpoints' default window.
func Parse(s string) (TimePeriod, error) {
	switch TimePeriod(s) {
	case "":
		return Month, nil
	case Day, Week, Month, Year:
		return TimePeriod(s), nil
	}
	return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid time period: "+s)
}

// DateRange is the window covered by a report. Start is the first
// instant and End the last instant of the window; record dates are
// compared inclusively on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RangeFor computes the date range of the period window containing ref.
//
//	day:   the calendar day of ref
//	week:  ISO week, Monday through the following Sunday
//	month: first through last calendar day of ref's month
//	year:  Jan 1 through Dec 31 of ref's year
func RangeFor(p TimePeriod, ref time.Time) DateRange {
	var start, next time.Time
	switch p {
	case Day:
		start = midnight(ref)
		next = start.AddDate(0, 0, 1)
	case Week:
		start = midnight(ref).AddDate(0, 0, -daysSinceMonday(ref))
		next = start.AddDate(0, 0, 7)
	case Month:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		next = start.AddDate(0, 1, 0)
	default: // Year
		start = time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
		next = start.AddDate(1, 0, 0)
	}
	return DateRange{Start: start, End: next.Add(-time.Nanosecond)}
}

// BucketKey normalizes a record date to its bucket's reference instant.
// Buckets are daily for day/week/month reports and monthly for year
// reports. Yearly buckets carry the year as well as the month, so a
// multi-year range never conflates same-month records from different
// years.
func BucketKey(p TimePeriod, t time.Time) time.Time {
	if p == Year {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	return midnight(t)
}

// BucketLabel formats a bucket reference instant for display.
func BucketLabel(p TimePeriod, t time.Time) string {
	switch p {
	case Week:
		return t.Weekday().String()
	case Year:
		return t.Month().String()
	default:
		return t.Format("2006-01-02")
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysSinceMonday returns how many days before t the ISO week began.
// Sunday is the last day of the ISO week, six days after Monday.
func daysSinceMonday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 6
	}
	return int(t.Weekday()) - 1
}
