package period

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	t.Run("valid_periods", func(t *testing.T) {
		for _, s := range []string{"day", "week", "month", "year"} {
			p, err := Parse(s)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", s, err)
			}
			if string(p) != s {
				t.Errorf("Parse(%q) = %q", s, p)
			}
		}
	})

	t.Run("empty_defaults_to_month", func(t *testing.T) {
		p, err := Parse("")
		if err != nil {
			t.Fatalf("Parse(\"\") returned error: %v", err)
		}
		if p != Month {
			t.Errorf("expected month default, got %q", p)
		}
	})

	t.Run("invalid_rejected", func(t *testing.T) {
		for _, s := range []string{"hour", "quarter", "Week", "months"} {
			if _, err := Parse(s); err == nil {
				t.Errorf("Parse(%q) should fail", s)
			}
		}
	})
}

func TestRangeFor(t *testing.T) {
	t.Run("day", func(t *testing.T) {
		ref := time.Date(2024, time.March, 5, 14, 30, 12, 0, time.UTC)
		r := RangeFor(Day, ref)
		if !r.Start.Equal(date(2024, time.March, 5)) {
			t.Errorf("start = %v", r.Start)
		}
		if !r.End.Equal(date(2024, time.March, 6).Add(-time.Nanosecond)) {
			t.Errorf("end = %v", r.End)
		}
	})

	t.Run("week_starts_monday", func(t *testing.T) {
		// 2024-03-07 is a Thursday; its ISO week is Mar 4 (Mon) to Mar 10 (Sun).
		r := RangeFor(Week, date(2024, time.March, 7))
		if !r.Start.Equal(date(2024, time.March, 4)) {
			t.Errorf("start = %v", r.Start)
		}
		if !r.End.Equal(date(2024, time.March, 11).Add(-time.Nanosecond)) {
			t.Errorf("end = %v", r.End)
		}
	})

	t.Run("week_sunday_reference", func(t *testing.T) {
		// Sunday belongs to the week that began six days earlier.
		r := RangeFor(Week, date(2024, time.March, 10))
		if !r.Start.Equal(date(2024, time.March, 4)) {
			t.Errorf("start = %v", r.Start)
		}
	})

	t.Run("week_spans_seven_days", func(t *testing.T) {
		for d := 1; d <= 28; d++ {
			r := RangeFor(Week, date(2024, time.March, d))
			if got := r.End.Sub(r.Start) + time.Nanosecond; got != 7*24*time.Hour {
				t.Errorf("week of 2024-03-%02d spans %v", d, got)
			}
			if r.Start.Weekday() != time.Monday {
				t.Errorf("week of 2024-03-%02d starts on %v", d, r.Start.Weekday())
			}
		}
	})

	t.Run("month_end_day", func(t *testing.T) {
		cases := []struct {
			ref     time.Time
			lastDay int
		}{
			{date(2024, time.February, 10), 29}, // leap year
			{date(2023, time.February, 10), 28},
			{date(2024, time.April, 1), 30},
			{date(2024, time.March, 31), 31},
		}
		for _, tc := range cases {
			r := RangeFor(Month, tc.ref)
			if r.Start.Day() != 1 {
				t.Errorf("month start for %v = %v", tc.ref, r.Start)
			}
			if r.End.Day() != tc.lastDay {
				t.Errorf("month end for %v = %v, want day %d", tc.ref, r.End, tc.lastDay)
			}
		}
	})

	t.Run("year", func(t *testing.T) {
		r := RangeFor(Year, date(2024, time.June, 15))
		if !r.Start.Equal(date(2024, time.January, 1)) {
			t.Errorf("start = %v", r.Start)
		}
		if r.End.Month() != time.December || r.End.Day() != 31 {
			t.Errorf("end = %v", r.End)
		}
	})

	t.Run("start_never_after_end", func(t *testing.T) {
		ref := time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC)
		for _, p := range []TimePeriod{Day, Week, Month, Year} {
			r := RangeFor(p, ref)
			if r.Start.After(r.End) {
				t.Errorf("%s: start %v after end %v", p, r.Start, r.End)
			}
			if ref.Before(r.Start) || ref.After(r.End) {
				t.Errorf("%s: ref outside its own window [%v, %v]", p, r.Start, r.End)
			}
		}
	})
}

func TestBucketKey(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 18, 45, 0, 0, time.UTC)

	for _, p := range []TimePeriod{Day, Week, Month} {
		if got := BucketKey(p, ts); !got.Equal(date(2024, time.March, 5)) {
			t.Errorf("BucketKey(%s) = %v", p, got)
		}
	}

	if got := BucketKey(Year, ts); !got.Equal(date(2024, time.March, 1)) {
		t.Errorf("BucketKey(year) = %v", got)
	}

	// Same month, different years must stay distinct buckets.
	a := BucketKey(Year, date(2023, time.March, 10))
	b := BucketKey(Year, date(2024, time.March, 10))
	if a.Equal(b) {
		t.Error("year buckets conflate records from different years")
	}
}

func TestBucketLabel(t *testing.T) {
	ts := date(2024, time.March, 5) // a Tuesday

	if got := BucketLabel(Day, ts); got != "2024-03-05" {
		t.Errorf("day label = %q", got)
	}
	if got := BucketLabel(Month, ts); got != "2024-03-05" {
		t.Errorf("month label = %q", got)
	}
	if got := BucketLabel(Week, ts); got != "Tuesday" {
		t.Errorf("week label = %q", got)
	}
	if got := BucketLabel(Year, ts); got != "March" {
		t.Errorf("year label = %q", got)
	}
}
