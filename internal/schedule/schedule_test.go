package schedule

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestNextRunDaily(t *testing.T) {
	c := Cadence{Kind: Daily, Hour: 9, Minute: 0}

	// Wednesday 10:00 -> Thursday 09:00, even though 09:00 today has passed
	now := date(2025, time.June, 4, 10, 0)
	next, err := NextRun(c, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := date(2025, time.June, 5, 9, 0)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}

	// Before today's slot still lands tomorrow (daily always advances a day)
	now = date(2025, time.June, 4, 8, 0)
	next, _ = NextRun(c, now)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestNextRunWeekly(t *testing.T) {
	c := Cadence{Kind: Weekly, Weekday: time.Monday, Hour: 9, Minute: 0}

	// Wednesday 10:00 -> next Monday 09:00
	now := date(2025, time.June, 4, 10, 0) // a Wednesday
	next, err := NextRun(c, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := date(2025, time.June, 9, 9, 0)
	if next.Weekday() != time.Monday {
		t.Errorf("expected a Monday, got %v", next.Weekday())
	}
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}

	// Monday before 09:00 -> same day
	now = date(2025, time.June, 9, 8, 30)
	next, _ = NextRun(c, now)
	if !next.Equal(date(2025, time.June, 9, 9, 0)) {
		t.Errorf("expected same-day slot, got %v", next)
	}

	// Monday at exactly 09:00 -> a full week ahead (strictly after now)
	now = date(2025, time.June, 9, 9, 0)
	next, _ = NextRun(c, now)
	if !next.Equal(date(2025, time.June, 16, 9, 0)) {
		t.Errorf("expected next week, got %v", next)
	}

	// Monday after 09:00 -> a full week ahead
	now = date(2025, time.June, 9, 9, 1)
	next, _ = NextRun(c, now)
	if !next.Equal(date(2025, time.June, 16, 9, 0)) {
		t.Errorf("expected next week, got %v", next)
	}
}

func TestNextRunMonthly(t *testing.T) {
	c := Cadence{Kind: Monthly, DayOfMonth: 15, Hour: 9, Minute: 0}

	// Before the slot this month -> this month
	now := date(2025, time.June, 10, 12, 0)
	next, err := NextRun(c, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Equal(date(2025, time.June, 15, 9, 0)) {
		t.Errorf("expected June 15, got %v", next)
	}

	// After the slot this month -> next month
	now = date(2025, time.June, 20, 12, 0)
	next, _ = NextRun(c, now)
	if !next.Equal(date(2025, time.July, 15, 9, 0)) {
		t.Errorf("expected July 15, got %v", next)
	}
}

func TestNextRunMonthlyClampsToMonthEnd(t *testing.T) {
	c := Cadence{Kind: Monthly, DayOfMonth: 31, Hour: 9, Minute: 0}

	// From Jan 31 after the slot: February has no day 31, clamp to Feb 28
	now := date(2025, time.January, 31, 10, 0)
	next, err := NextRun(c, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !next.Equal(date(2025, time.February, 28, 9, 0)) {
		t.Errorf("expected Feb 28, got %v", next)
	}

	// Leap year clamps to Feb 29
	now = date(2024, time.January, 31, 10, 0)
	next, _ = NextRun(c, now)
	if !next.Equal(date(2024, time.February, 29, 9, 0)) {
		t.Errorf("expected Feb 29, got %v", next)
	}
}

func TestNextRunStrictlyAfterNow(t *testing.T) {
	cadences := []Cadence{
		{Kind: Daily, Hour: 9, Minute: 0},
		{Kind: Weekly, Weekday: time.Friday, Hour: 18, Minute: 30},
		{Kind: Monthly, DayOfMonth: 1, Hour: 0, Minute: 0},
	}
	instants := []time.Time{
		date(2025, time.June, 4, 10, 0),
		date(2025, time.June, 6, 18, 30), // exactly on the weekly slot
		date(2025, time.July, 1, 0, 0),   // exactly on the monthly slot
		date(2025, time.December, 31, 23, 59),
	}

	for _, c := range cadences {
		for _, now := range instants {
			next, err := NextRun(c, now)
			if err != nil {
				t.Fatalf("unexpected error for %+v: %v", c, err)
			}
			if !next.After(now) {
				t.Errorf("NextRun(%+v, %v) = %v, not strictly after now", c, now, next)
			}
		}
	}
}

func TestNextRunPreservesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skip("tzdata not available")
	}

	c := Cadence{Kind: Weekly, Weekday: time.Monday, Hour: 9, Minute: 0}
	now := time.Date(2025, time.June, 4, 10, 0, 0, 0, loc)
	next, err := NextRun(c, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Location() != loc {
		t.Errorf("expected result in %v, got %v", loc, next.Location())
	}
	if next.Hour() != 9 {
		t.Errorf("expected 09:00 local, got %02d:%02d", next.Hour(), next.Minute())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cadence Cadence
		field   string
	}{
		{"unknown kind", Cadence{Kind: "yearly"}, "kind"},
		{"weekday too large", Cadence{Kind: Weekly, Weekday: 7}, "weekday"},
		{"day of month zero", Cadence{Kind: Monthly, DayOfMonth: 0}, "day_of_month"},
		{"day of month too large", Cadence{Kind: Monthly, DayOfMonth: 32}, "day_of_month"},
		{"hour out of range", Cadence{Kind: Daily, Hour: 24}, "hour"},
		{"minute out of range", Cadence{Kind: Daily, Minute: 60}, "minute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cadence.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}

	valid := []Cadence{
		{Kind: Daily, Hour: 9},
		{Kind: Weekly, Weekday: time.Saturday, Hour: 23, Minute: 59},
		{Kind: Monthly, DayOfMonth: 31},
	}
	for _, c := range valid {
		if err := c.Validate(); err != nil {
			t.Errorf("expected %+v to be valid, got %v", c, err)
		}
	}
}

func TestParseTimeOfDay(t *testing.T) {
	hour, minute, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hour != 9 || minute != 30 {
		t.Errorf("expected 9:30, got %d:%d", hour, minute)
	}

	for _, bad := range []string{"", "9:30:00", "25:00", "09:61", "noon"} {
		if _, _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
