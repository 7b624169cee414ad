// Package schedule computes next-run timestamps for recurring cadences
// (daily/weekly/monthly at a time of day). All functions are pure; callers
// pass the reference instant and receive a result strictly after it.
package schedule

import (
	"fmt"
	"time"
)

// Kind is the recurrence kind of a cadence.
type Kind string

const (
	Daily   Kind = "daily"
	Weekly  Kind = "weekly"
	Monthly Kind = "monthly"
)

// Cadence describes a recurrence rule plus time of day.
// Weekday is only meaningful for Weekly, DayOfMonth only for Monthly.
type Cadence struct {
	Kind       Kind
	Weekday    time.Weekday // 0 (Sunday) - 6 (Saturday)
	DayOfMonth int          // 1-31
	Hour       int          // 0-23
	Minute     int          // 0-59
}

// ValidationError reports a cadence field that is out of range or
// inconsistent with the cadence kind. Rejected before any computation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid cadence: %s %s", e.Field, e.Reason)
}

// Validate checks field ranges and kind/field consistency.
func (c Cadence) Validate() error {
	switch c.Kind {
	case Daily:
	case Weekly:
		if c.Weekday < time.Sunday || c.Weekday > time.Saturday {
			return &ValidationError{Field: "weekday", Reason: "must be between 0 and 6"}
		}
	case Monthly:
		if c.DayOfMonth < 1 || c.DayOfMonth > 31 {
			return &ValidationError{Field: "day_of_month", Reason: "must be between 1 and 31"}
		}
	default:
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", string(c.Kind))}
	}

	if c.Hour < 0 || c.Hour > 23 {
		return &ValidationError{Field: "hour", Reason: "must be between 0 and 23"}
	}
	if c.Minute < 0 || c.Minute > 59 {
		return &ValidationError{Field: "minute", Reason: "must be between 0 and 59"}
	}
	return nil
}

// NextRun returns the next occurrence of the cadence strictly after now,
// in now's location.
//
// Daily runs land on the following day. Weekly runs land on the nearest
// future matching weekday; a same-day slot that has already elapsed (or
// equals now exactly) advances a full week. Monthly runs land on the
// configured day of the current month if that slot is still ahead,
// otherwise on that day of the next month; a day beyond the target month's
// length clamps to the month's last day, so "day 31" means end of month.
func NextRun(c Cadence, now time.Time) (time.Time, error) {
	if err := c.Validate(); err != nil {
		return time.Time{}, err
	}

	switch c.Kind {
	case Daily:
		next := atTime(now.AddDate(0, 0, 1), c.Hour, c.Minute)
		return next, nil

	case Weekly:
		days := (int(c.Weekday) - int(now.Weekday()) + 7) % 7
		next := atTime(now.AddDate(0, 0, days), c.Hour, c.Minute)
		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}
		return next, nil

	default: // Monthly, kinds already validated
		next := monthlyOccurrence(now.Year(), now.Month(), c, now.Location())
		if !next.After(now) {
			next = monthlyOccurrence(now.Year(), now.Month()+1, c, now.Location())
		}
		return next, nil
	}
}

// monthlyOccurrence places the cadence in the given month, clamping the
// day to the month's length.
func monthlyOccurrence(year int, month time.Month, c Cadence, loc *time.Location) time.Time {
	day := c.DayOfMonth
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, c.Hour, c.Minute, 0, 0, loc)
}

// daysIn returns the number of days in the given month. time.Date
// normalizes "day 0 of month+1" to the last day of month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func atTime(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// ParseTimeOfDay parses an "HH:mm" string into hour and minute components.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, &ValidationError{Field: "time_of_day", Reason: fmt.Sprintf("%q is not HH:mm", s)}
	}
	return t.Hour(), t.Minute(), nil
}
