package dispatch

import (
	"time"

	"github.com/zapflow/zapflow/internal/models"
	"github.com/zapflow/zapflow/internal/schedule"
)

// ReportCadence builds the schedule cadence from a report's stored fields.
// Returns a *schedule.ValidationError for out-of-range or inconsistent
// fields, before anything is computed or written.
func ReportCadence(r *models.ScheduledReport) (schedule.Cadence, error) {
	hour, minute, err := schedule.ParseTimeOfDay(r.TimeOfDay)
	if err != nil {
		return schedule.Cadence{}, err
	}

	c := schedule.Cadence{Hour: hour, Minute: minute}

	switch r.Cadence {
	case models.CadenceDaily:
		c.Kind = schedule.Daily
	case models.CadenceWeekly:
		c.Kind = schedule.Weekly
		if r.Weekday == nil {
			return schedule.Cadence{}, &schedule.ValidationError{Field: "weekday", Reason: "required for weekly cadence"}
		}
		c.Weekday = time.Weekday(*r.Weekday)
	case models.CadenceMonthly:
		c.Kind = schedule.Monthly
		if r.DayOfMonth == nil {
			return schedule.Cadence{}, &schedule.ValidationError{Field: "day_of_month", Reason: "required for monthly cadence"}
		}
		c.DayOfMonth = *r.DayOfMonth
	default:
		return schedule.Cadence{}, &schedule.ValidationError{Field: "cadence", Reason: "must be daily, weekly or monthly"}
	}

	if err := c.Validate(); err != nil {
		return schedule.Cadence{}, err
	}
	return c, nil
}

// NextRunFor computes a report's next run from now, in the organization's
// timezone when available (time-of-day is a tenant-local notion).
func NextRunFor(r *models.ScheduledReport, now time.Time, tz string) (time.Time, error) {
	c, err := ReportCadence(r)
	if err != nil {
		return time.Time{}, err
	}

	if tz != "" {
		if loc, locErr := time.LoadLocation(tz); locErr == nil {
			now = now.In(loc)
		}
	}

	next, err := schedule.NextRun(c, now)
	if err != nil {
		return time.Time{}, err
	}
	return next.UTC(), nil
}
