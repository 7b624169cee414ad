package dispatch

import (
	"errors"
	"testing"
	"time"

	"github.com/zapflow/zapflow/internal/models"
	"github.com/zapflow/zapflow/internal/schedule"
)

func intptr(n int) *int { return &n }

func TestReportCadence(t *testing.T) {
	r := &models.ScheduledReport{
		Cadence:   models.CadenceWeekly,
		Weekday:   intptr(1),
		TimeOfDay: "09:30",
	}

	c, err := ReportCadence(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Kind != schedule.Weekly || c.Weekday != time.Monday || c.Hour != 9 || c.Minute != 30 {
		t.Errorf("unexpected cadence: %+v", c)
	}
}

func TestReportCadenceValidation(t *testing.T) {
	tests := []struct {
		name   string
		report models.ScheduledReport
		field  string
	}{
		{
			"weekly without weekday",
			models.ScheduledReport{Cadence: models.CadenceWeekly, TimeOfDay: "09:00"},
			"weekday",
		},
		{
			"monthly without day of month",
			models.ScheduledReport{Cadence: models.CadenceMonthly, TimeOfDay: "09:00"},
			"day_of_month",
		},
		{
			"unknown cadence",
			models.ScheduledReport{Cadence: "hourly", TimeOfDay: "09:00"},
			"cadence",
		},
		{
			"bad time of day",
			models.ScheduledReport{Cadence: models.CadenceDaily, TimeOfDay: "noon"},
			"time_of_day",
		},
		{
			"weekday out of range",
			models.ScheduledReport{Cadence: models.CadenceWeekly, Weekday: intptr(9), TimeOfDay: "09:00"},
			"weekday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReportCadence(&tt.report)
			var verr *schedule.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestNextRunForUsesOrgTimezone(t *testing.T) {
	r := &models.ScheduledReport{
		Cadence:   models.CadenceWeekly,
		Weekday:   intptr(1), // Monday
		TimeOfDay: "09:00",
	}

	// Wednesday 2025-06-04 12:00 UTC
	now := time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC)

	next, err := NextRunFor(r, now, "America/Sao_Paulo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Monday 09:00 in Sao Paulo (UTC-3) is 12:00 UTC
	want := time.Date(2025, time.June, 9, 12, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
	if next.Location() != time.UTC {
		t.Errorf("expected UTC result, got %v", next.Location())
	}
}

func TestNextRunForEmptyTimezone(t *testing.T) {
	r := &models.ScheduledReport{
		Cadence:   models.CadenceDaily,
		TimeOfDay: "09:00",
	}
	now := time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC)

	next, err := NextRunFor(r, now, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, time.June, 5, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}
