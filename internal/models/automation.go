package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActiveAutomation is a recurring per-client check-in rule. On each weekday
// in Weekdays, at or after TimeOfDay in the organization's timezone, the
// suggestion job drafts check-in message options from the client's recent
// messages and open tasks.
type ActiveAutomation struct {
	gorm.Model
	OrganizationID  uint           `gorm:"not null;index"`
	Organization    Organization   `gorm:"constraint:OnDelete:CASCADE;"`
	ClientID        uint           `gorm:"not null;index"`
	Client          Client         `gorm:"constraint:OnDelete:CASCADE;"`
	Weekdays        datatypes.JSON `gorm:"type:jsonb;not null"` // array of 0-6 (Sunday=0)
	TimeOfDay       string         `gorm:"not null;default:'09:00'"` // HH:mm, org-local
	ContextDays     int            `gorm:"not null;default:7"`
	ApproverID      *uint
	Guidance        string `gorm:"type:text"` // extra instructions for the generation prompt
	Active          bool   `gorm:"not null;default:true"`
	LastGeneratedAt *time.Time
}

// WeekdaySet decodes the JSONB weekday array into a set. Malformed or empty
// arrays yield an empty set, which makes the automation never eligible.
func (a *ActiveAutomation) WeekdaySet() map[time.Weekday]bool {
	var days []int
	set := make(map[time.Weekday]bool)
	if err := json.Unmarshal(a.Weekdays, &days); err != nil {
		return set
	}
	for _, d := range days {
		if d >= 0 && d <= 6 {
			set[time.Weekday(d)] = true
		}
	}
	return set
}

// ActiveSuggestion status constants
const (
	SuggestionStatusPending  = "pending"
	SuggestionStatusApproved = "approved"
	SuggestionStatusRejected = "rejected"
	SuggestionStatusSent     = "sent"
)

// ActiveSuggestion is one generated artifact per automation per calendar day:
// 1..N candidate messages awaiting human approval. SuggestionDate plus the
// unique index on (automation_id, suggestion_date) enforces the one-per-day
// invariant at the database, backing up the job's read-then-check.
type ActiveSuggestion struct {
	gorm.Model
	OrganizationID   uint             `gorm:"not null;index"`
	Organization     Organization     `gorm:"constraint:OnDelete:CASCADE;"`
	AutomationID     uint             `gorm:"not null;uniqueIndex:idx_suggestions_automation_day,where:deleted_at IS NULL"`
	Automation       ActiveAutomation `gorm:"foreignKey:AutomationID;constraint:OnDelete:CASCADE;"`
	ClientID         uint             `gorm:"not null;index"`
	Client           Client           `gorm:"constraint:OnDelete:CASCADE;"`
	SuggestionDate   time.Time        `gorm:"type:date;not null;uniqueIndex:idx_suggestions_automation_day,where:deleted_at IS NULL"`
	Options          datatypes.JSON   `gorm:"type:jsonb;not null"` // array of candidate message strings
	SuggestedMessage string           `gorm:"type:text;not null"`  // defaults to options[0], editable on approval
	ContextSummary   string           `gorm:"type:text"`
	Status           string           `gorm:"not null;default:'pending';index"`
	ApprovedBy       *uint
	ApprovedAt       *time.Time
	ProviderMessageID string `gorm:"index"`
}

// OptionList decodes the JSONB options array.
func (s *ActiveSuggestion) OptionList() []string {
	var opts []string
	if err := json.Unmarshal(s.Options, &opts); err != nil {
		return nil
	}
	return opts
}
