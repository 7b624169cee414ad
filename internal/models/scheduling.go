package models

import (
	"time"

	"gorm.io/gorm"
)

// Cadence kind constants for scheduled reports
const (
	CadenceDaily   = "daily"
	CadenceWeekly  = "weekly"
	CadenceMonthly = "monthly"
)

// ScheduledReport is a recurring report definition. Exactly one of
// Weekday/DayOfMonth is set, matching the cadence. NextRun is recomputed
// whenever cadence fields change and after every successful send.
// Reports are soft-disabled via Active, never hard-deleted while history
// exists (soft delete only).
type ScheduledReport struct {
	gorm.Model
	OrganizationID uint         `gorm:"not null;index"`
	Organization   Organization `gorm:"constraint:OnDelete:CASCADE;"`
	ClientID       uint         `gorm:"not null;index"`
	Client         Client       `gorm:"constraint:OnDelete:CASCADE;"`
	Cadence        string       `gorm:"not null"` // daily|weekly|monthly
	Weekday        *int         // 0-6, required when weekly
	DayOfMonth     *int         // 1-31, required when monthly
	TimeOfDay      string       `gorm:"not null;default:'09:00'"` // HH:mm
	Template       string       `gorm:"type:text;not null"`
	Active         bool         `gorm:"not null;default:true"`
	NextRun        *time.Time   `gorm:"index"`
	LastRun        *time.Time
}

// ScheduledMessage (dispatch) lifecycle constants
const (
	DispatchStatusPending   = "pending"
	DispatchStatusSent      = "sent"
	DispatchStatusFailed    = "failed"
	DispatchStatusCancelled = "cancelled"
)

// ScheduledMessage is a one-off dispatch bound to a single future timestamp.
// Immutable once sent.
type ScheduledMessage struct {
	gorm.Model
	OrganizationID    uint         `gorm:"not null;index"`
	Organization      Organization `gorm:"constraint:OnDelete:CASCADE;"`
	ClientID          uint         `gorm:"not null;index"`
	Client            Client       `gorm:"constraint:OnDelete:CASCADE;"`
	Body              string       `gorm:"type:text;not null"`
	Category          string       `gorm:"not null;default:'general'"`
	SendAt            time.Time    `gorm:"not null;index"`
	Status            string       `gorm:"not null;default:'pending';index"`
	ProviderMessageID string       `gorm:"index"`
	ErrorMessage      string       `gorm:"column:error_message;type:text"`
}
