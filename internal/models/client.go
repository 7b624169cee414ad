package models

import (
	"time"

	"gorm.io/gorm"
)

// Client represents an agency client (a lead or customer the agency talks to).
// ManualOverride marks conversations a human has taken over: automated sends
// and status updates must no-op while it is set.
type Client struct {
	gorm.Model
	OrganizationID uint         `gorm:"not null;index"`
	Organization   Organization `gorm:"constraint:OnDelete:CASCADE;"`
	Name           string       `gorm:"not null"`
	Phone          string       `gorm:"not null"`
	ManualOverride bool         `gorm:"not null;default:false"`
	Active         bool         `gorm:"not null;default:true"`
}

// Task status constants
const (
	TaskStatusOpen  = "open"
	TaskStatusDoing = "doing"
	TaskStatusDone  = "done"
)

// Task is a kanban card tied to a client. Only titles/status feed the
// suggestion context; board mechanics live in the dashboard.
type Task struct {
	gorm.Model
	OrganizationID uint         `gorm:"not null;index"`
	Organization   Organization `gorm:"constraint:OnDelete:CASCADE;"`
	ClientID       uint         `gorm:"not null;index"`
	Client         Client       `gorm:"constraint:OnDelete:CASCADE;"`
	Title          string       `gorm:"not null"`
	Status         string       `gorm:"not null;default:'open';index"`
	DueAt          *time.Time
}

// Message direction constants
const (
	DirectionInbound  = "in"
	DirectionOutbound = "out"
)

// Message is one entry in a conversation feed. A message belongs to exactly
// one thread: a client feed, a task thread, or a DM channel. The three
// nullable columns are the storage shape; use Thread/SetThread at the
// application boundary.
type Message struct {
	gorm.Model
	OrganizationID    uint         `gorm:"not null;index"`
	Organization      Organization `gorm:"constraint:OnDelete:CASCADE;"`
	ClientID          *uint        `gorm:"index"`
	TaskID            *uint        `gorm:"index"`
	ChannelID         *uint        `gorm:"index"`
	Direction         string       `gorm:"not null"`
	Body              string       `gorm:"type:text;not null"`
	ProviderMessageID string       `gorm:"index"`
}

// ThreadKind discriminates the thread a message belongs to.
type ThreadKind string

const (
	ThreadFeed ThreadKind = "feed"
	ThreadTask ThreadKind = "task"
	ThreadDM   ThreadKind = "dm"
)

// ThreadRef is the tagged-union view of a message's thread.
type ThreadRef struct {
	Kind      ThreadKind
	ClientID  uint
	TaskID    uint
	ChannelID uint
}

// Thread returns the tagged thread reference for the message.
// Exactly one of the three FK columns is expected to be set.
func (m *Message) Thread() ThreadRef {
	switch {
	case m.TaskID != nil:
		return ThreadRef{Kind: ThreadTask, TaskID: *m.TaskID}
	case m.ChannelID != nil:
		return ThreadRef{Kind: ThreadDM, ChannelID: *m.ChannelID}
	case m.ClientID != nil:
		return ThreadRef{Kind: ThreadFeed, ClientID: *m.ClientID}
	default:
		return ThreadRef{}
	}
}

// SetThread writes the tagged reference back to the nullable FK columns,
// clearing the other two.
func (m *Message) SetThread(ref ThreadRef) {
	m.ClientID, m.TaskID, m.ChannelID = nil, nil, nil
	switch ref.Kind {
	case ThreadFeed:
		m.ClientID = &ref.ClientID
	case ThreadTask:
		m.TaskID = &ref.TaskID
	case ThreadDM:
		m.ChannelID = &ref.ChannelID
	}
}

// ClientMetrics is a per-client marketing performance snapshot. The latest
// row per client feeds the report placeholders ({{leads}}, {{cpl}}, ...).
type ClientMetrics struct {
	gorm.Model
	OrganizationID uint         `gorm:"not null;index"`
	Organization   Organization `gorm:"constraint:OnDelete:CASCADE;"`
	ClientID       uint         `gorm:"not null;index"`
	Client         Client       `gorm:"constraint:OnDelete:CASCADE;"`
	PeriodStart    time.Time    `gorm:"not null"`
	Leads          int64        `gorm:"not null;default:0"`
	CPL            float64      `gorm:"not null;default:0"` // cost per lead, org currency
	AdSpend        float64      `gorm:"not null;default:0"`
	Conversions    int64        `gorm:"not null;default:0"`
	ROAS           float64      `gorm:"not null;default:0"` // return on ad spend, ratio
}
