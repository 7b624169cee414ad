// Package store implements the data-store surfaces of the batch jobs over
// an injected GORM handle. The handle's lifecycle is owned by the process
// entry point; nothing here holds global state.
package store

import (
	"context"
	"time"

	"github.com/zapflow/zapflow/internal/models"
	"gorm.io/gorm"
)

// Gorm is the Postgres-backed store.
type Gorm struct {
	db *gorm.DB
}

// New creates a store over the given database handle.
func New(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// ActiveAutomations returns all active automations with client and
// organization preloaded, oldest first for stable batch ordering.
func (s *Gorm) ActiveAutomations(ctx context.Context) ([]models.ActiveAutomation, error) {
	var automations []models.ActiveAutomation
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Organization").
		Where("active = ?", true).
		Order("id").
		Find(&automations).Error
	return automations, err
}

// HasSuggestionOn reports whether a suggestion exists for the automation on
// the given calendar day.
func (s *Gorm) HasSuggestionOn(ctx context.Context, automationID uint, day time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ActiveSuggestion{}).
		Where("automation_id = ? AND suggestion_date = ?", automationID, day.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}

// RecentMessages returns the client's feed messages since the given instant,
// newest first, capped at limit.
func (s *Gorm) RecentMessages(ctx context.Context, clientID uint, since time.Time, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND created_at >= ?", clientID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// OpenTasks returns the client's open and in-progress tasks, capped at limit.
func (s *Gorm) OpenTasks(ctx context.Context, clientID uint, limit int) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND status IN ?", clientID, []string{models.TaskStatusOpen, models.TaskStatusDoing}).
		Order("created_at DESC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

// CreateSuggestion inserts the suggestion row. The unique index on
// (automation_id, suggestion_date) surfaces concurrent double-generation
// as an insert error.
func (s *Gorm) CreateSuggestion(ctx context.Context, suggestion *models.ActiveSuggestion) error {
	return s.db.WithContext(ctx).Create(suggestion).Error
}

// TouchAutomation records the last generation time on the automation.
func (s *Gorm) TouchAutomation(ctx context.Context, automationID uint, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.ActiveAutomation{}).
		Where("id = ?", automationID).
		Update("last_generated_at", at).Error
}
