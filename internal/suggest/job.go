// Package suggest implements the check-in suggestion generation job: for
// every eligible automation it gathers recent client context, asks the LLM
// for candidate check-in messages and persists one pending suggestion per
// automation per calendar day.
package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapflow/zapflow/internal/models"
	"github.com/zapflow/zapflow/internal/schedule"
)

// Context fetch caps. The LLM call dominates latency; these only bound the
// prompt size.
const (
	maxContextMessages = 50
	maxContextTasks    = 20
)

// Store is the data-store surface the job needs. Implemented by store.Gorm
// in production and by fakes in tests.
type Store interface {
	// ActiveAutomations returns all active automations with their client and
	// organization preloaded.
	ActiveAutomations(ctx context.Context) ([]models.ActiveAutomation, error)
	// HasSuggestionOn reports whether a suggestion row exists for the
	// automation on the given calendar day.
	HasSuggestionOn(ctx context.Context, automationID uint, day time.Time) (bool, error)
	// RecentMessages returns the client's feed messages since the given
	// instant, newest first, capped at limit.
	RecentMessages(ctx context.Context, clientID uint, since time.Time, limit int) ([]models.Message, error)
	// OpenTasks returns the client's open and in-progress tasks, capped at limit.
	OpenTasks(ctx context.Context, clientID uint, limit int) ([]models.Task, error)
	// CreateSuggestion inserts the suggestion row.
	CreateSuggestion(ctx context.Context, s *models.ActiveSuggestion) error
	// TouchAutomation records the last generation time on the automation.
	TouchAutomation(ctx context.Context, automationID uint, at time.Time) error
}

// Chatter is the LLM surface the job needs.
type Chatter interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// RunResult summarizes one batch invocation. Logs carries the per-automation
// skip/success/error lines returned by the trigger surface.
type RunResult struct {
	Generated int
	Skipped   int
	Failed    int
	Logs      []string
}

func (r *RunResult) logf(format string, args ...any) {
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}

// Job generates suggestions for all eligible automations.
type Job struct {
	store  Store
	llm    Chatter
	logger *slog.Logger
	now    func() time.Time
}

// NewJob creates a suggestion generation job. now may be nil (wall clock).
func NewJob(store Store, llm Chatter, logger *slog.Logger, now func() time.Time) *Job {
	if now == nil {
		now = time.Now
	}
	return &Job{store: store, llm: llm, logger: logger, now: now}
}

// Run processes all active automations sequentially. Failures are isolated
// per automation: one client's bad context or LLM error never aborts the
// rest of the batch. The returned result is always non-nil; the error is
// only non-nil when the automation list itself cannot be fetched.
func (j *Job) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	automations, err := j.store.ActiveAutomations(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list automations: %w", err)
	}

	result.logf("processing %d active automation(s)", len(automations))

	for i := range automations {
		auto := &automations[i]
		if err := j.processOne(ctx, auto, result); err != nil {
			result.Failed++
			result.logf("error for %s: %v", auto.Client.Name, err)
			j.logger.Error("Suggestion generation failed",
				"automation_id", auto.ID,
				"client", auto.Client.Name,
				"error", err.Error(),
			)
		}
	}

	j.logger.Info("Suggestion batch finished",
		"generated", result.Generated,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

// processOne runs eligibility checks and, when eligible, the full
// context → prompt → LLM → persist pipeline for a single automation.
func (j *Job) processOne(ctx context.Context, auto *models.ActiveAutomation, result *RunResult) error {
	now := j.now()

	// Eligibility is evaluated in the organization's local time: the
	// weekday set and time-of-day both refer to the tenant's day.
	local := now.In(j.orgLocation(auto))
	today := truncateToDay(local)

	if !auto.WeekdaySet()[local.Weekday()] {
		result.Skipped++
		result.logf("skipping %s: %s not in schedule", auto.Client.Name, local.Weekday())
		return nil
	}

	if hour, minute, err := schedule.ParseTimeOfDay(auto.TimeOfDay); err == nil {
		due := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, local.Location())
		if local.Before(due) {
			result.Skipped++
			result.logf("skipping %s: not due until %s", auto.Client.Name, auto.TimeOfDay)
			return nil
		}
	}

	exists, err := j.store.HasSuggestionOn(ctx, auto.ID, today)
	if err != nil {
		return fmt.Errorf("duplicate check failed: %w", err)
	}
	if exists {
		result.Skipped++
		result.logf("skipping %s: suggestion already generated today", auto.Client.Name)
		return nil
	}

	contextDays := auto.ContextDays
	if contextDays <= 0 {
		contextDays = 7
	}
	since := now.AddDate(0, 0, -contextDays)

	messages, err := j.store.RecentMessages(ctx, auto.ClientID, since, maxContextMessages)
	if err != nil {
		return fmt.Errorf("context fetch failed: %w", err)
	}
	tasks, err := j.store.OpenTasks(ctx, auto.ClientID, maxContextTasks)
	if err != nil {
		return fmt.Errorf("context fetch failed: %w", err)
	}

	systemPrompt, userPrompt := buildPrompt(auto, messages, tasks)

	raw, err := j.llm.Chat(ctx, systemPrompt, userPrompt)
	if err != nil {
		return fmt.Errorf("LLM call failed: %w", err)
	}

	options := parseOptions(raw)
	optionsJSON, err := encodeOptions(options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}

	suggestion := &models.ActiveSuggestion{
		OrganizationID:   auto.OrganizationID,
		AutomationID:     auto.ID,
		ClientID:         auto.ClientID,
		SuggestionDate:   today,
		Options:          optionsJSON,
		SuggestedMessage: options[0],
		ContextSummary:   contextSummary(len(messages), len(tasks), contextDays),
		Status:           models.SuggestionStatusPending,
	}

	if err := j.store.CreateSuggestion(ctx, suggestion); err != nil {
		// A concurrent run already inserted today's row: the unique index
		// on (automation_id, suggestion_date) makes this a skip, not a failure.
		if exists, checkErr := j.store.HasSuggestionOn(ctx, auto.ID, today); checkErr == nil && exists {
			result.Skipped++
			result.logf("skipping %s: suggestion created by concurrent run", auto.Client.Name)
			return nil
		}
		return fmt.Errorf("failed to persist suggestion: %w", err)
	}

	if err := j.store.TouchAutomation(ctx, auto.ID, now); err != nil {
		j.logger.Warn("Failed to update last_generated_at",
			"automation_id", auto.ID, "error", err.Error())
	}

	result.Generated++
	result.logf("generated %d option(s) for %s", len(options), auto.Client.Name)
	return nil
}

// orgLocation resolves the automation's organization timezone, falling back
// to UTC on bad data.
func (j *Job) orgLocation(auto *models.ActiveAutomation) *time.Location {
	tz := auto.Organization.Timezone
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		j.logger.Warn("Invalid organization timezone, using UTC",
			"organization_id", auto.OrganizationID, "timezone", tz)
		return time.UTC
	}
	return loc
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// contextSummary is the short machine-generated description stored on the
// suggestion so approvers can see how much context backed it.
func contextSummary(messages, tasks, days int) string {
	return fmt.Sprintf("%d message(s) and %d open task(s) in the last %d day(s)", messages, tasks, days)
}
