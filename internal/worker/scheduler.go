package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/zapflow/zapflow/internal/config"
)

// StartScheduler creates and starts an Asynq Scheduler for the periodic
// batch jobs. Returns a stop function for graceful shutdown.
//
// This is the "external time trigger" of the automation core: each tick
// enqueues one batch task; the automations' own weekday/time-of-day
// eligibility is evaluated inside the job, per organization timezone.
func StartScheduler(cfg *config.Config) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	location, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		slog.Warn("Invalid scheduler timezone, using UTC", "timezone", cfg.SchedulerTimezone, "error", err)
		location = time.UTC
	}

	logger := NewLogger(cfg.LogLevel, cfg.LogFormat)

	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: location,
			LogLevel: asynq.InfoLevel,
			Logger:   &asynqLoggerAdapter{logger: logger},
		},
	)

	suggestionTask := asynq.NewTask(
		TaskSuggestionBatch,
		nil,
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(5*time.Minute), // prevent duplicate if scheduler runs twice
	)
	suggestionEntry, err := scheduler.Register(cfg.SuggestionCron, suggestionTask)
	if err != nil {
		return nil, fmt.Errorf("failed to register suggestion schedule: %w", err)
	}

	dispatchTask := asynq.NewTask(
		TaskDispatchRun,
		nil,
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(time.Minute),
	)
	dispatchEntry, err := scheduler.Register(cfg.DispatchCron, dispatchTask)
	if err != nil {
		return nil, fmt.Errorf("failed to register dispatch schedule: %w", err)
	}

	if err := scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	slog.Info(
		"Scheduler started",
		"suggestion_cron", cfg.SuggestionCron,
		"dispatch_cron", cfg.DispatchCron,
		"timezone", cfg.SchedulerTimezone,
		"suggestion_entry", suggestionEntry,
		"dispatch_entry", dispatchEntry,
	)

	return func() { scheduler.Shutdown() }, nil
}
