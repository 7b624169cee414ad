package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/zapflow/zapflow/internal/config"
	"github.com/zapflow/zapflow/internal/dispatch"
	"github.com/zapflow/zapflow/internal/suggest"
)

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger interface
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

// Implement asynq.Logger interface methods
func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Start starts the Asynq worker in non-blocking mode and returns a stop
// function so the caller can coordinate shutdown.
func Start(cfg *config.Config, job *suggest.Job, dispatcher *dispatch.Dispatcher) (stop func(), err error) {
	srv, mux, err := newServer(cfg, job, dispatcher)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return func() { srv.Shutdown() }, nil
}

func newServer(cfg *config.Config, job *suggest.Job, dispatcher *dispatch.Dispatcher) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger := NewLogger(cfg.LogLevel, cfg.LogFormat)

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			// The batches loop sequentially anyway; concurrency only covers
			// a dispatch run overlapping a suggestion batch.
			Concurrency:     2,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSuggestionBatch, handleSuggestionBatch(logger, job))
	mux.HandleFunc(TaskDispatchRun, handleDispatchRun(logger, dispatcher))

	logger.Info("Worker starting", "concurrency", 2, "redis", cfg.RedisURL)
	return srv, mux, nil
}

// handleSuggestionBatch runs the suggestion generation job. Per-automation
// failures are already isolated inside the job; only a failure to even list
// the automations is retryable here.
func handleSuggestionBatch(logger *slog.Logger, job *suggest.Job) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		result, err := job.Run(ctx)
		if err != nil {
			return fmt.Errorf("suggestion batch failed: %w", err)
		}

		logger.Info(
			"Processed suggestion:run_batch task",
			"generated", result.Generated,
			"skipped", result.Skipped,
			"failed", result.Failed,
		)
		return nil
	}
}

// handleDispatchRun runs the outbound send pipeline.
func handleDispatchRun(logger *slog.Logger, dispatcher *dispatch.Dispatcher) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		result, err := dispatcher.Run(ctx)
		if err != nil {
			return fmt.Errorf("dispatch run failed: %w", err)
		}

		logger.Info(
			"Processed dispatch:run task",
			"sent", result.Sent,
			"skipped", result.Skipped,
			"failed", result.Failed,
		)
		return nil
	}
}

// makeErrorHandler creates an error handler function with logger closure.
func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Error(
			"Task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)

		// Check if this is the final failure (task will move to dead letter queue)
		if retried >= maxRetry {
			logger.Error(
				"Task moved to dead letter queue (all retries exhausted)",
				"task_type", task.Type(),
			)
		}
	}
}
