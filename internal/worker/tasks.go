package worker

import (
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskSuggestionBatch = "suggestion:run_batch"
	TaskDispatchRun     = "dispatch:run"
)

// Package-level Asynq client (singleton)
var client *asynq.Client

// InitClient initializes the global Asynq client for task enqueueing.
// Must be called before any EnqueueX functions.
func InitClient(redisURL string) error {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return err
	}

	client = asynq.NewClient(opt)
	return nil
}

// CloseClient closes the Asynq client connection gracefully.
func CloseClient() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// EnqueueSuggestionBatch enqueues a suggestion generation batch. Unique
// prevents a manual trigger from stacking on top of the scheduled run.
func EnqueueSuggestionBatch() error {
	task := asynq.NewTask(
		TaskSuggestionBatch,
		nil, // empty payload - the handler processes all automations
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(5*time.Minute),
	)

	_, err := client.Enqueue(task)
	return err
}

// EnqueueDispatchRun enqueues a dispatch run over everything currently due.
func EnqueueDispatchRun() error {
	task := asynq.NewTask(
		TaskDispatchRun,
		nil,
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(time.Minute),
	)

	_, err := client.Enqueue(task)
	return err
}
