package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zapflow/zapflow/internal/dispatch"
	"github.com/zapflow/zapflow/internal/suggest"
	"github.com/zapflow/zapflow/internal/worker"
)

// RunSuggestionsHandler runs the suggestion generation batch synchronously
// and returns the per-automation log lines. Per-automation failures are
// reported inside the 200 body; only a top-level failure (the automation
// list itself unavailable) surfaces as a 500. With ?async=true the batch is
// enqueued on the worker instead and the response returns immediately.
func RunSuggestionsHandler(job *suggest.Job) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("async") == "true" {
			if err := worker.EnqueueSuggestionBatch(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"success": true, "enqueued": true})
			return
		}

		result, err := job.Run(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"generated": result.Generated,
			"skipped":   result.Skipped,
			"failed":    result.Failed,
			"logs":      result.Logs,
		})
	}
}

// RunDispatchHandler runs the outbound send pipeline synchronously, or
// enqueues it on the worker with ?async=true.
func RunDispatchHandler(dispatcher *dispatch.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("async") == "true" {
			if err := worker.EnqueueDispatchRun(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"success": true, "enqueued": true})
			return
		}

		result, err := dispatcher.Run(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"sent":    result.Sent,
			"skipped": result.Skipped,
			"failed":  result.Failed,
			"logs":    result.Logs,
		})
	}
}
