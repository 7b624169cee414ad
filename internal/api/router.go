// Package api exposes the HTTP surface: the job trigger endpoints invoked
// by the platform cron, and the CRUD endpoints the dashboard talks to.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/zapflow/zapflow/internal/config"
	"github.com/zapflow/zapflow/internal/dispatch"
	"github.com/zapflow/zapflow/internal/health"
	"github.com/zapflow/zapflow/internal/suggest"
	"gorm.io/gorm"
)

// NewRouter builds the Gin engine with all routes attached.
func NewRouter(cfg *config.Config, db *gorm.DB, job *suggest.Job, dispatcher *dispatch.Dispatcher) *gin.Engine {
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", gin.WrapF(health.Handler))

	// Trigger surface: invoked by the platform cron and by operators.
	jobs := r.Group("/jobs", RequireJobSecret(cfg.JobSecret))
	{
		jobs.POST("/suggestions/run", RunSuggestionsHandler(job))
		jobs.POST("/dispatch/run", RunDispatchHandler(dispatcher))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/clients", ListClientsHandler(db))
		api.POST("/clients/:id/override", SetOverrideHandler(db))

		api.GET("/automations", ListAutomationsHandler(db))
		api.POST("/automations", CreateAutomationHandler(db))
		api.PUT("/automations/:id", UpdateAutomationHandler(db))

		api.GET("/reports", ListReportsHandler(db))
		api.POST("/reports", CreateReportHandler(db))
		api.PUT("/reports/:id", UpdateReportHandler(db))

		api.GET("/dispatches", ListDispatchesHandler(db))
		api.POST("/dispatches", CreateDispatchHandler(db))
		api.POST("/dispatches/:id/cancel", CancelDispatchHandler(db))

		api.GET("/templates", ListTemplatesHandler(db))
		api.POST("/templates", CreateTemplateHandler(db))

		api.GET("/suggestions", ListSuggestionsHandler(db))
		api.POST("/suggestions/:id/approve", ApproveSuggestionHandler(db))
		api.POST("/suggestions/:id/reject", RejectSuggestionHandler(db))
	}

	return r
}
