package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zapflow/zapflow/internal/models"
	"gorm.io/gorm"
)

type dispatchRequest struct {
	ClientID uint      `json:"client_id" binding:"required"`
	Body     string    `json:"body" binding:"required"`
	Category string    `json:"category"`
	SendAt   time.Time `json:"send_at" binding:"required"`
}

// ListDispatchesHandler returns the organization's scheduled messages,
// newest first. Optional ?status= filters by lifecycle state.
func ListDispatchesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}

		query := db.Where("organization_id = ?", org)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var dispatches []models.ScheduledMessage
		if err := query.Order("send_at DESC").Find(&dispatches).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list dispatches"})
			return
		}

		c.JSON(http.StatusOK, dispatches)
	}
}

// CreateDispatchHandler schedules a one-off message for a future timestamp.
func CreateDispatchHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}

		var req dispatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if !req.SendAt.After(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "send_at must be in the future"})
			return
		}

		var client models.Client
		if err := db.Where("id = ? AND organization_id = ?", req.ClientID, org).First(&client).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}

		category := req.Category
		if category == "" {
			category = "general"
		}

		dispatch := models.ScheduledMessage{
			OrganizationID: org,
			ClientID:       req.ClientID,
			Body:           req.Body,
			Category:       category,
			SendAt:         req.SendAt.UTC(),
			Status:         models.DispatchStatusPending,
		}
		if err := db.Create(&dispatch).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create dispatch"})
			return
		}

		c.JSON(http.StatusCreated, dispatch)
	}
}

// CancelDispatchHandler cancels a pending dispatch. Sent, failed and already
// cancelled messages are immutable.
func CancelDispatchHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}

		var dispatch models.ScheduledMessage
		if err := db.Where("id = ? AND organization_id = ?", id, org).First(&dispatch).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "dispatch not found"})
			return
		}
		if dispatch.Status != models.DispatchStatusPending {
			c.JSON(http.StatusConflict, gin.H{"error": "only pending dispatches can be cancelled"})
			return
		}

		if err := db.Model(&dispatch).Update("status", models.DispatchStatusCancelled).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel dispatch"})
			return
		}

		c.JSON(http.StatusOK, dispatch)
	}
}
