package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zapflow/zapflow/internal/models"
	"gorm.io/gorm"
)

type approveSuggestionRequest struct {
	Message    string `json:"message"` // optional edited text; defaults to the stored suggestion
	ApprovedBy *uint  `json:"approved_by"`
}

// ListSuggestionsHandler returns the organization's suggestions, newest
// first. Optional ?status= filters by lifecycle state.
func ListSuggestionsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}

		query := db.Where("organization_id = ?", org)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var suggestions []models.ActiveSuggestion
		if err := query.Order("suggestion_date DESC, id DESC").Find(&suggestions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list suggestions"})
			return
		}

		c.JSON(http.StatusOK, suggestions)
	}
}

// ApproveSuggestionHandler moves a pending suggestion to approved, optionally
// replacing the message text with an edited version. Approved suggestions are
// picked up by the next dispatch run.
func ApproveSuggestionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}

		// Body is optional: an empty approve keeps the stored message.
		var req approveSuggestionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}

		var suggestion models.ActiveSuggestion
		if err := db.Where("id = ? AND organization_id = ?", id, org).First(&suggestion).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "suggestion not found"})
			return
		}
		if suggestion.Status != models.SuggestionStatusPending {
			c.JSON(http.StatusConflict, gin.H{"error": "only pending suggestions can be approved"})
			return
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":      models.SuggestionStatusApproved,
			"approved_by": req.ApprovedBy,
			"approved_at": now,
		}
		if req.Message != "" {
			updates["suggested_message"] = req.Message
		}
		if err := db.Model(&suggestion).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve suggestion"})
			return
		}

		c.JSON(http.StatusOK, suggestion)
	}
}

// RejectSuggestionHandler moves a pending suggestion to rejected. Rejected
// suggestions are never dispatched; the automation may generate a fresh one
// on its next eligible day.
func RejectSuggestionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}

		var suggestion models.ActiveSuggestion
		if err := db.Where("id = ? AND organization_id = ?", id, org).First(&suggestion).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "suggestion not found"})
			return
		}
		if suggestion.Status != models.SuggestionStatusPending {
			c.JSON(http.StatusConflict, gin.H{"error": "only pending suggestions can be rejected"})
			return
		}

		if err := db.Model(&suggestion).Update("status", models.SuggestionStatusRejected).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reject suggestion"})
			return
		}

		c.JSON(http.StatusOK, suggestion)
	}
}
