package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zapflow/zapflow/internal/models"
	"github.com/zapflow/zapflow/internal/schedule"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// automationRequest is the write payload for check-in automations.
type automationRequest struct {
	ClientID    uint   `json:"client_id" binding:"required"`
	Weekdays    []int  `json:"weekdays" binding:"required"`
	TimeOfDay   string `json:"time_of_day" binding:"required"`
	ContextDays int    `json:"context_days"`
	ApproverID  *uint  `json:"approver_id"`
	Guidance    string `json:"guidance"`
	Active      *bool  `json:"active"`
}

func (r *automationRequest) validate() string {
	if len(r.Weekdays) == 0 {
		return "weekdays must not be empty"
	}
	for _, d := range r.Weekdays {
		if d < 0 || d > 6 {
			return "weekdays must be between 0 and 6"
		}
	}
	if _, _, err := schedule.ParseTimeOfDay(r.TimeOfDay); err != nil {
		return err.Error()
	}
	if r.ContextDays < 0 || r.ContextDays > 90 {
		return "context_days must be between 0 and 90"
	}
	return ""
}

// ListAutomationsHandler returns the organization's automations.
func ListAutomationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}

		var automations []models.ActiveAutomation
		if err := db.Where("organization_id = ?", org).Order("id").Find(&automations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list automations"})
			return
		}

		c.JSON(http.StatusOK, automations)
	}
}

// CreateAutomationHandler creates a check-in automation for a client.
func CreateAutomationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}

		var req automationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if msg := req.validate(); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		var client models.Client
		if err := db.Where("id = ? AND organization_id = ?", req.ClientID, org).First(&client).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}

		weekdaysJSON, _ := json.Marshal(req.Weekdays)
		contextDays := req.ContextDays
		if contextDays == 0 {
			contextDays = 7
		}
		active := true
		if req.Active != nil {
			active = *req.Active
		}

		automation := models.ActiveAutomation{
			OrganizationID: org,
			ClientID:       req.ClientID,
			Weekdays:       datatypes.JSON(weekdaysJSON),
			TimeOfDay:      req.TimeOfDay,
			ContextDays:    contextDays,
			ApproverID:     req.ApproverID,
			Guidance:       req.Guidance,
			Active:         active,
		}
		if err := db.Create(&automation).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create automation"})
			return
		}

		c.JSON(http.StatusCreated, automation)
	}
}

// UpdateAutomationHandler updates a check-in automation.
func UpdateAutomationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}

		var automation models.ActiveAutomation
		if err := db.Where("id = ? AND organization_id = ?", id, org).First(&automation).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "automation not found"})
			return
		}

		var req automationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if msg := req.validate(); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		weekdaysJSON, _ := json.Marshal(req.Weekdays)
		updates := map[string]interface{}{
			"weekdays":    datatypes.JSON(weekdaysJSON),
			"time_of_day": req.TimeOfDay,
			"guidance":    req.Guidance,
			"approver_id": req.ApproverID,
		}
		if req.ContextDays > 0 {
			updates["context_days"] = req.ContextDays
		}
		if req.Active != nil {
			updates["active"] = *req.Active
		}

		if err := db.Model(&automation).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update automation"})
			return
		}

		c.JSON(http.StatusOK, automation)
	}
}
