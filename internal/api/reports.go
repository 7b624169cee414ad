package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zapflow/zapflow/internal/dispatch"
	"github.com/zapflow/zapflow/internal/models"
	"github.com/zapflow/zapflow/internal/schedule"
	"gorm.io/gorm"
)

// reportRequest is the write payload for scheduled reports.
type reportRequest struct {
	ClientID   uint   `json:"client_id" binding:"required"`
	Cadence    string `json:"cadence" binding:"required"`
	Weekday    *int   `json:"weekday"`
	DayOfMonth *int   `json:"day_of_month"`
	TimeOfDay  string `json:"time_of_day" binding:"required"`
	Template   string `json:"template" binding:"required"`
	Active     *bool  `json:"active"`
}

func (r *reportRequest) toModel(org uint) models.ScheduledReport {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	report := models.ScheduledReport{
		OrganizationID: org,
		ClientID:       r.ClientID,
		Cadence:        r.Cadence,
		TimeOfDay:      r.TimeOfDay,
		Template:       r.Template,
		Active:         active,
	}
	// Only the field matching the cadence is stored; the schema enforces
	// the same rule with a check constraint.
	switch r.Cadence {
	case models.CadenceWeekly:
		report.Weekday = r.Weekday
	case models.CadenceMonthly:
		report.DayOfMonth = r.DayOfMonth
	}
	return report
}

// ListReportsHandler returns the organization's scheduled reports.
func ListReportsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}

		var reports []models.ScheduledReport
		if err := db.Where("organization_id = ?", org).Order("id").Find(&reports).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
			return
		}

		c.JSON(http.StatusOK, reports)
	}
}

// CreateReportHandler creates a scheduled report. The cadence is validated
// and next_run computed before anything is written; a ValidationError is a
// 400, never a stored row.
func CreateReportHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}

		var req reportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		var client models.Client
		if err := db.Preload("Organization").Where("id = ? AND organization_id = ?", req.ClientID, org).First(&client).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}

		report := req.toModel(org)
		next, err := dispatch.NextRunFor(&report, time.Now(), client.Organization.Timezone)
		if err != nil {
			var verr *schedule.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute schedule"})
			return
		}
		report.NextRun = &next

		if err := db.Create(&report).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
			return
		}

		c.JSON(http.StatusCreated, report)
	}
}

// UpdateReportHandler updates a scheduled report. Cadence edits recompute
// next_run (spec: recomputed every time cadence fields change).
func UpdateReportHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}

		var report models.ScheduledReport
		if err := db.Preload("Organization").Where("id = ? AND organization_id = ?", id, org).First(&report).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}

		var req reportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updated := req.toModel(org)
		updated.Model = report.Model
		next, err := dispatch.NextRunFor(&updated, time.Now(), report.Organization.Timezone)
		if err != nil {
			var verr *schedule.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute schedule"})
			return
		}

		updates := map[string]interface{}{
			"cadence":      updated.Cadence,
			"weekday":      updated.Weekday,
			"day_of_month": updated.DayOfMonth,
			"time_of_day":  updated.TimeOfDay,
			"template":     updated.Template,
			"active":       updated.Active,
			"next_run":     next,
		}
		if err := db.Model(&report).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update report"})
			return
		}

		c.JSON(http.StatusOK, report)
	}
}
