package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zapflow/zapflow/internal/models"
	"gorm.io/gorm"
)

// orgID reads the tenant id injected by the platform gateway. Row-level
// isolation lives in the data store; this scoping only keeps queries cheap
// and responses tidy.
func orgID(c *gin.Context) (uint, bool) {
	raw := c.GetHeader("X-Organization-ID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid X-Organization-ID header"})
		return 0, false
	}
	return uint(id), true
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// ListClientsHandler returns the organization's clients.
func ListClientsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}

		var clients []models.Client
		if err := db.Where("organization_id = ?", org).Order("name").Find(&clients).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list clients"})
			return
		}

		c.JSON(http.StatusOK, clients)
	}
}

// SetOverrideHandler flips the manual-override flag on a client's
// conversation. While set, every automated send for the client no-ops and
// reports skipped.
func SetOverrideHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}

		var req struct {
			ManualOverride bool `json:"manual_override"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		res := db.Model(&models.Client{}).
			Where("id = ? AND organization_id = ?", id, org).
			Update("manual_override", req.ManualOverride)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update client"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"manual_override": req.ManualOverride})
	}
}
