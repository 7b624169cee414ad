package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zapflow/zapflow/internal/models"
	"gorm.io/gorm"
)

// isUniqueViolation matches Postgres unique-index errors (SQLSTATE 23505)
// without binding to a driver error type.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

type templateRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Content  string `json:"content" binding:"required"`
}

// ListTemplatesHandler returns the organization's templates plus the shared
// defaults, org-owned rows first so they shadow defaults of the same name.
func ListTemplatesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}

		query := db.Where("organization_id = ? OR (organization_id IS NULL AND \"default\" = true)", org)
		if category := c.Query("category"); category != "" {
			query = query.Where("category = ?", category)
		}

		var templates []models.Template
		if err := query.Order("organization_id NULLS LAST, name").Find(&templates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list templates"})
			return
		}

		c.JSON(http.StatusOK, templates)
	}
}

// CreateTemplateHandler creates an org-owned template. Name collisions within
// (org, name, category) surface as a conflict.
func CreateTemplateHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		org, ok := orgID(c)
		if !ok {
			return
		}

		var req templateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		category := req.Category
		if category == "" {
			category = "general"
		}

		template := models.Template{
			OrganizationID: &org,
			Name:           req.Name,
			Category:       category,
			Content:        req.Content,
		}
		if err := db.Create(&template).Error; err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "a template with this name already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create template"})
			return
		}

		c.JSON(http.StatusCreated, template)
	}
}
