package templatepack

import (
	"log"

	"github.com/zapflow/zapflow/internal/models"
	"gorm.io/gorm"
)

// InitPacks discovers template packs from the specified directory, syncs
// their templates to the database as shared defaults, and returns the
// populated registry.
//
// Called at application startup. Non-fatal: logs warnings but does not fail
// if individual packs have issues.
func InitPacks(db *gorm.DB, packDir string) (*Registry, error) {
	registry, err := LoadRegistry(packDir)
	if err != nil {
		return nil, err
	}

	log.Printf("Discovered %d template pack(s) from %s", registry.Count(), packDir)

	for _, meta := range registry.List() {
		if err := syncPackToDB(db, meta); err != nil {
			log.Printf("Warning: failed to sync pack %s to database: %v", meta.Name, err)
			continue
		}
		log.Printf("Synced template pack to database: %s (version %s)", meta.Name, meta.Version)
	}

	return registry, nil
}

// syncPackToDB persists or updates a pack's templates in the database.
// Uses an upsert pattern keyed by (name, category): creates if new, updates
// content/version if already present. Org-owned copies are never touched.
func syncPackToDB(db *gorm.DB, meta *PackMetadata) error {
	for _, entry := range meta.Templates {
		category := entry.Category
		if category == "" {
			category = "general"
		}

		var existing models.Template
		result := db.Where("organization_id IS NULL AND name = ? AND category = ?", entry.Name, category).
			First(&existing)

		if result.Error == gorm.ErrRecordNotFound {
			tpl := models.Template{
				Name:        entry.Name,
				Category:    category,
				Content:     entry.Content,
				Default:     true,
				PackName:    meta.Name,
				PackVersion: meta.Version,
			}
			if err := db.Create(&tpl).Error; err != nil {
				return err
			}
			continue
		}
		if result.Error != nil {
			return result.Error
		}

		if err := db.Model(&existing).Updates(map[string]interface{}{
			"content":      entry.Content,
			"pack_name":    meta.Name,
			"pack_version": meta.Version,
			"default":      true,
		}).Error; err != nil {
			return err
		}
	}

	return nil
}
