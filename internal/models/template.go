package models

import "gorm.io/gorm"

// Template is a reusable named content block with {{placeholder}} tokens,
// consumed by the report and dispatch composers. Rows with a nil
// OrganizationID and Default=true are shared defaults shipped via template
// packs and synced at startup.
type Template struct {
	gorm.Model
	OrganizationID *uint  `gorm:"index"`
	Name           string `gorm:"not null"` // unique per (org, name, category), enforced by migration index
	Category       string `gorm:"not null;default:'general'"`
	Content        string `gorm:"type:text;not null"`
	Default        bool   `gorm:"not null;default:false"`
	PackName       string `gorm:"column:pack_name"` // set when synced from a template pack
	PackVersion    string `gorm:"column:pack_version"`
}
