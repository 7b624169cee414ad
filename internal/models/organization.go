package models

import (
	"github.com/zapflow/zapflow/internal/crypto"
	"gorm.io/gorm"
)

var encryptor *crypto.TokenEncryptor

// InitEncryption initializes the token encryptor for the models package.
// Must be called before any database operations involving WhatsAppInstance.
func InitEncryption(encryptionKey string) error {
	var err error
	encryptor, err = crypto.NewTokenEncryptor(encryptionKey)
	return err
}

// Organization is the tenant boundary. Every domain row belongs to exactly one.
type Organization struct {
	gorm.Model
	Name     string `gorm:"not null"`
	Slug     string `gorm:"uniqueIndex:idx_organizations_slug_not_deleted,where:deleted_at IS NULL;not null"`
	Timezone string `gorm:"not null;default:'America/Sao_Paulo'"` // IANA name
	Locale   string `gorm:"not null;default:'pt-BR'"`             // BCP-47 tag
	Currency string `gorm:"not null;default:'BRL'"`               // ISO-4217 code
}

// WhatsAppInstance is a provider connection owned by an organization.
// The API token is stored encrypted at rest.
type WhatsAppInstance struct {
	gorm.Model
	OrganizationID uint         `gorm:"not null;index"`
	Organization   Organization `gorm:"constraint:OnDelete:CASCADE;"`
	InstanceID     string       `gorm:"not null;uniqueIndex:idx_wa_instances_instance_not_deleted,where:deleted_at IS NULL"`
	PhoneNumber    string       `gorm:"not null"`
	APIToken       string       `gorm:"type:text"` // stored encrypted
	Active         bool         `gorm:"not null;default:true"`
}

// BeforeSave encrypts the API token before saving to database.
// Always encrypts non-empty tokens (GCM produces different output each time due to random nonce).
func (i *WhatsAppInstance) BeforeSave(tx *gorm.DB) error {
	if encryptor == nil {
		// Allow operations without encryption (e.g., for testing or if encryption not initialized)
		return nil
	}

	if i.APIToken != "" {
		encrypted, err := encryptor.Encrypt(i.APIToken)
		if err != nil {
			return err
		}
		i.APIToken = encrypted
	}

	return nil
}

// AfterFind decrypts the API token after loading from database
func (i *WhatsAppInstance) AfterFind(tx *gorm.DB) error {
	if encryptor == nil {
		return nil
	}

	if i.APIToken != "" {
		decrypted, err := encryptor.Decrypt(i.APIToken)
		if err != nil {
			return err
		}
		i.APIToken = decrypted
	}

	return nil
}
