package database

import (
	"log"
	"time"

	"github.com/zapflow/zapflow/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedDevData populates the database with development test data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB) error {
	var existingOrg models.Organization
	result := db.Where("slug = ?", "dev-agency").First(&existingOrg)
	if result.Error == nil {
		log.Println("Seed data already exists, skipping")
		return nil
	}

	org := models.Organization{
		Name:     "Dev Agency",
		Slug:     "dev-agency",
		Timezone: "America/Sao_Paulo",
		Locale:   "pt-BR",
		Currency: "BRL",
	}
	if err := db.Create(&org).Error; err != nil {
		return err
	}

	instance := models.WhatsAppInstance{
		OrganizationID: org.ID,
		InstanceID:     "dev-instance-01",
		PhoneNumber:    "+5511999990000",
		APIToken:       "dev-relay-token-placeholder",
		Active:         true,
	}
	if err := db.Create(&instance).Error; err != nil {
		return err
	}

	client := models.Client{
		OrganizationID: org.ID,
		Name:           "Padaria do Bairro",
		Phone:          "+5511988887777",
		Active:         true,
	}
	if err := db.Create(&client).Error; err != nil {
		return err
	}

	clientID := client.ID
	msg := models.Message{
		OrganizationID: org.ID,
		ClientID:       &clientID,
		Direction:      models.DirectionInbound,
		Body:           "Oi! Podemos revisar a campanha de agosto esta semana?",
	}
	if err := db.Create(&msg).Error; err != nil {
		return err
	}

	task := models.Task{
		OrganizationID: org.ID,
		ClientID:       client.ID,
		Title:          "Preparar relatório de campanha de agosto",
		Status:         models.TaskStatusOpen,
	}
	if err := db.Create(&task).Error; err != nil {
		return err
	}

	metrics := models.ClientMetrics{
		OrganizationID: org.ID,
		ClientID:       client.ID,
		PeriodStart:    time.Now().AddDate(0, 0, -30),
		Leads:          142,
		CPL:            12.5,
		AdSpend:        1775.0,
		Conversions:    38,
		ROAS:           3.4,
	}
	if err := db.Create(&metrics).Error; err != nil {
		return err
	}

	weekday := 1 // Monday
	report := models.ScheduledReport{
		OrganizationID: org.ID,
		ClientID:       client.ID,
		Cadence:        models.CadenceWeekly,
		Weekday:        &weekday,
		TimeOfDay:      "09:00",
		Template:       "Resumo semanal: {{leads}} leads a {{cpl}} por lead. Investimento: {{spend}} (ROAS {{roas}}).",
		Active:         true,
	}
	if err := db.Create(&report).Error; err != nil {
		return err
	}

	automation := models.ActiveAutomation{
		OrganizationID: org.ID,
		ClientID:       client.ID,
		Weekdays:       datatypes.JSON([]byte(`[1,3,5]`)),
		TimeOfDay:      "09:00",
		ContextDays:    7,
		Guidance:       "Tom informal, mencione resultados recentes quando houver.",
		Active:         true,
	}
	if err := db.Create(&automation).Error; err != nil {
		return err
	}

	log.Println("Seeded dev data: 1 org, 1 instance, 1 client, 1 report, 1 automation")
	return nil
}
