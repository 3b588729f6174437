// Command migrate applies the database schema for the BrandDesk service.
package main

import (
	"fmt"
	"log"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sponsorly/branddesk/config"
	"github.com/sponsorly/branddesk/models"
)

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto;")

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20260801_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.User{},
					&models.Brand{},
					&models.Deal{},
					&models.ExclusivityRule{},
					&models.Deliverable{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					"exclusivity_rules", "deliverables", "deals", "brands", "users",
				)
			},
		},
		{
			ID: "20260805_create_conflict_tables",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.Conflict{}); err != nil {
					return err
				}
				// Partial index used by the active-conflict listing and summary counts
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_conflicts_active
					ON conflicts (deal_id) WHERE resolved_at IS NULL;`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("conflicts")
			},
		},
		{
			ID: "20260810_create_idempotency_keys",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.IdempotencyKey{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("idempotency_keys")
			},
		},
		{
			ID: "20260812_create_audit_logs",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.AuditLog{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("audit_log")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}
