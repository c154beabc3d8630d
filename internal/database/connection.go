// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/config"
	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established (%s)", cfg.RedactedDSN())
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
			return fmt.Errorf("failed to create UUID extension: %w", err)
		}
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Person{},
		&models.Form{},
		&models.FormApprover{},
		&models.ApprovalRecord{},
		&models.SalesRFQ{},
		&models.PurchaseOrder{},
		&models.PurchaseInvoice{},
		&models.SalesQuotation{},
		&models.SalesInvoice{},
		&models.SalesOrder{},
		&models.AuditLog{},
		&models.StatusNotification{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// One live vote per (form, document, approver). This is the
		// constraint that closes the concurrent duplicate-vote race; the
		// engine's in-transaction existence check alone is not enough.
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_approval_records_live_vote ON approval_records(form_id, document_id, approver_id) WHERE deleted_at IS NULL",

		// One live assignment per (form, person)
		"CREATE UNIQUE INDEX IF NOT EXISTS uq_form_approvers_assignment ON form_approvers(form_id, person_id) WHERE deleted_at IS NULL",

		// Ledger lookups
		"CREATE INDEX IF NOT EXISTS idx_approval_records_document ON approval_records(form_id, document_id)",

		// Person indexes
		"CREATE INDEX IF NOT EXISTS idx_persons_role_status ON persons(role, status)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_person_action ON audit_logs(person_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",

		// Notification indexes
		"CREATE INDEX IF NOT EXISTS idx_status_notifications_document ON status_notifications(form_name, document_id)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// The unique vote index is load-bearing; everything else is a
			// performance concern and may fail on exotic dialects.
			if index == indexes[0] {
				return err
			}
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	// Create default admin person
	var adminCount int64
	db.Model(&models.Person{}).Where("role = ?", models.PersonRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.Person{
			Username:  "admin",
			Email:     "admin@fleetmonkeys.com",
			FirstName: "System",
			LastName:  "Administrator",
			Role:      models.PersonRoleAdmin,
			Status:    models.PersonStatusActive,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin person: %w", err)
		}

		log.Println("Default admin person created successfully")
	}

	// Register the six approvable forms
	formDescriptions := map[string]string{
		models.FormSalesRFQ:        "Sales request for quotation",
		models.FormPurchaseOrder:   "Purchase order",
		models.FormPurchaseInvoice: "Purchase invoice",
		models.FormSalesQuotation:  "Sales quotation",
		models.FormSalesInvoice:    "Sales invoice",
		models.FormSalesOrder:      "Sales order",
	}

	for _, name := range models.AllFormNames() {
		var count int64
		db.Model(&models.Form{}).Where("form_name = ?", name).Count(&count)

		if count == 0 {
			form := &models.Form{
				FormName:    name,
				Description: formDescriptions[name],
				Enabled:     true,
			}
			if err := db.Create(form).Error; err != nil {
				return fmt.Errorf("failed to create form %s: %w", name, err)
			}
		}
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
