package database

import (
	"renthub/internal/models"
	"renthub/pkg/logger"
)

// Migrate runs schema migration for all models.
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.Agreement{},
		&models.AgreementDocument{},
		&models.PropertyRequest{},
		&models.PaymentRecord{},
		&models.MaintenanceRequest{},
		&models.Notification{},
	)
	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	// One open request per (tenant, property): the service checks before
	// inserting, but only this index makes the check race-free.
	err = DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_open_request_per_tenant_property
		ON property_requests (tenant_id, property_id)
		WHERE status IN ('Pending', 'Approved', 'Agreement_Sent')
	`).Error
	if err != nil {
		appLogger.Errorf("Failed to create open-request unique index: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")
	return nil
}
