package persistence

import (
	"fmt"

	"github.com/vendra/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for all persistence models and the
// indexes GORM tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.CustomerModel{},
		&models.ProductModel{},
		&models.SaleModel{},
		&models.InstallmentModel{},
		&models.PaymentTransactionModel{},
		&models.NotificationModel{},
	); err != nil {
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	// The dedup invariant lives here: at most one active notification per
	// semantic key. Application-level existence checks race between the
	// scheduler tick and user deletes; this index is the arbiter. Both
	// sqlite and postgres support partial indexes with this syntax.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_active_key
		 ON notifications (message_key)
		 WHERE deleted_at IS NULL AND message_key <> ''`,
	).Error; err != nil {
		return fmt.Errorf("creating active-key index failed: %w", err)
	}

	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_installments_sale_number
		 ON installments (sale_id, installment_number)`,
	).Error; err != nil {
		return fmt.Errorf("creating installment-number index failed: %w", err)
	}

	return nil
}
