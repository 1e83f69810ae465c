package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vendra/backend/internal/domain/billing"
	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentTransactionRepository implements billing.PaymentTransactionRepository using GORM
type GormPaymentTransactionRepository struct {
	db *gorm.DB
}

// NewGormPaymentTransactionRepository creates a new GormPaymentTransactionRepository
func NewGormPaymentTransactionRepository(db *gorm.DB) *GormPaymentTransactionRepository {
	return &GormPaymentTransactionRepository{db: db}
}

// FindByID finds a payment transaction by its ID
func (r *GormPaymentTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentTransaction, error) {
	var model models.PaymentTransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInstallment returns the transactions applied to an installment, newest first
func (r *GormPaymentTransactionRepository) FindByInstallment(ctx context.Context, installmentID uuid.UUID) ([]billing.PaymentTransaction, error) {
	var txnModels []models.PaymentTransactionModel
	if err := r.db.WithContext(ctx).
		Where("installment_id = ?", installmentID).
		Order("transaction_date DESC").
		Find(&txnModels).Error; err != nil {
		return nil, err
	}
	txns := make([]billing.PaymentTransaction, len(txnModels))
	for i, model := range txnModels {
		txns[i] = *model.ToDomain()
	}
	return txns, nil
}

// Save creates or updates a payment transaction
func (r *GormPaymentTransactionRepository) Save(ctx context.Context, txn *billing.PaymentTransaction) error {
	var model models.PaymentTransactionModel
	model.FromDomain(txn)
	if model.Version <= 1 {
		return r.db.WithContext(ctx).Create(&model).Error
	}
	result := r.db.WithContext(ctx).Model(&models.PaymentTransactionModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Select("*").Omit("id", "created_at").Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
