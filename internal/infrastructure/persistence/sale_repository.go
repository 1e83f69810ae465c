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

// GormSaleRepository implements billing.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by its ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CreateWithInstallments persists the sale and its schedule atomically
func (r *GormSaleRepository) CreateWithInstallments(ctx context.Context, sale *billing.Sale, installments []*billing.Installment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var saleModel models.SaleModel
		saleModel.FromDomain(sale)
		if err := tx.Create(&saleModel).Error; err != nil {
			return err
		}
		for _, inst := range installments {
			var instModel models.InstallmentModel
			instModel.FromDomain(inst)
			if err := tx.Create(&instModel).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Save updates a sale with optimistic locking
func (r *GormSaleRepository) Save(ctx context.Context, sale *billing.Sale) error {
	var model models.SaleModel
	model.FromDomain(sale)

	// Select("*") forces zero-valued columns through; Updates alone
	// would silently skip them.
	result := r.db.WithContext(ctx).Model(&models.SaleModel{}).
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

// Delete removes the sale, its installments and its payment transactions
func (r *GormSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.SaleModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := tx.Where("sale_id = ?", id).Delete(&models.InstallmentModel{}).Error; err != nil {
			return err
		}
		return tx.Where("sale_id = ?", id).Delete(&models.PaymentTransactionModel{}).Error
	})
}
