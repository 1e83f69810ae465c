package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vendra/backend/internal/domain/catalog"
	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.Repository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	var model models.ProductModel
	model.FromDomain(product)
	return r.db.WithContext(ctx).Save(&model).Error
}

// AdjustStock applies a stock delta atomically and returns the updated product
func (r *GormProductRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*catalog.Product, error) {
	var model models.ProductModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// UpdateColumn leaves updated_at untouched: sale decrements must
		// not look like restocks to the low-stock re-arm check, which
		// compares the product's updated_at against the last alert.
		result := tx.Model(&models.ProductModel{}).
			Where("id = ?", id).
			UpdateColumn("stock", gorm.Expr("stock + ?", delta))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.First(&model, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}
