package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vendra/backend/internal/domain/billing"
	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInstallmentRepository implements billing.InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID finds an installment by its ID
func (r *GormInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySale returns all installments of a sale ordered by number
func (r *GormInstallmentRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]billing.Installment, error) {
	var instModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("installment_number ASC").
		Find(&instModels).Error; err != nil {
		return nil, err
	}
	installments := make([]billing.Installment, len(instModels))
	for i, model := range instModels {
		installments[i] = *model.ToDomain()
	}
	return installments, nil
}

// Create persists a new installment
func (r *GormInstallmentRepository) Create(ctx context.Context, installment *billing.Installment) error {
	var model models.InstallmentModel
	model.FromDomain(installment)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates an installment with optimistic locking
func (r *GormInstallmentRepository) Save(ctx context.Context, installment *billing.Installment) error {
	var model models.InstallmentModel
	model.FromDomain(installment)
	return saveInstallmentLocked(r.db.WithContext(ctx), &model)
}

// SaveWithTransaction persists an installment update and a payment
// transaction write in one store transaction
func (r *GormInstallmentRepository) SaveWithTransaction(ctx context.Context, installment *billing.Installment, txn *billing.PaymentTransaction) error {
	var instModel models.InstallmentModel
	instModel.FromDomain(installment)
	var txnModel models.PaymentTransactionModel
	txnModel.FromDomain(txn)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveInstallmentLocked(tx, &instModel); err != nil {
			return err
		}
		// Version 1 means the transaction is new; anything higher is an
		// existing record being updated (a reversal marking it cancelled).
		if txnModel.Version <= 1 {
			return tx.Create(&txnModel).Error
		}
		result := tx.Model(&models.PaymentTransactionModel{}).
			Where("id = ? AND version = ?", txnModel.ID, txnModel.Version-1).
			Select("*").Omit("id", "created_at").Updates(&txnModel)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// saveInstallmentLocked writes all columns guarded by the version check
func saveInstallmentLocked(tx *gorm.DB, model *models.InstallmentModel) error {
	result := tx.Model(&models.InstallmentModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Select("*").Omit("id", "created_at").Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// FindUnsettledDueBefore returns unsettled installments due before the cutoff
func (r *GormInstallmentRepository) FindUnsettledDueBefore(ctx context.Context, cutoff time.Time) ([]billing.InstallmentDue, error) {
	return r.findUnsettled(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("installments.due_date < ?", cutoff)
	})
}

// FindUnsettledDueBetween returns unsettled installments due in [from, to)
func (r *GormInstallmentRepository) FindUnsettledDueBetween(ctx context.Context, from, to time.Time) ([]billing.InstallmentDue, error) {
	return r.findUnsettled(ctx, func(q *gorm.DB) *gorm.DB {
		return q.Where("installments.due_date >= ? AND installments.due_date < ?", from, to)
	})
}

type installmentDueRow struct {
	models.InstallmentModel
	CustomerName string
}

// findUnsettled joins unsettled installments with the sale's customer name.
// A LEFT JOIN keeps rows whose sale is missing; the scanner decides how to
// treat the empty name.
func (r *GormInstallmentRepository) findUnsettled(ctx context.Context, dateScope func(*gorm.DB) *gorm.DB) ([]billing.InstallmentDue, error) {
	var rows []installmentDueRow
	query := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Select("installments.*, sales.customer_name AS customer_name").
		Joins("LEFT JOIN sales ON sales.id = installments.sale_id").
		Where("installments.status IN ?", []string{
			string(billing.InstallmentStatusPending),
			string(billing.InstallmentStatusPartial),
		}).
		Order("installments.due_date ASC")
	query = dateScope(query)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	dues := make([]billing.InstallmentDue, len(rows))
	for i, row := range rows {
		dues[i] = billing.InstallmentDue{
			Installment:  *row.InstallmentModel.ToDomain(),
			CustomerName: row.CustomerName,
		}
	}
	return dues, nil
}
