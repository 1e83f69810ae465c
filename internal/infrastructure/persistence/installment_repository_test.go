package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendra/backend/internal/domain/billing"
	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// seedInstallmentSale persists a three-installment sale and returns it with
// its schedule
func seedInstallmentSale(t *testing.T, db *gorm.DB, firstDue time.Time) (*billing.Sale, []*billing.Installment) {
	t.Helper()
	ctx := context.Background()

	total, err := valueobject.NewMoneyFromString("900.00")
	require.NoError(t, err)
	sale, err := billing.NewSale(uuid.New(), "Maria Lopez", total, billing.PaymentTypeInstallments, 3, 0, nil)
	require.NoError(t, err)

	installments, err := sale.BuildInstallmentSchedule(firstDue)
	require.NoError(t, err)

	require.NoError(t, NewGormSaleRepository(db).CreateWithInstallments(ctx, sale, installments))
	return sale, installments
}

func TestGormInstallmentRepository_FindBySale(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	sale, _ := seedInstallmentSale(t, db, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))

	repo := NewGormInstallmentRepository(db)
	installments, err := repo.FindBySale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, installments, 3)

	for i, inst := range installments {
		assert.Equal(t, i+1, inst.InstallmentNumber)
		assert.Equal(t, billing.InstallmentStatusPending, inst.Status)
		assert.True(t, inst.Balance.Equal(inst.Amount))
	}
}

func TestGormInstallmentRepository_SaveWithTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	sale, installments := seedInstallmentSale(t, db, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	repo := NewGormInstallmentRepository(db)
	txnRepo := NewGormPaymentTransactionRepository(db)

	t.Run("persists installment and payment atomically", func(t *testing.T) {
		inst := installments[0]
		amount, err := valueobject.NewMoneyFromString("100.00")
		require.NoError(t, err)
		now := time.Now()

		require.NoError(t, inst.RecordPayment(amount, now))
		txn, err := billing.NewCompletedTransaction(sale.ID, inst.ID, amount, billing.PaymentMethodCash, "", now)
		require.NoError(t, err)

		require.NoError(t, repo.SaveWithTransaction(ctx, inst, txn))

		stored, err := repo.FindByID(ctx, inst.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InstallmentStatusPartial, stored.Status)
		assert.True(t, stored.PaidAmount.Equal(amount.Amount()))

		txns, err := txnRepo.FindByInstallment(ctx, inst.ID)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, billing.TransactionStatusCompleted, txns[0].Status)
	})

	t.Run("clears the paid date on a reverting update", func(t *testing.T) {
		inst, err := repo.FindByID(ctx, installments[1].ID)
		require.NoError(t, err)
		now := time.Now()

		require.NoError(t, inst.MarkAsPaid(now))
		require.NoError(t, repo.Save(ctx, inst))

		stored, err := repo.FindByID(ctx, inst.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.PaidDate)

		require.NoError(t, stored.RevertPayment(stored.PaidAmount, now))
		require.NoError(t, repo.Save(ctx, stored))

		reverted, err := repo.FindByID(ctx, inst.ID)
		require.NoError(t, err)
		assert.Nil(t, reverted.PaidDate)
		assert.Equal(t, billing.InstallmentStatusPending, reverted.Status)
	})

	t.Run("rejects a stale version", func(t *testing.T) {
		inst, err := repo.FindByID(ctx, installments[2].ID)
		require.NoError(t, err)
		stale, err := repo.FindByID(ctx, installments[2].ID)
		require.NoError(t, err)

		require.NoError(t, inst.MarkAsPaid(time.Now()))
		require.NoError(t, repo.Save(ctx, inst))

		require.NoError(t, stale.Cancel(time.Now()))
		assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)
	})
}

func TestGormInstallmentRepository_UnsettledScans(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewGormInstallmentRepository(db)

	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	_, overdueSchedule := seedInstallmentSale(t, db, now.AddDate(0, 0, -10))
	seedInstallmentSale(t, db, now.AddDate(0, 0, 2))

	t.Run("due-before returns only past-due unsettled installments with names", func(t *testing.T) {
		dues, err := repo.FindUnsettledDueBefore(ctx, now)
		require.NoError(t, err)
		require.Len(t, dues, 1)
		assert.Equal(t, overdueSchedule[0].ID, dues[0].Installment.ID)
		assert.Equal(t, "Maria Lopez", dues[0].CustomerName)
	})

	t.Run("due-between returns the upcoming window", func(t *testing.T) {
		dues, err := repo.FindUnsettledDueBetween(ctx, now, now.AddDate(0, 0, 3))
		require.NoError(t, err)
		require.Len(t, dues, 1)
		assert.True(t, dues[0].Installment.DueDate.After(now))
	})

	t.Run("settled installments drop out of scans", func(t *testing.T) {
		inst, err := repo.FindByID(ctx, overdueSchedule[0].ID)
		require.NoError(t, err)
		require.NoError(t, inst.MarkAsPaid(now))
		require.NoError(t, repo.Save(ctx, inst))

		dues, err := repo.FindUnsettledDueBefore(ctx, now)
		require.NoError(t, err)
		assert.Empty(t, dues)
	})
}
