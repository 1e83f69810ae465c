package billing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainbilling "github.com/vendra/backend/internal/domain/billing"
	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/domain/shared/valueobject"
	"github.com/vendra/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// capturingBus records published events
type capturingBus struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (b *capturingBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
	return nil
}

func (b *capturingBus) typesSeen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, len(b.events))
	for i, e := range b.events {
		types[i] = e.EventType()
	}
	return types
}

type ledgerFixture struct {
	service *InstallmentLedgerService
	bus     *capturingBus
	db      *gorm.DB
	txns    domainbilling.PaymentTransactionRepository
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, persistence.Migrate(db))

	bus := &capturingBus{}
	txns := persistence.NewGormPaymentTransactionRepository(db)
	service := NewInstallmentLedgerService(
		persistence.NewGormSaleRepository(db),
		persistence.NewGormInstallmentRepository(db),
		txns,
		persistence.NewGormProductRepository(db),
		bus,
		zap.NewNop(),
	)
	return &ledgerFixture{service: service, bus: bus, db: db, txns: txns}
}

func mustMoney(t *testing.T, s string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(s)
	require.NoError(t, err)
	return m
}

// recordSale persists an installment sale and returns it with its schedule
func (f *ledgerFixture) recordSale(t *testing.T, total string, n, advance int, firstDue time.Time) (*domainbilling.Sale, []domainbilling.Installment) {
	t.Helper()
	ctx := context.Background()

	sale, err := f.service.RecordSale(ctx, RecordSaleInput{
		CustomerID:           uuid.New(),
		CustomerName:         "Carlos Mendez",
		TotalAmount:          mustMoney(t, total),
		PaymentType:          domainbilling.PaymentTypeInstallments,
		NumberOfInstallments: n,
		AdvanceInstallments:  advance,
		FirstDueDate:         firstDue,
	})
	require.NoError(t, err)

	_, installments, err := f.service.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, installments, n)
	return sale, installments
}

// assertTransactionSum checks that completed transactions sum to the
// installment's paid amount
func (f *ledgerFixture) assertTransactionSum(t *testing.T, installmentID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	inst, err := f.service.GetInstallment(ctx, installmentID)
	require.NoError(t, err)

	txns, err := f.txns.FindByInstallment(ctx, installmentID)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, txn := range txns {
		if txn.Status == domainbilling.TransactionStatusCompleted {
			sum = sum.Add(txn.Amount)
		}
	}
	assert.True(t, sum.Equal(inst.PaidAmount),
		"completed transactions sum %s, paid amount %s", sum, inst.PaidAmount)
}

func TestInstallmentLedgerService_RecordSale(t *testing.T) {
	ctx := context.Background()
	firstDue := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	t.Run("distributes rounding so installments sum to the total", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, installments := f.recordSale(t, "1000.00", 3, 0, firstDue)

		sum := decimal.Zero
		for _, inst := range installments {
			sum = sum.Add(inst.Amount)
		}
		assert.True(t, sum.Equal(decimal.RequireFromString("1000.00")))
		assert.True(t, installments[2].Amount.Equal(decimal.RequireFromString("333.34")))
	})

	t.Run("marks advance installments paid without transactions", func(t *testing.T) {
		f := newLedgerFixture(t)
		sale, installments := f.recordSale(t, "600.00", 3, 1, firstDue)

		assert.Equal(t, domainbilling.InstallmentStatusPaid, installments[0].Status)
		assert.Equal(t, domainbilling.InstallmentStatusPending, installments[1].Status)

		txns, err := f.txns.FindByInstallment(context.Background(), installments[0].ID)
		require.NoError(t, err)
		assert.Empty(t, txns)

		stored, _, err := f.service.GetSale(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, domainbilling.SalePaymentStatusPartial, stored.PaymentStatus)
	})

	t.Run("cash sale is paid immediately with no schedule", func(t *testing.T) {
		f := newLedgerFixture(t)
		sale, err := f.service.RecordSale(ctx, RecordSaleInput{
			CustomerID:   uuid.New(),
			CustomerName: "Carlos Mendez",
			TotalAmount:  mustMoney(t, "250.00"),
			PaymentType:  domainbilling.PaymentTypeCash,
		})
		require.NoError(t, err)
		assert.Equal(t, domainbilling.SalePaymentStatusPaid, sale.PaymentStatus)

		_, installments, err := f.service.GetSale(ctx, sale.ID)
		require.NoError(t, err)
		assert.Empty(t, installments)
	})

	t.Run("publishes the sale recorded event", func(t *testing.T) {
		f := newLedgerFixture(t)
		f.recordSale(t, "300.00", 2, 0, firstDue)
		assert.Contains(t, f.bus.typesSeen(), "SaleRecorded")
	})
}

func TestInstallmentLedgerService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	firstDue := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	t.Run("partial then settling payment", func(t *testing.T) {
		f := newLedgerFixture(t)
		sale, installments := f.recordSale(t, "1200.00", 2, 0, firstDue)
		target := installments[0].ID

		inst, err := f.service.RecordPayment(ctx, target, mustMoney(t, "400.00"), domainbilling.PaymentMethodCash, "")
		require.NoError(t, err)
		assert.Equal(t, domainbilling.InstallmentStatusPartial, inst.Status)
		assert.True(t, inst.Balance.Equal(decimal.RequireFromString("200.00")))
		f.assertTransactionSum(t, target)

		inst, err = f.service.RecordPayment(ctx, target, mustMoney(t, "200.00"), domainbilling.PaymentMethodTransfer, "wire-77")
		require.NoError(t, err)
		assert.Equal(t, domainbilling.InstallmentStatusPaid, inst.Status)
		require.NotNil(t, inst.PaidDate)
		f.assertTransactionSum(t, target)

		stored, _, err := f.service.GetSale(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, domainbilling.SalePaymentStatusPartial, stored.PaymentStatus)
	})

	t.Run("rejects paying ahead of an earlier unpaid installment", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, installments := f.recordSale(t, "1200.00", 2, 0, firstDue)

		_, err := f.service.RecordPayment(ctx, installments[1].ID, mustMoney(t, "100.00"), domainbilling.PaymentMethodCash, "")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OUT_OF_SEQUENCE", domainErr.Code)
	})

	t.Run("rejects overpayment", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, installments := f.recordSale(t, "1200.00", 2, 0, firstDue)

		_, err := f.service.RecordPayment(ctx, installments[0].ID, mustMoney(t, "600.01"), domainbilling.PaymentMethodCash, "")
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})

	t.Run("settling every installment rolls the sale up to paid", func(t *testing.T) {
		f := newLedgerFixture(t)
		sale, installments := f.recordSale(t, "400.00", 2, 0, firstDue)

		for _, inst := range installments {
			_, err := f.service.MarkAsPaid(ctx, inst.ID, domainbilling.PaymentMethodCash, "")
			require.NoError(t, err)
		}

		stored, _, err := f.service.GetSale(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, domainbilling.SalePaymentStatusPaid, stored.PaymentStatus)
	})
}

func TestInstallmentLedgerService_RevertPayment(t *testing.T) {
	ctx := context.Background()
	firstDue := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	t.Run("round-trips a payment", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, installments := f.recordSale(t, "600.00", 1, 0, firstDue)
		target := installments[0].ID

		paid, err := f.service.MarkAsPaid(ctx, target, domainbilling.PaymentMethodCard, "auth-1")
		require.NoError(t, err)
		require.Equal(t, domainbilling.InstallmentStatusPaid, paid.Status)

		txns, err := f.txns.FindByInstallment(ctx, target)
		require.NoError(t, err)
		require.Len(t, txns, 1)

		reverted, err := f.service.RevertPayment(ctx, target, txns[0].ID)
		require.NoError(t, err)
		assert.Equal(t, domainbilling.InstallmentStatusPending, reverted.Status)
		assert.Nil(t, reverted.PaidDate)
		assert.True(t, reverted.PaidAmount.IsZero())
		f.assertTransactionSum(t, target)

		stored, err := f.txns.FindByID(ctx, txns[0].ID)
		require.NoError(t, err)
		assert.Equal(t, domainbilling.TransactionStatusCancelled, stored.Status)
	})

	t.Run("rejects a transaction belonging to another installment", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, installments := f.recordSale(t, "600.00", 2, 0, firstDue)

		_, err := f.service.MarkAsPaid(ctx, installments[0].ID, domainbilling.PaymentMethodCash, "")
		require.NoError(t, err)
		txns, err := f.txns.FindByInstallment(ctx, installments[0].ID)
		require.NoError(t, err)
		require.Len(t, txns, 1)

		_, err = f.service.RevertPayment(ctx, installments[1].ID, txns[0].ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TRANSACTION_MISMATCH", domainErr.Code)
	})

	t.Run("rejects reverting an already cancelled transaction", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, installments := f.recordSale(t, "600.00", 1, 0, firstDue)
		target := installments[0].ID

		_, err := f.service.MarkAsPaid(ctx, target, domainbilling.PaymentMethodCash, "")
		require.NoError(t, err)
		txns, err := f.txns.FindByInstallment(ctx, target)
		require.NoError(t, err)

		_, err = f.service.RevertPayment(ctx, target, txns[0].ID)
		require.NoError(t, err)
		_, err = f.service.RevertPayment(ctx, target, txns[0].ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestInstallmentLedgerService_ApplyLateFee(t *testing.T) {
	ctx := context.Background()
	firstDue := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	t.Run("a fee on a paid installment reopens it", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, installments := f.recordSale(t, "1000.00", 1, 0, firstDue)
		target := installments[0].ID

		_, err := f.service.MarkAsPaid(ctx, target, domainbilling.PaymentMethodCash, "")
		require.NoError(t, err)

		inst, err := f.service.ApplyLateFee(ctx, target, mustMoney(t, "50.00"))
		require.NoError(t, err)
		assert.Equal(t, domainbilling.InstallmentStatusPartial, inst.Status)
		assert.True(t, inst.Balance.Equal(decimal.RequireFromString("50.00")))
		assert.Nil(t, inst.PaidDate)
		f.assertTransactionSum(t, target)
	})
}

func TestInstallmentLedgerService_RescheduleNextDueDate(t *testing.T) {
	ctx := context.Background()

	t.Run("rolls the next unpaid due date a month past the payment", func(t *testing.T) {
		f := newLedgerFixture(t)
		paidAt := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		f.service.WithNow(func() time.Time { return paidAt })

		sale, installments := f.recordSale(t, "900.00", 3, 0, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC))

		_, err := f.service.MarkAsPaid(ctx, installments[0].ID, domainbilling.PaymentMethodCash, "")
		require.NoError(t, err)

		next, err := f.service.RescheduleNextDueDate(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, next.InstallmentNumber)
		assert.Equal(t, time.April, next.DueDate.Month())

		inst, err := f.service.GetInstallment(ctx, next.InstallmentID)
		require.NoError(t, err)
		assert.True(t, inst.DueDate.Equal(next.DueDate))
	})

	t.Run("nothing to reschedule without a paid installment", func(t *testing.T) {
		f := newLedgerFixture(t)
		sale, _ := f.recordSale(t, "900.00", 3, 0, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC))

		_, err := f.service.RescheduleNextDueDate(ctx, sale.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOTHING_TO_RESCHEDULE", domainErr.Code)
	})
}

func TestInstallmentLedgerService_DeleteSale(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	sale, installments := f.recordSale(t, "600.00", 2, 0, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC))

	_, err := f.service.MarkAsPaid(ctx, installments[0].ID, domainbilling.PaymentMethodCash, "")
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteSale(ctx, sale.ID))

	_, _, err = f.service.GetSale(ctx, sale.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	txns, err := f.txns.FindByInstallment(ctx, installments[0].ID)
	require.NoError(t, err)
	assert.Empty(t, txns)
}
