package billing

import (
	"testing"
	"time"

	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers

func createTestInstallment(t *testing.T, amount float64) *Installment {
	t.Helper()
	dueDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	inst, err := NewInstallment(uuid.New(), 1, dueDate, valueobject.NewMoneyFromFloat(amount))
	require.NoError(t, err)
	return inst
}

func assertBalanceInvariant(t *testing.T, inst *Installment) {
	t.Helper()
	assert.True(t, inst.Balance.Equal(inst.Amount.Sub(inst.PaidAmount)),
		"balance %s != amount %s - paid %s", inst.Balance, inst.Amount, inst.PaidAmount)
}

func TestNewInstallment(t *testing.T) {
	t.Run("creates pending installment", func(t *testing.T) {
		inst := createTestInstallment(t, 1000)
		assert.Equal(t, InstallmentStatusPending, inst.Status)
		assert.True(t, inst.PaidAmount.IsZero())
		assert.True(t, inst.Balance.Equal(decimal.NewFromInt(1000)))
		assert.Nil(t, inst.PaidDate)
		assert.False(t, inst.LateFeeApplied)
		assertBalanceInvariant(t, inst)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewInstallment(uuid.New(), 1, time.Now(), valueobject.Zero())
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})

	t.Run("rejects installment number below 1", func(t *testing.T) {
		_, err := NewInstallment(uuid.New(), 0, time.Now(), valueobject.NewMoneyFromFloat(100))
		assert.Error(t, err)
	})

	t.Run("rejects empty sale id", func(t *testing.T) {
		_, err := NewInstallment(uuid.Nil, 1, time.Now(), valueobject.NewMoneyFromFloat(100))
		assert.Error(t, err)
	})
}

func TestInstallment_RecordPayment(t *testing.T) {
	now := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)

	t.Run("partial then full payment", func(t *testing.T) {
		inst := createTestInstallment(t, 1000)

		require.NoError(t, inst.RecordPayment(valueobject.NewMoneyFromFloat(600), now))
		assert.True(t, inst.PaidAmount.Equal(decimal.NewFromInt(600)))
		assert.True(t, inst.Balance.Equal(decimal.NewFromInt(400)))
		assert.Equal(t, InstallmentStatusPartial, inst.Status)
		assert.Nil(t, inst.PaidDate)
		assertBalanceInvariant(t, inst)

		require.NoError(t, inst.RecordPayment(valueobject.NewMoneyFromFloat(400), now))
		assert.True(t, inst.PaidAmount.Equal(decimal.NewFromInt(1000)))
		assert.True(t, inst.Balance.IsZero())
		assert.Equal(t, InstallmentStatusPaid, inst.Status)
		require.NotNil(t, inst.PaidDate)
		assert.Equal(t, now, *inst.PaidDate)
		assertBalanceInvariant(t, inst)
	})

	t.Run("exact balance transitions to paid, one cent less stays partial", func(t *testing.T) {
		exact := createTestInstallment(t, 250)
		require.NoError(t, exact.RecordPayment(valueobject.NewMoneyFromFloat(250), now))
		assert.Equal(t, InstallmentStatusPaid, exact.Status)
		assert.NotNil(t, exact.PaidDate)

		short := createTestInstallment(t, 250)
		require.NoError(t, short.RecordPayment(valueobject.NewMoneyFromFloat(249.99), now))
		assert.Equal(t, InstallmentStatusPartial, short.Status)
		assert.Nil(t, short.PaidDate)
		assert.True(t, short.Balance.Equal(decimal.NewFromFloat(0.01)))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		inst := createTestInstallment(t, 1000)
		err := inst.RecordPayment(valueobject.Zero(), now)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)

		err = inst.RecordPayment(valueobject.NewMoneyFromFloat(-50), now)
		assert.Error(t, err)
	})

	t.Run("rejects payment exceeding balance", func(t *testing.T) {
		inst := createTestInstallment(t, 100)
		err := inst.RecordPayment(valueobject.NewMoneyFromFloat(100.01), now)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})

	t.Run("rejects payment on paid installment", func(t *testing.T) {
		inst := createTestInstallment(t, 100)
		require.NoError(t, inst.RecordPayment(valueobject.NewMoneyFromFloat(100), now))
		err := inst.RecordPayment(valueobject.NewMoneyFromFloat(10), now)
		assert.Error(t, err)
	})

	t.Run("rejects payment on cancelled installment", func(t *testing.T) {
		inst := createTestInstallment(t, 100)
		require.NoError(t, inst.Cancel(now))
		err := inst.RecordPayment(valueobject.NewMoneyFromFloat(10), now)
		assert.Error(t, err)
	})

	t.Run("repeated cent payments keep exact arithmetic", func(t *testing.T) {
		inst := createTestInstallment(t, 0.30)
		for range 30 {
			require.NoError(t, inst.RecordPayment(valueobject.NewMoneyFromFloat(0.01), now))
		}
		assert.Equal(t, InstallmentStatusPaid, inst.Status)
		assert.True(t, inst.Balance.IsZero())
	})
}

func TestInstallment_MarkAsPaid(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	inst := createTestInstallment(t, 750)
	require.NoError(t, inst.MarkAsPaid(now))
	assert.Equal(t, InstallmentStatusPaid, inst.Status)
	assert.True(t, inst.PaidAmount.Equal(inst.Amount))
	assert.True(t, inst.Balance.IsZero())
	require.NotNil(t, inst.PaidDate)
	assert.Equal(t, now, *inst.PaidDate)
	assertBalanceInvariant(t, inst)

	t.Run("rejects cancelled installment", func(t *testing.T) {
		cancelled := createTestInstallment(t, 100)
		require.NoError(t, cancelled.Cancel(now))
		assert.Error(t, cancelled.MarkAsPaid(now))
	})
}

func TestInstallment_RevertPayment(t *testing.T) {
	now := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)

	t.Run("round trip restores pre-payment state", func(t *testing.T) {
		inst := createTestInstallment(t, 1000)
		beforePaid := inst.PaidAmount
		beforeBalance := inst.Balance
		beforeStatus := inst.Status

		require.NoError(t, inst.RecordPayment(valueobject.NewMoneyFromFloat(600), now))
		require.NoError(t, inst.RevertPayment(decimal.NewFromInt(600), now))

		assert.True(t, inst.PaidAmount.Equal(beforePaid))
		assert.True(t, inst.Balance.Equal(beforeBalance))
		assert.Equal(t, beforeStatus, inst.Status)
		assert.Nil(t, inst.PaidDate)
		assertBalanceInvariant(t, inst)
	})

	t.Run("partial revert of a paid installment", func(t *testing.T) {
		inst := createTestInstallment(t, 1000)
		require.NoError(t, inst.RecordPayment(valueobject.NewMoneyFromFloat(400), now))
		require.NoError(t, inst.RecordPayment(valueobject.NewMoneyFromFloat(600), now))
		require.Equal(t, InstallmentStatusPaid, inst.Status)

		require.NoError(t, inst.RevertPayment(decimal.NewFromInt(600), now))
		assert.Equal(t, InstallmentStatusPartial, inst.Status)
		assert.True(t, inst.Balance.Equal(decimal.NewFromInt(600)))
		assert.Nil(t, inst.PaidDate)
		assertBalanceInvariant(t, inst)
	})

	t.Run("revert below zero is an inconsistency, not a clamp", func(t *testing.T) {
		inst := createTestInstallment(t, 1000)
		require.NoError(t, inst.RecordPayment(valueobject.NewMoneyFromFloat(100), now))

		err := inst.RevertPayment(decimal.NewFromInt(200), now)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "LEDGER_INCONSISTENCY", domainErr.Code)
		// State untouched on failure
		assert.True(t, inst.PaidAmount.Equal(decimal.NewFromInt(100)))
		assertBalanceInvariant(t, inst)
	})
}

func TestInstallment_ApplyLateFee(t *testing.T) {
	now := time.Date(2026, 3, 25, 12, 0, 0, 0, time.UTC)

	t.Run("widens the balance on an unpaid installment", func(t *testing.T) {
		inst := createTestInstallment(t, 1000)
		require.NoError(t, inst.ApplyLateFee(valueobject.NewMoneyFromFloat(50), now))
		assert.True(t, inst.Amount.Equal(decimal.NewFromInt(1050)))
		assert.True(t, inst.Balance.Equal(decimal.NewFromInt(1050)))
		assert.True(t, inst.LateFee.Equal(decimal.NewFromInt(50)))
		assert.True(t, inst.LateFeeApplied)
		assert.Equal(t, InstallmentStatusPending, inst.Status)
		assertBalanceInvariant(t, inst)
	})

	t.Run("reopens a previously paid installment", func(t *testing.T) {
		inst := createTestInstallment(t, 1000)
		require.NoError(t, inst.RecordPayment(valueobject.NewMoneyFromFloat(1000), now))
		require.Equal(t, InstallmentStatusPaid, inst.Status)

		require.NoError(t, inst.ApplyLateFee(valueobject.NewMoneyFromFloat(50), now))
		assert.True(t, inst.Amount.Equal(decimal.NewFromInt(1050)))
		assert.True(t, inst.Balance.Equal(decimal.NewFromInt(50)))
		assert.True(t, inst.LateFeeApplied)
		assert.Equal(t, InstallmentStatusPartial, inst.Status)
		assert.Nil(t, inst.PaidDate)
		assertBalanceInvariant(t, inst)
	})

	t.Run("accumulates across applications", func(t *testing.T) {
		inst := createTestInstallment(t, 1000)
		require.NoError(t, inst.ApplyLateFee(valueobject.NewMoneyFromFloat(25), now))
		require.NoError(t, inst.ApplyLateFee(valueobject.NewMoneyFromFloat(25), now))
		assert.True(t, inst.LateFee.Equal(decimal.NewFromInt(50)))
		assert.True(t, inst.Amount.Equal(decimal.NewFromInt(1050)))
	})

	t.Run("rejects non-positive fee", func(t *testing.T) {
		inst := createTestInstallment(t, 1000)
		assert.Error(t, inst.ApplyLateFee(valueobject.Zero(), now))
	})

	t.Run("rejects cancelled installment", func(t *testing.T) {
		inst := createTestInstallment(t, 1000)
		require.NoError(t, inst.Cancel(now))
		assert.Error(t, inst.ApplyLateFee(valueobject.NewMoneyFromFloat(50), now))
	})
}

func TestInstallment_Overdue(t *testing.T) {
	dueDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		now         time.Time
		setup       func(*Installment)
		wantOverdue bool
		wantDays    int
	}{
		{
			name:        "before due date",
			now:         dueDate.AddDate(0, 0, -1),
			wantOverdue: false,
			wantDays:    0,
		},
		{
			name:        "five days past due",
			now:         dueDate.AddDate(0, 0, 5),
			wantOverdue: true,
			wantDays:    5,
		},
		{
			name: "paid installment is never overdue",
			now:  dueDate.AddDate(0, 0, 5),
			setup: func(i *Installment) {
				_ = i.MarkAsPaid(dueDate)
			},
			wantOverdue: false,
			wantDays:    0,
		},
		{
			name: "cancelled installment is never overdue",
			now:  dueDate.AddDate(0, 0, 5),
			setup: func(i *Installment) {
				_ = i.Cancel(dueDate)
			},
			wantOverdue: false,
			wantDays:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := NewInstallment(uuid.New(), 1, dueDate, valueobject.NewMoneyFromFloat(500))
			require.NoError(t, err)
			if tt.setup != nil {
				tt.setup(inst)
			}
			assert.Equal(t, tt.wantOverdue, inst.IsOverdue(tt.now))
			assert.Equal(t, tt.wantDays, inst.DaysOverdue(tt.now))
		})
	}
}

func TestInstallmentStatus(t *testing.T) {
	tests := []struct {
		status   InstallmentStatus
		valid    bool
		settled  bool
		canApply bool
	}{
		{InstallmentStatusPending, true, false, true},
		{InstallmentStatusPartial, true, false, true},
		{InstallmentStatusPaid, true, true, false},
		{InstallmentStatusOverdue, true, false, true},
		{InstallmentStatusCancelled, true, true, false},
		{InstallmentStatus("BOGUS"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.IsValid())
			assert.Equal(t, tt.settled, tt.status.IsSettled())
			assert.Equal(t, tt.canApply, tt.status.CanApplyPayment())
		})
	}
}
