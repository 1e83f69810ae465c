package billing

import (
	"testing"
	"time"

	"github.com/vendra/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSchedule(t *testing.T, amounts []float64, firstDue time.Time) []Installment {
	t.Helper()
	saleID := uuid.New()
	installments := make([]Installment, 0, len(amounts))
	for idx, amount := range amounts {
		due := firstDue.AddDate(0, idx, 0)
		inst, err := NewInstallment(saleID, idx+1, due, valueobject.NewMoneyFromFloat(amount))
		require.NoError(t, err)
		installments = append(installments, *inst)
	}
	return installments
}

func TestValidateSequentialPayment(t *testing.T) {
	firstDue := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	t.Run("blocks skip-ahead while earlier installments are unpaid", func(t *testing.T) {
		installments := buildSchedule(t, []float64{500, 500}, firstDue)

		assert.False(t, ValidateSequentialPayment(installments, 2))

		require.NoError(t, installments[0].MarkAsPaid(firstDue))
		assert.True(t, ValidateSequentialPayment(installments, 2))
	})

	t.Run("first installment is always payable", func(t *testing.T) {
		installments := buildSchedule(t, []float64{500, 500, 500}, firstDue)
		assert.True(t, ValidateSequentialPayment(installments, 1))
	})

	t.Run("partial payment on an earlier installment still blocks", func(t *testing.T) {
		installments := buildSchedule(t, []float64{500, 500}, firstDue)
		require.NoError(t, installments[0].RecordPayment(valueobject.NewMoneyFromFloat(250), firstDue))
		assert.False(t, ValidateSequentialPayment(installments, 2))
	})

	t.Run("cancelled installments are skipped", func(t *testing.T) {
		installments := buildSchedule(t, []float64{500, 500, 500}, firstDue)
		require.NoError(t, installments[0].MarkAsPaid(firstDue))
		require.NoError(t, installments[1].Cancel(firstDue))
		assert.True(t, ValidateSequentialPayment(installments, 3))
	})
}

func TestScheduleNextPendingMonthly(t *testing.T) {
	t.Run("nil when nothing is paid", func(t *testing.T) {
		installments := buildSchedule(t, []float64{100, 100}, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
		assert.Nil(t, ScheduleNextPendingMonthly(installments))
	})

	t.Run("nil when everything is paid", func(t *testing.T) {
		installments := buildSchedule(t, []float64{100, 100}, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
		now := time.Now()
		require.NoError(t, installments[0].MarkAsPaid(now))
		require.NoError(t, installments[1].MarkAsPaid(now))
		assert.Nil(t, ScheduleNextPendingMonthly(installments))
	})

	t.Run("one month after the most recent payment", func(t *testing.T) {
		installments := buildSchedule(t, []float64{100, 100, 100}, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
		paidAt := time.Date(2026, 2, 5, 14, 30, 0, 0, time.UTC)
		require.NoError(t, installments[0].MarkAsPaid(paidAt))

		next := ScheduleNextPendingMonthly(installments)
		require.NotNil(t, next)
		assert.Equal(t, installments[1].ID, next.InstallmentID)
		assert.Equal(t, 2, next.InstallmentNumber)
		// Anchored on the pending installment's original day of month (10)
		assert.Equal(t, time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC), next.DueDate)
	})

	t.Run("targets the lowest-numbered unpaid installment", func(t *testing.T) {
		installments := buildSchedule(t, []float64{100, 100, 100}, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))
		paidAt := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
		require.NoError(t, installments[0].MarkAsPaid(paidAt.AddDate(0, 0, -1)))
		require.NoError(t, installments[2].MarkAsPaid(paidAt))

		next := ScheduleNextPendingMonthly(installments)
		require.NotNil(t, next)
		assert.Equal(t, 2, next.InstallmentNumber)
	})
}

func TestAddMonthsAnchored(t *testing.T) {
	tests := []struct {
		name      string
		base      time.Time
		months    int
		anchorDay int
		want      time.Time
	}{
		{
			name:      "plain month advance",
			base:      time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			months:    1,
			anchorDay: 15,
			want:      time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "anchor 31 clamps to 30-day month",
			base:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			months:    1,
			anchorDay: 31,
			want:      time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "anchor 31 clamps to february",
			base:      time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
			months:    1,
			anchorDay: 31,
			want:      time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "anchor restores after a short month",
			base:      time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
			months:    1,
			anchorDay: 31,
			want:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "year rollover",
			base:      time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
			months:    1,
			anchorDay: 20,
			want:      time.Date(2027, 1, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "leap february keeps day 29",
			base:      time.Date(2028, 1, 29, 0, 0, 0, 0, time.UTC),
			months:    1,
			anchorDay: 29,
			want:      time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := addMonthsAnchored(tt.base, tt.months, tt.anchorDay)
			assert.Equal(t, tt.want, got)
		})
	}
}
