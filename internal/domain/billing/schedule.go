package billing

import (
	"time"

	"github.com/google/uuid"
)

// ValidateSequentialPayment reports whether the installment with the given
// number may be paid under the sequential payment policy: every
// lower-numbered, non-cancelled installment in the sale must already be
// paid. Pure function - callers apply the policy at the call site that has
// the full sale context; the mutating ledger operations do not enforce it.
func ValidateSequentialPayment(installments []Installment, targetNumber int) bool {
	for _, inst := range installments {
		if inst.InstallmentNumber >= targetNumber {
			continue
		}
		if inst.Status == InstallmentStatusCancelled {
			continue
		}
		if !inst.IsPaid() {
			return false
		}
	}
	return true
}

// NextDueDate is the result of a reschedule calculation
type NextDueDate struct {
	InstallmentID     uuid.UUID
	InstallmentNumber int
	DueDate           time.Time
}

// ScheduleNextPendingMonthly computes a rolled-forward due date for the
// next unpaid installment: one calendar month after the most recent paid
// date, preserving the installment's original anchor day of month (clamped
// to shorter months, so anchor day 31 becomes day 30 in a 30-day month).
// Returns nil when there is no paid installment or no pending one. This is
// a calculation only - persisting the new date is the caller's step.
func ScheduleNextPendingMonthly(installments []Installment) *NextDueDate {
	var lastPaid *time.Time
	for _, inst := range installments {
		if inst.IsPaid() && inst.PaidDate != nil {
			if lastPaid == nil || inst.PaidDate.After(*lastPaid) {
				paidAt := *inst.PaidDate
				lastPaid = &paidAt
			}
		}
	}
	if lastPaid == nil {
		return nil
	}

	var next *Installment
	for idx := range installments {
		inst := &installments[idx]
		if inst.IsPaid() || inst.Status == InstallmentStatusCancelled {
			continue
		}
		if next == nil || inst.InstallmentNumber < next.InstallmentNumber {
			next = inst
		}
	}
	if next == nil {
		return nil
	}

	anchorDay := next.DueDate.Day()
	return &NextDueDate{
		InstallmentID:     next.ID,
		InstallmentNumber: next.InstallmentNumber,
		DueDate:           addMonthsAnchored(*lastPaid, 1, anchorDay),
	}
}

// addMonthsAnchored adds whole calendar months to base, landing on
// anchorDay clamped to the target month's length. time.AddDate is not used
// because it normalizes overflow (Jan 31 + 1 month = Mar 3) instead of
// clamping.
func addMonthsAnchored(base time.Time, months int, anchorDay int) time.Time {
	year, month, _ := base.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, base.Location())

	day := anchorDay
	if last := daysInMonth(firstOfTarget); day > last {
		day = last
	}

	hour, min, sec := base.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, min, sec, base.Nanosecond(), base.Location())
}

// daysInMonth returns the number of days in t's month
func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
