package billing

import (
	"fmt"
	"time"

	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the payment state of an installment
type InstallmentStatus string

const (
	InstallmentStatusPending   InstallmentStatus = "PENDING"   // No payment applied yet
	InstallmentStatusPartial   InstallmentStatus = "PARTIAL"   // 0 < paid < amount
	InstallmentStatusPaid      InstallmentStatus = "PAID"      // balance = 0
	InstallmentStatusOverdue   InstallmentStatus = "OVERDUE"   // Derived overdue marker used in query results
	InstallmentStatusCancelled InstallmentStatus = "CANCELLED" // Terminal, set explicitly, never inferred
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPartial, InstallmentStatusPaid,
		InstallmentStatusOverdue, InstallmentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// IsSettled returns true if nothing further is owed on this status
func (s InstallmentStatus) IsSettled() bool {
	return s == InstallmentStatusPaid || s == InstallmentStatusCancelled
}

// CanApplyPayment returns true if payments can be applied in this status
func (s InstallmentStatus) CanApplyPayment() bool {
	return s == InstallmentStatusPending || s == InstallmentStatusPartial || s == InstallmentStatusOverdue
}

// Installment is one scheduled obligation within a financed sale.
// The stored status is a pure function of (paid amount, amount owed):
// balance <= 0 means PAID, 0 < paid < amount means PARTIAL, otherwise
// PENDING. Overdue-ness is derived from the due date at read time rather
// than stored, so a missed payment never mutates the row by itself.
type Installment struct {
	shared.BaseAggregateRoot
	SaleID            uuid.UUID
	InstallmentNumber int
	DueDate           time.Time
	Amount            decimal.Decimal // Face value; grows when a late fee is applied
	PaidAmount        decimal.Decimal // Cumulative completed payments
	Balance           decimal.Decimal // Always Amount - PaidAmount
	Status            InstallmentStatus
	PaidDate          *time.Time // Set when the balance first reaches zero
	LateFee           decimal.Decimal
	LateFeeApplied    bool
	Notes             string
}

// NewInstallment creates a pending installment for a sale
func NewInstallment(saleID uuid.UUID, number int, dueDate time.Time, amount valueobject.Money) (*Installment, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if number < 1 {
		return nil, shared.NewDomainError("INVALID_INSTALLMENT_NUMBER", "Installment number must be 1 or greater")
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}

	inst := &Installment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleID:            saleID,
		InstallmentNumber: number,
		DueDate:           dueDate,
		Amount:            amount.Amount(),
		PaidAmount:        decimal.Zero,
		Balance:           amount.Amount(),
		Status:            InstallmentStatusPending,
		LateFee:           decimal.Zero,
	}

	inst.AddDomainEvent(NewInstallmentCreatedEvent(inst))

	return inst, nil
}

// RecordPayment applies a payment to the installment
func (i *Installment) RecordPayment(amount valueobject.Money, now time.Time) error {
	if !i.Status.CanApplyPayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to installment in %s status", i.Status))
	}
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	if amount.Amount().GreaterThan(i.Balance) {
		return shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Payment amount %s exceeds remaining balance %s", amount.String(), i.Balance.StringFixed(2)))
	}

	i.PaidAmount = i.PaidAmount.Add(amount.Amount())
	i.recomputeBalance()

	if i.Balance.LessThanOrEqual(decimal.Zero) {
		i.Status = InstallmentStatusPaid
		paidAt := now
		i.PaidDate = &paidAt
		i.AddDomainEvent(NewInstallmentPaidEvent(i))
	} else {
		i.Status = InstallmentStatusPartial
		i.AddDomainEvent(NewInstallmentPartiallyPaidEvent(i, amount.Amount()))
	}

	i.UpdatedAt = now
	i.IncrementVersion()

	return nil
}

// MarkAsPaid settles the installment in full without a transaction record.
// Used for manual reconciliation and advance installments.
func (i *Installment) MarkAsPaid(now time.Time) error {
	if i.Status == InstallmentStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a cancelled installment as paid")
	}

	i.PaidAmount = i.Amount
	i.Balance = decimal.Zero
	i.Status = InstallmentStatusPaid
	paidAt := now
	i.PaidDate = &paidAt
	i.UpdatedAt = now
	i.IncrementVersion()

	i.AddDomainEvent(NewInstallmentPaidEvent(i))

	return nil
}

// RevertPayment removes a previously applied payment amount.
// A result below zero signals corrupted prior state and is rejected with
// LEDGER_INCONSISTENCY rather than clamped.
func (i *Installment) RevertPayment(amount decimal.Decimal, now time.Time) error {
	newPaid := i.PaidAmount.Sub(amount)
	if newPaid.IsNegative() {
		return shared.NewDomainError("LEDGER_INCONSISTENCY",
			fmt.Sprintf("Reverting %s would leave paid amount negative (current %s)", amount.StringFixed(2), i.PaidAmount.StringFixed(2)))
	}

	i.PaidAmount = newPaid
	i.recomputeBalance()

	switch {
	case i.Balance.LessThanOrEqual(decimal.Zero):
		i.Status = InstallmentStatusPaid
	case i.PaidAmount.IsZero():
		i.Status = InstallmentStatusPending
		i.PaidDate = nil
	default:
		i.Status = InstallmentStatusPartial
		i.PaidDate = nil
	}

	i.UpdatedAt = now
	i.IncrementVersion()

	i.AddDomainEvent(NewPaymentRevertedEvent(i, amount))

	return nil
}

// ApplyLateFee increases the amount owed by the fee. The balance widens
// accordingly - a late fee increases what is owed, even on a previously
// paid installment. When that reopens the balance, the status moves back
// to PARTIAL and the paid date is cleared, keeping status consistent with
// the balance everywhere else in the system.
func (i *Installment) ApplyLateFee(fee valueobject.Money, now time.Time) error {
	if i.Status == InstallmentStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply a late fee to a cancelled installment")
	}
	if !fee.IsPositive() {
		return shared.ErrInvalidAmount
	}

	i.Amount = i.Amount.Add(fee.Amount())
	i.LateFee = i.LateFee.Add(fee.Amount())
	i.LateFeeApplied = true
	i.recomputeBalance()

	if i.Balance.GreaterThan(decimal.Zero) && i.Status == InstallmentStatusPaid {
		i.Status = InstallmentStatusPartial
		i.PaidDate = nil
	}

	i.UpdatedAt = now
	i.IncrementVersion()

	i.AddDomainEvent(NewLateFeeAppliedEvent(i, fee.Amount()))

	return nil
}

// Cancel marks the installment cancelled. Terminal override, never inferred.
func (i *Installment) Cancel(now time.Time) error {
	if i.Status == InstallmentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a fully paid installment")
	}
	i.Status = InstallmentStatusCancelled
	i.UpdatedAt = now
	i.IncrementVersion()
	return nil
}

// recomputeBalance re-derives the balance from amount and paid amount
func (i *Installment) recomputeBalance() {
	i.Balance = i.Amount.Sub(i.PaidAmount)
}

// IsPaid returns true if the installment is fully paid
func (i *Installment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid
}

// IsOverdue returns true if the installment is unsettled and past due
func (i *Installment) IsOverdue(now time.Time) bool {
	if i.Status.IsSettled() {
		return false
	}
	return i.DueDate.Before(now)
}

// DaysOverdue returns the number of whole days past due (0 if not overdue)
func (i *Installment) DaysOverdue(now time.Time) int {
	if !i.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(i.DueDate).Hours() / 24)
}

// GetAmountMoney returns the face value as Money
func (i *Installment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(i.Amount)
}

// GetBalanceMoney returns the outstanding balance as Money
func (i *Installment) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoney(i.Balance)
}
