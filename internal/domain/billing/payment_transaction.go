package billing

import (
	"time"

	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how money was received
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodOther    PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// TransactionStatus represents the state of a payment transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// IsValid checks if the transaction status is valid
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// PaymentTransaction is an immutable record of money applied to (or
// reversed from) an installment. Reversal marks the transaction CANCELLED
// instead of deleting it - the audit trail is append-only. The sum of
// COMPLETED transaction amounts for an installment equals its paid amount.
type PaymentTransaction struct {
	shared.BaseAggregateRoot
	SaleID           uuid.UUID
	InstallmentID    *uuid.UUID // nil for sale-level payments
	Amount           decimal.Decimal
	PaymentMethod    PaymentMethod
	PaymentReference string
	TransactionDate  time.Time
	Status           TransactionStatus
}

// NewCompletedTransaction creates a completed payment transaction for an installment
func NewCompletedTransaction(
	saleID uuid.UUID,
	installmentID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	reference string,
	transactionDate time.Time,
) (*PaymentTransaction, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if installmentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INSTALLMENT", "Installment ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}

	instID := installmentID
	return &PaymentTransaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleID:            saleID,
		InstallmentID:     &instID,
		Amount:            amount.Amount(),
		PaymentMethod:     method,
		PaymentReference:  reference,
		TransactionDate:   transactionDate,
		Status:            TransactionStatusCompleted,
	}, nil
}

// IsCompleted returns true if the transaction is completed
func (t *PaymentTransaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}

// BelongsToInstallment returns true if the transaction is attached to the given installment
func (t *PaymentTransaction) BelongsToInstallment(installmentID uuid.UUID) bool {
	return t.InstallmentID != nil && *t.InstallmentID == installmentID
}

// Cancel marks the transaction cancelled (reversal). The record is kept.
func (t *PaymentTransaction) Cancel(now time.Time) error {
	if t.Status != TransactionStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Only completed transactions can be cancelled")
	}
	t.Status = TransactionStatusCancelled
	t.UpdatedAt = now
	t.IncrementVersion()
	return nil
}

// GetAmountMoney returns the transaction amount as Money
func (t *PaymentTransaction) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoney(t.Amount)
}
