package billing

import (
	"time"

	"github.com/vendra/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentCreatedEvent is raised when a new installment is scheduled
type InstallmentCreatedEvent struct {
	shared.BaseDomainEvent
	InstallmentID     uuid.UUID       `json:"installment_id"`
	SaleID            uuid.UUID       `json:"sale_id"`
	InstallmentNumber int             `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	Amount            decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *InstallmentCreatedEvent) EventType() string {
	return "InstallmentCreated"
}

// NewInstallmentCreatedEvent creates a new InstallmentCreatedEvent
func NewInstallmentCreatedEvent(inst *Installment) *InstallmentCreatedEvent {
	return &InstallmentCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("InstallmentCreated", "Installment", inst.ID),
		InstallmentID:     inst.ID,
		SaleID:            inst.SaleID,
		InstallmentNumber: inst.InstallmentNumber,
		DueDate:           inst.DueDate,
		Amount:            inst.Amount,
	}
}

// InstallmentPaidEvent is raised when an installment is fully paid
type InstallmentPaidEvent struct {
	shared.BaseDomainEvent
	InstallmentID     uuid.UUID       `json:"installment_id"`
	SaleID            uuid.UUID       `json:"sale_id"`
	InstallmentNumber int             `json:"installment_number"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	PaidAt            time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *InstallmentPaidEvent) EventType() string {
	return "InstallmentPaid"
}

// NewInstallmentPaidEvent creates a new InstallmentPaidEvent
func NewInstallmentPaidEvent(inst *Installment) *InstallmentPaidEvent {
	paidAt := time.Now()
	if inst.PaidDate != nil {
		paidAt = *inst.PaidDate
	}
	return &InstallmentPaidEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent("InstallmentPaid", "Installment", inst.ID),
		InstallmentID:     inst.ID,
		SaleID:            inst.SaleID,
		InstallmentNumber: inst.InstallmentNumber,
		PaidAmount:        inst.PaidAmount,
		PaidAt:            paidAt,
	}
}

// InstallmentPartiallyPaidEvent is raised on a partial payment
type InstallmentPartiallyPaidEvent struct {
	shared.BaseDomainEvent
	InstallmentID uuid.UUID       `json:"installment_id"`
	SaleID        uuid.UUID       `json:"sale_id"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	Balance       decimal.Decimal `json:"balance"`
}

// EventType returns the event type name
func (e *InstallmentPartiallyPaidEvent) EventType() string {
	return "InstallmentPartiallyPaid"
}

// NewInstallmentPartiallyPaidEvent creates a new InstallmentPartiallyPaidEvent
func NewInstallmentPartiallyPaidEvent(inst *Installment, paymentAmount decimal.Decimal) *InstallmentPartiallyPaidEvent {
	return &InstallmentPartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InstallmentPartiallyPaid", "Installment", inst.ID),
		InstallmentID:   inst.ID,
		SaleID:          inst.SaleID,
		PaymentAmount:   paymentAmount,
		Balance:         inst.Balance,
	}
}

// PaymentRevertedEvent is raised when a payment is reversed off an installment
type PaymentRevertedEvent struct {
	shared.BaseDomainEvent
	InstallmentID  uuid.UUID       `json:"installment_id"`
	SaleID         uuid.UUID       `json:"sale_id"`
	RevertedAmount decimal.Decimal `json:"reverted_amount"`
	Balance        decimal.Decimal `json:"balance"`
}

// EventType returns the event type name
func (e *PaymentRevertedEvent) EventType() string {
	return "PaymentReverted"
}

// NewPaymentRevertedEvent creates a new PaymentRevertedEvent
func NewPaymentRevertedEvent(inst *Installment, amount decimal.Decimal) *PaymentRevertedEvent {
	return &PaymentRevertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentReverted", "Installment", inst.ID),
		InstallmentID:   inst.ID,
		SaleID:          inst.SaleID,
		RevertedAmount:  amount,
		Balance:         inst.Balance,
	}
}

// LateFeeAppliedEvent is raised when a late fee is applied to an installment
type LateFeeAppliedEvent struct {
	shared.BaseDomainEvent
	InstallmentID uuid.UUID       `json:"installment_id"`
	SaleID        uuid.UUID       `json:"sale_id"`
	Fee           decimal.Decimal `json:"fee"`
	NewAmount     decimal.Decimal `json:"new_amount"`
	NewBalance    decimal.Decimal `json:"new_balance"`
}

// EventType returns the event type name
func (e *LateFeeAppliedEvent) EventType() string {
	return "LateFeeApplied"
}

// NewLateFeeAppliedEvent creates a new LateFeeAppliedEvent
func NewLateFeeAppliedEvent(inst *Installment, fee decimal.Decimal) *LateFeeAppliedEvent {
	return &LateFeeAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LateFeeApplied", "Installment", inst.ID),
		InstallmentID:   inst.ID,
		SaleID:          inst.SaleID,
		Fee:             fee,
		NewAmount:       inst.Amount,
		NewBalance:      inst.Balance,
	}
}

// SaleRecordedEvent is raised when a sale (with its installments) is recorded
type SaleRecordedEvent struct {
	shared.BaseDomainEvent
	SaleID       uuid.UUID       `json:"sale_id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaymentType  PaymentType     `json:"payment_type"`
	Items        SaleItems       `json:"items"`
}

// EventType returns the event type name
func (e *SaleRecordedEvent) EventType() string {
	return "SaleRecorded"
}

// NewSaleRecordedEvent creates a new SaleRecordedEvent
func NewSaleRecordedEvent(sale *Sale) *SaleRecordedEvent {
	return &SaleRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SaleRecorded", "Sale", sale.ID),
		SaleID:          sale.ID,
		CustomerID:      sale.CustomerID,
		CustomerName:    sale.CustomerName,
		TotalAmount:     sale.TotalAmount,
		PaymentType:     sale.PaymentType,
		Items:           sale.Items,
	}
}
