package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType represents how a sale is financed
type PaymentType string

const (
	PaymentTypeCash         PaymentType = "CASH"
	PaymentTypeInstallments PaymentType = "INSTALLMENTS"
	PaymentTypeCredit       PaymentType = "CREDIT"
	PaymentTypeMixed        PaymentType = "MIXED"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeCash, PaymentTypeInstallments, PaymentTypeCredit, PaymentTypeMixed:
		return true
	}
	return false
}

// SalePaymentStatus represents the rolled-up payment state of a sale
type SalePaymentStatus string

const (
	SalePaymentStatusPaid    SalePaymentStatus = "PAID"
	SalePaymentStatusPartial SalePaymentStatus = "PARTIAL"
	SalePaymentStatusUnpaid  SalePaymentStatus = "UNPAID"
	SalePaymentStatusOverdue SalePaymentStatus = "OVERDUE"
)

// IsValid checks if the payment status is valid
func (s SalePaymentStatus) IsValid() bool {
	switch s {
	case SalePaymentStatusPaid, SalePaymentStatusPartial, SalePaymentStatusUnpaid, SalePaymentStatusOverdue:
		return true
	}
	return false
}

// SaleItem is one product line within a sale.
// Stored as part of the sale aggregate; the low-stock hook reads these
// lines after a sale is recorded.
type SaleItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// SaleItems is a slice of SaleItem that implements Scanner/Valuer for JSON storage
type SaleItems []SaleItem

// Value implements driver.Valuer so the items serialize as JSON
func (s SaleItems) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner so the items deserialize from JSON
func (s *SaleItems) Scan(value interface{}) error {
	if value == nil {
		*s = SaleItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan SaleItems: unsupported type")
	}

	if len(bytes) == 0 {
		*s = SaleItems{}
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Sale is a financed or cash transaction. A financed sale owns its
// installment schedule; sale, items and installments are created as one
// logical unit and only ever deleted together.
type Sale struct {
	shared.BaseAggregateRoot
	CustomerID           uuid.UUID
	CustomerName         string
	TotalAmount          decimal.Decimal
	PaymentType          PaymentType
	PaymentStatus        SalePaymentStatus
	NumberOfInstallments int
	InstallmentAmount    decimal.Decimal // Per-installment face value (before rounding distribution)
	AdvanceInstallments  int             // Installments pre-paid at recording time
	Items                SaleItems
	Notes                string
}

// NewSale creates a new sale
func NewSale(
	customerID uuid.UUID,
	customerName string,
	totalAmount valueobject.Money,
	paymentType PaymentType,
	numberOfInstallments int,
	advanceInstallments int,
	items SaleItems,
) (*Sale, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !totalAmount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Payment type is not valid")
	}
	if paymentType == PaymentTypeInstallments {
		if numberOfInstallments < 1 {
			return nil, shared.NewDomainError("INVALID_INSTALLMENT_COUNT", "An installment sale needs at least one installment")
		}
		if advanceInstallments < 0 || advanceInstallments > numberOfInstallments {
			return nil, shared.NewDomainError("INVALID_ADVANCE_COUNT", "Advance installments must be between 0 and the installment count")
		}
	}

	status := SalePaymentStatusUnpaid
	if paymentType == PaymentTypeCash {
		status = SalePaymentStatusPaid
	}

	installmentAmount := decimal.Zero
	if numberOfInstallments > 0 {
		installmentAmount = totalAmount.Amount().DivRound(decimal.NewFromInt(int64(numberOfInstallments)), 2)
	}

	sale := &Sale{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		CustomerID:           customerID,
		CustomerName:         customerName,
		TotalAmount:          totalAmount.Amount(),
		PaymentType:          paymentType,
		PaymentStatus:        status,
		NumberOfInstallments: numberOfInstallments,
		InstallmentAmount:    installmentAmount,
		AdvanceInstallments:  advanceInstallments,
		Items:                items,
	}
	if sale.Items == nil {
		sale.Items = SaleItems{}
	}

	sale.AddDomainEvent(NewSaleRecordedEvent(sale))

	return sale, nil
}

// BuildInstallmentSchedule creates the installment set for an installment
// sale. Amounts are distributed evenly with the last installment absorbing
// the rounding remainder, so the sum always equals the sale total. Due
// dates advance monthly from firstDueDate, anchored on its day of month
// and clamped to shorter months.
func (s *Sale) BuildInstallmentSchedule(firstDueDate time.Time) ([]*Installment, error) {
	if s.PaymentType != PaymentTypeInstallments {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Only installment sales carry a schedule")
	}

	n := s.NumberOfInstallments
	per := s.TotalAmount.DivRound(decimal.NewFromInt(int64(n)), 2)
	anchorDay := firstDueDate.Day()

	installments := make([]*Installment, 0, n)
	allocated := decimal.Zero
	for number := 1; number <= n; number++ {
		amount := per
		if number == n {
			amount = s.TotalAmount.Sub(allocated)
		}
		allocated = allocated.Add(amount)

		dueDate := addMonthsAnchored(firstDueDate, number-1, anchorDay)
		inst, err := NewInstallment(s.ID, number, dueDate, valueobject.NewMoney(amount))
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}

	return installments, nil
}

// RecomputePaymentStatus rolls the sale's payment status up from its
// installments. Cancelled installments are ignored.
func (s *Sale) RecomputePaymentStatus(installments []Installment, now time.Time) {
	if s.PaymentType == PaymentTypeCash {
		s.PaymentStatus = SalePaymentStatusPaid
		return
	}

	total := 0
	paid := 0
	anyPartial := false
	anyOverdue := false
	for _, inst := range installments {
		if inst.Status == InstallmentStatusCancelled {
			continue
		}
		total++
		if inst.IsPaid() {
			paid++
			continue
		}
		if inst.PaidAmount.IsPositive() {
			anyPartial = true
		}
		if inst.IsOverdue(now) {
			anyOverdue = true
		}
	}

	switch {
	case total > 0 && paid == total:
		s.PaymentStatus = SalePaymentStatusPaid
	case anyOverdue:
		s.PaymentStatus = SalePaymentStatusOverdue
	case paid > 0 || anyPartial:
		s.PaymentStatus = SalePaymentStatusPartial
	default:
		s.PaymentStatus = SalePaymentStatusUnpaid
	}
	s.UpdatedAt = now
	s.IncrementVersion()
}

// GetTotalAmountMoney returns the total amount as Money
func (s *Sale) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoney(s.TotalAmount)
}
