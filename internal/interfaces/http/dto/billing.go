package dto

import (
	"time"

	"github.com/vendra/backend/internal/domain/billing"
)

// SaleItemRequest is one product line of a sale
type SaleItemRequest struct {
	ProductID   string `json:"product_id" binding:"required,uuid"`
	ProductName string `json:"product_name" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
	UnitPrice   string `json:"unit_price" binding:"required,money"`
}

// RecordSaleRequest creates a sale with its installment schedule
type RecordSaleRequest struct {
	CustomerID           string            `json:"customer_id" binding:"required,uuid"`
	CustomerName         string            `json:"customer_name" binding:"required"`
	TotalAmount          string            `json:"total_amount" binding:"required,money"`
	PaymentType          string            `json:"payment_type" binding:"required,oneof=CASH INSTALLMENTS CREDIT MIXED"`
	NumberOfInstallments int               `json:"number_of_installments" binding:"min=0"`
	AdvanceInstallments  int               `json:"advance_installments" binding:"min=0"`
	FirstDueDate         *time.Time        `json:"first_due_date"`
	Items                []SaleItemRequest `json:"items" binding:"dive"`
	Notes                string            `json:"notes"`
}

// CreateInstallmentRequest appends an installment to a sale
type CreateInstallmentRequest struct {
	SaleID            string    `json:"sale_id" binding:"required,uuid"`
	InstallmentNumber int       `json:"installment_number" binding:"required,min=1"`
	DueDate           time.Time `json:"due_date" binding:"required"`
	Amount            string    `json:"amount" binding:"required,money"`
}

// RecordPaymentRequest applies a payment to an installment
type RecordPaymentRequest struct {
	Amount           string `json:"amount" binding:"required,money"`
	PaymentMethod    string `json:"payment_method" binding:"required,oneof=CASH CARD TRANSFER OTHER"`
	PaymentReference string `json:"payment_reference"`
}

// MarkPaidRequest settles an installment's remaining balance
type MarkPaidRequest struct {
	PaymentMethod    string `json:"payment_method" binding:"required,oneof=CASH CARD TRANSFER OTHER"`
	PaymentReference string `json:"payment_reference"`
}

// RevertPaymentRequest reverses a payment transaction
type RevertPaymentRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,uuid"`
}

// ApplyLateFeeRequest adds a late fee to an installment
type ApplyLateFeeRequest struct {
	Fee string `json:"fee" binding:"required,money"`
}

// InstallmentResponse is the API shape of an installment
type InstallmentResponse struct {
	ID                string     `json:"id"`
	SaleID            string     `json:"sale_id"`
	InstallmentNumber int        `json:"installment_number"`
	DueDate           time.Time  `json:"due_date"`
	Amount            string     `json:"amount"`
	PaidAmount        string     `json:"paid_amount"`
	Balance           string     `json:"balance"`
	Status            string     `json:"status"`
	PaidDate          *time.Time `json:"paid_date,omitempty"`
	DaysOverdue       int        `json:"days_overdue"`
	LateFee           string     `json:"late_fee"`
	LateFeeApplied    bool       `json:"late_fee_applied"`
}

// NewInstallmentResponse converts a domain installment, deriving
// overdue-ness at read time
func NewInstallmentResponse(inst *billing.Installment, now time.Time) InstallmentResponse {
	status := inst.Status
	if !status.IsSettled() && inst.IsOverdue(now) {
		status = billing.InstallmentStatusOverdue
	}
	return InstallmentResponse{
		ID:                inst.ID.String(),
		SaleID:            inst.SaleID.String(),
		InstallmentNumber: inst.InstallmentNumber,
		DueDate:           inst.DueDate,
		Amount:            inst.Amount.StringFixed(2),
		PaidAmount:        inst.PaidAmount.StringFixed(2),
		Balance:           inst.Balance.StringFixed(2),
		Status:            string(status),
		PaidDate:          inst.PaidDate,
		DaysOverdue:       inst.DaysOverdue(now),
		LateFee:           inst.LateFee.StringFixed(2),
		LateFeeApplied:    inst.LateFeeApplied,
	}
}

// SaleResponse is the API shape of a sale
type SaleResponse struct {
	ID                   string                `json:"id"`
	CustomerID           string                `json:"customer_id"`
	CustomerName         string                `json:"customer_name"`
	TotalAmount          string                `json:"total_amount"`
	PaymentType          string                `json:"payment_type"`
	PaymentStatus        string                `json:"payment_status"`
	NumberOfInstallments int                   `json:"number_of_installments"`
	InstallmentAmount    string                `json:"installment_amount"`
	AdvanceInstallments  int                   `json:"advance_installments"`
	Notes                string                `json:"notes,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	Installments         []InstallmentResponse `json:"installments,omitempty"`
}

// NewSaleResponse converts a domain sale with its installments
func NewSaleResponse(sale *billing.Sale, installments []billing.Installment, now time.Time) SaleResponse {
	resp := SaleResponse{
		ID:                   sale.ID.String(),
		CustomerID:           sale.CustomerID.String(),
		CustomerName:         sale.CustomerName,
		TotalAmount:          sale.TotalAmount.StringFixed(2),
		PaymentType:          string(sale.PaymentType),
		PaymentStatus:        string(sale.PaymentStatus),
		NumberOfInstallments: sale.NumberOfInstallments,
		InstallmentAmount:    sale.InstallmentAmount.StringFixed(2),
		AdvanceInstallments:  sale.AdvanceInstallments,
		Notes:                sale.Notes,
		CreatedAt:            sale.CreatedAt,
	}
	for i := range installments {
		resp.Installments = append(resp.Installments, NewInstallmentResponse(&installments[i], now))
	}
	return resp
}

// NextDueDateResponse is the result of a reschedule
type NextDueDateResponse struct {
	InstallmentID     string    `json:"installment_id"`
	InstallmentNumber int       `json:"installment_number"`
	DueDate           time.Time `json:"due_date"`
}
