package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InstallmentDue is a read model for scheduler scans: an unsettled
// installment joined with the customer name of its sale.
type InstallmentDue struct {
	Installment  Installment
	CustomerName string
}

// SaleRepository manages Sale aggregates
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	// CreateWithInstallments persists the sale and its installment
	// schedule in one transaction; partial creation is not possible.
	CreateWithInstallments(ctx context.Context, sale *Sale, installments []*Installment) error
	Save(ctx context.Context, sale *Sale) error
	// Delete removes the sale, its installments and its payment
	// transactions in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
}

// InstallmentRepository manages Installment aggregates
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Installment, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]Installment, error)
	Create(ctx context.Context, installment *Installment) error
	Save(ctx context.Context, installment *Installment) error
	// SaveWithTransaction persists an installment update together with a
	// payment transaction write in a single store transaction. Both
	// succeed or neither does. The transaction may be an insert (new
	// payment) or an update (reversal marking it cancelled).
	SaveWithTransaction(ctx context.Context, installment *Installment, txn *PaymentTransaction) error
	// FindUnsettledDueBefore returns PENDING/PARTIAL installments whose
	// due date is before the cutoff, joined with customer names.
	FindUnsettledDueBefore(ctx context.Context, cutoff time.Time) ([]InstallmentDue, error)
	// FindUnsettledDueBetween returns PENDING/PARTIAL installments due in
	// [from, to), joined with customer names.
	FindUnsettledDueBetween(ctx context.Context, from, to time.Time) ([]InstallmentDue, error)
}

// PaymentTransactionRepository manages PaymentTransaction records
type PaymentTransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentTransaction, error)
	FindByInstallment(ctx context.Context, installmentID uuid.UUID) ([]PaymentTransaction, error)
	Save(ctx context.Context, txn *PaymentTransaction) error
}
