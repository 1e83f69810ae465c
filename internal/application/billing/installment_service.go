package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vendra/backend/internal/domain/billing"
	"github.com/vendra/backend/internal/domain/catalog"
	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// InstallmentLedgerService coordinates the installment ledger: sale
// recording, payment application and reversal, late fees and rescheduling.
// Every mutation keeps the owning sale's payment status in step and
// publishes the aggregate's domain events after the store commit.
type InstallmentLedgerService struct {
	saleRepo        billing.SaleRepository
	installmentRepo billing.InstallmentRepository
	txnRepo         billing.PaymentTransactionRepository
	productRepo     catalog.Repository
	eventBus        shared.EventPublisher
	logger          *zap.Logger
	now             func() time.Time
}

// NewInstallmentLedgerService creates a new InstallmentLedgerService
func NewInstallmentLedgerService(
	saleRepo billing.SaleRepository,
	installmentRepo billing.InstallmentRepository,
	txnRepo billing.PaymentTransactionRepository,
	productRepo catalog.Repository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *InstallmentLedgerService {
	return &InstallmentLedgerService{
		saleRepo:        saleRepo,
		installmentRepo: installmentRepo,
		txnRepo:         txnRepo,
		productRepo:     productRepo,
		eventBus:        eventBus,
		logger:          logger.Named("installment-ledger"),
		now:             time.Now,
	}
}

// WithNow overrides the service clock. Test hook.
func (s *InstallmentLedgerService) WithNow(now func() time.Time) *InstallmentLedgerService {
	s.now = now
	return s
}

// RecordSaleInput carries everything needed to record a sale
type RecordSaleInput struct {
	CustomerID           uuid.UUID
	CustomerName         string
	TotalAmount          valueobject.Money
	PaymentType          billing.PaymentType
	NumberOfInstallments int
	AdvanceInstallments  int
	FirstDueDate         time.Time
	Items                billing.SaleItems
	Notes                string
}

// RecordSale records a sale and, for installment sales, its full payment
// schedule in one store transaction. Advance installments are marked paid
// at recording time without payment transactions (money changed hands
// before the ledger existed for it). Stock is decremented per item after
// the commit; a failing item adjustment is logged and skipped, it never
// unwinds the sale.
func (s *InstallmentLedgerService) RecordSale(ctx context.Context, input RecordSaleInput) (*billing.Sale, error) {
	sale, err := billing.NewSale(
		input.CustomerID,
		input.CustomerName,
		input.TotalAmount,
		input.PaymentType,
		input.NumberOfInstallments,
		input.AdvanceInstallments,
		input.Items,
	)
	if err != nil {
		return nil, err
	}
	sale.Notes = input.Notes
	now := s.now()

	var installments []*billing.Installment
	if input.PaymentType == billing.PaymentTypeInstallments {
		installments, err = sale.BuildInstallmentSchedule(input.FirstDueDate)
		if err != nil {
			return nil, err
		}
		for i := 0; i < input.AdvanceInstallments; i++ {
			if err := installments[i].MarkAsPaid(now); err != nil {
				return nil, err
			}
		}
		snapshot := make([]billing.Installment, len(installments))
		for i, inst := range installments {
			snapshot[i] = *inst
		}
		sale.RecomputePaymentStatus(snapshot, now)
	}

	if err := s.saleRepo.CreateWithInstallments(ctx, sale, installments); err != nil {
		return nil, err
	}

	s.adjustStockForSale(ctx, sale)
	s.publishEvents(ctx, sale)
	for _, inst := range installments {
		s.publishEvents(ctx, inst)
	}

	s.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("customer", sale.CustomerName),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
		zap.Int("installments", len(installments)),
	)
	return sale, nil
}

// DeleteSale removes a sale with its installments and payment transactions
func (s *InstallmentLedgerService) DeleteSale(ctx context.Context, saleID uuid.UUID) error {
	if err := s.saleRepo.Delete(ctx, saleID); err != nil {
		return err
	}
	s.logger.Info("sale deleted", zap.String("sale_id", saleID.String()))
	return nil
}

// GetSale returns a sale with its installments
func (s *InstallmentLedgerService) GetSale(ctx context.Context, saleID uuid.UUID) (*billing.Sale, []billing.Installment, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}
	installments, err := s.installmentRepo.FindBySale(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}
	return sale, installments, nil
}

// CreateInstallment appends an installment to an existing sale's schedule
func (s *InstallmentLedgerService) CreateInstallment(ctx context.Context, saleID uuid.UUID, number int, dueDate time.Time, amount valueobject.Money) (*billing.Installment, error) {
	if _, err := s.saleRepo.FindByID(ctx, saleID); err != nil {
		return nil, err
	}

	inst, err := billing.NewInstallment(saleID, number, dueDate, amount)
	if err != nil {
		return nil, err
	}
	if err := s.installmentRepo.Create(ctx, inst); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inst)
	if err := s.rollupSaleStatus(ctx, saleID); err != nil {
		s.logger.Warn("sale status rollup failed", zap.Error(err))
	}
	return inst, nil
}

// GetInstallment returns an installment by ID
func (s *InstallmentLedgerService) GetInstallment(ctx context.Context, installmentID uuid.UUID) (*billing.Installment, error) {
	return s.installmentRepo.FindByID(ctx, installmentID)
}

// RecordPayment applies a payment to an installment. The installment update
// and the payment transaction are written in one store transaction, and the
// sequential policy rejects paying ahead of an earlier unpaid installment.
func (s *InstallmentLedgerService) RecordPayment(ctx context.Context, installmentID uuid.UUID, amount valueobject.Money, method billing.PaymentMethod, reference string) (*billing.Installment, error) {
	inst, err := s.installmentRepo.FindByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}

	siblings, err := s.installmentRepo.FindBySale(ctx, inst.SaleID)
	if err != nil {
		return nil, err
	}
	if !billing.ValidateSequentialPayment(siblings, inst.InstallmentNumber) {
		return nil, shared.NewDomainError("OUT_OF_SEQUENCE", "Earlier installments must be paid first")
	}

	now := s.now()
	if err := inst.RecordPayment(amount, now); err != nil {
		return nil, err
	}
	txn, err := billing.NewCompletedTransaction(inst.SaleID, inst.ID, amount, method, reference, now)
	if err != nil {
		return nil, err
	}

	if err := s.installmentRepo.SaveWithTransaction(ctx, inst, txn); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inst)
	if err := s.rollupSaleStatus(ctx, inst.SaleID); err != nil {
		s.logger.Warn("sale status rollup failed", zap.Error(err))
	}

	s.logger.Info("payment recorded",
		zap.String("installment_id", inst.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("status", string(inst.Status)),
	)
	return inst, nil
}

// MarkAsPaid settles an installment's remaining balance in one payment
func (s *InstallmentLedgerService) MarkAsPaid(ctx context.Context, installmentID uuid.UUID, method billing.PaymentMethod, reference string) (*billing.Installment, error) {
	inst, err := s.installmentRepo.FindByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}

	remaining := inst.GetBalanceMoney()
	now := s.now()
	if err := inst.MarkAsPaid(now); err != nil {
		return nil, err
	}
	txn, err := billing.NewCompletedTransaction(inst.SaleID, inst.ID, remaining, method, reference, now)
	if err != nil {
		return nil, err
	}

	if err := s.installmentRepo.SaveWithTransaction(ctx, inst, txn); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inst)
	if err := s.rollupSaleStatus(ctx, inst.SaleID); err != nil {
		s.logger.Warn("sale status rollup failed", zap.Error(err))
	}
	return inst, nil
}

// RevertPayment reverses a completed payment transaction off its
// installment. The transaction is marked cancelled, never deleted, and both
// writes commit together.
func (s *InstallmentLedgerService) RevertPayment(ctx context.Context, installmentID, transactionID uuid.UUID) (*billing.Installment, error) {
	inst, err := s.installmentRepo.FindByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	txn, err := s.txnRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.BelongsToInstallment(installmentID) {
		return nil, shared.NewDomainError("TRANSACTION_MISMATCH", "Transaction does not belong to this installment")
	}

	now := s.now()
	if err := txn.Cancel(now); err != nil {
		return nil, err
	}
	if err := inst.RevertPayment(txn.Amount, now); err != nil {
		return nil, err
	}

	if err := s.installmentRepo.SaveWithTransaction(ctx, inst, txn); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inst)
	if err := s.rollupSaleStatus(ctx, inst.SaleID); err != nil {
		s.logger.Warn("sale status rollup failed", zap.Error(err))
	}

	s.logger.Info("payment reverted",
		zap.String("installment_id", inst.ID.String()),
		zap.String("transaction_id", txn.ID.String()),
		zap.String("amount", txn.Amount.StringFixed(2)),
	)
	return inst, nil
}

// ApplyLateFee adds a late fee to an installment's face value
func (s *InstallmentLedgerService) ApplyLateFee(ctx context.Context, installmentID uuid.UUID, fee valueobject.Money) (*billing.Installment, error) {
	inst, err := s.installmentRepo.FindByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}

	if err := inst.ApplyLateFee(fee, s.now()); err != nil {
		return nil, err
	}
	if err := s.installmentRepo.Save(ctx, inst); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inst)
	if err := s.rollupSaleStatus(ctx, inst.SaleID); err != nil {
		s.logger.Warn("sale status rollup failed", zap.Error(err))
	}
	return inst, nil
}

// RescheduleNextDueDate rolls the next unpaid installment's due date one
// month past the latest payment and persists it
func (s *InstallmentLedgerService) RescheduleNextDueDate(ctx context.Context, saleID uuid.UUID) (*billing.NextDueDate, error) {
	installments, err := s.installmentRepo.FindBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}

	next := billing.ScheduleNextPendingMonthly(installments)
	if next == nil {
		return nil, shared.NewDomainError("NOTHING_TO_RESCHEDULE", "No paid installment to anchor on or nothing left unpaid")
	}

	inst, err := s.installmentRepo.FindByID(ctx, next.InstallmentID)
	if err != nil {
		return nil, err
	}
	inst.DueDate = next.DueDate
	inst.UpdatedAt = s.now()
	inst.IncrementVersion()
	if err := s.installmentRepo.Save(ctx, inst); err != nil {
		return nil, err
	}

	if err := s.rollupSaleStatus(ctx, saleID); err != nil {
		s.logger.Warn("sale status rollup failed", zap.Error(err))
	}
	return next, nil
}

// rollupSaleStatus recomputes and persists the sale's payment status from
// its installments
func (s *InstallmentLedgerService) rollupSaleStatus(ctx context.Context, saleID uuid.UUID) error {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return err
	}
	installments, err := s.installmentRepo.FindBySale(ctx, saleID)
	if err != nil {
		return err
	}

	before := sale.PaymentStatus
	sale.RecomputePaymentStatus(installments, s.now())
	if sale.PaymentStatus == before {
		return nil
	}
	return s.saleRepo.Save(ctx, sale)
}

// adjustStockForSale decrements stock for every sold item, isolating
// per-item failures
func (s *InstallmentLedgerService) adjustStockForSale(ctx context.Context, sale *billing.Sale) {
	for _, item := range sale.Items {
		if item.Quantity <= 0 {
			continue
		}
		if _, err := s.productRepo.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
			s.logger.Warn("stock adjustment failed",
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}
}

// publishEvents drains an aggregate's pending events onto the bus
func (s *InstallmentLedgerService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}
