package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vendra/backend/internal/domain/billing"
	"github.com/vendra/backend/internal/domain/catalog"
	"github.com/vendra/backend/internal/domain/notification"
	"github.com/vendra/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ScannerConfig tunes the recurring scans
type ScannerConfig struct {
	// UpcomingWindow is how far ahead the upcoming scan looks
	UpcomingWindow time.Duration
	// CleanupScanLimit bounds how many recent active notifications the
	// cleanup pass inspects
	CleanupScanLimit int
	// LowStockThreshold triggers a stock alert at or below this level
	LowStockThreshold int
}

// Scanner runs the recurring notification scans over the ledger. It holds
// no state of its own; every tick re-reads the store. Malformed rows and
// per-item failures are logged and skipped so one bad entry never poisons
// a tick.
type Scanner struct {
	installmentRepo billing.InstallmentRepository
	productRepo     catalog.Repository
	notifRepo       notification.Repository
	service         *Service
	cfg             ScannerConfig
	logger          *zap.Logger
}

// NewScanner creates a Scanner
func NewScanner(
	installmentRepo billing.InstallmentRepository,
	productRepo catalog.Repository,
	notifRepo notification.Repository,
	service *Service,
	cfg ScannerConfig,
	logger *zap.Logger,
) *Scanner {
	return &Scanner{
		installmentRepo: installmentRepo,
		productRepo:     productRepo,
		notifRepo:       notifRepo,
		service:         service,
		cfg:             cfg,
		logger:          logger.Named("notification-scanner"),
	}
}

// Scan runs one full pass: cleanup, overdue, upcoming. Step failures are
// collected rather than short-circuiting, so a broken overdue query still
// lets the upcoming scan run.
func (s *Scanner) Scan(ctx context.Context, now time.Time) error {
	var errs []error
	if err := s.RunCleanup(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cleanup: %w", err))
	}
	if err := s.ScanOverdue(ctx, now); err != nil {
		errs = append(errs, fmt.Errorf("overdue scan: %w", err))
	}
	if err := s.ScanUpcoming(ctx, now); err != nil {
		errs = append(errs, fmt.Errorf("upcoming scan: %w", err))
	}
	return errors.Join(errs...)
}

// RunCleanup archives all-but-newest of any active records sharing a key.
// The unique index should make this a no-op; it exists for stores that
// predate the index or raced across instances.
func (s *Scanner) RunCleanup(ctx context.Context) error {
	keys, err := s.notifRepo.FindActiveDuplicateKeys(ctx, s.cfg.CleanupScanLimit)
	if err != nil {
		return err
	}
	for _, key := range keys {
		n, err := s.notifRepo.ArchiveDuplicatesExceptLatest(ctx, key)
		if err != nil {
			s.logger.Warn("duplicate cleanup failed",
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("archived duplicate notifications",
			zap.String("key", key),
			zap.Int64("count", n),
		)
	}
	return nil
}

// ScanOverdue notifies about unsettled installments past their due date
func (s *Scanner) ScanOverdue(ctx context.Context, now time.Time) error {
	dues, err := s.installmentRepo.FindUnsettledDueBefore(ctx, now)
	if err != nil {
		return err
	}

	for _, due := range dues {
		if !s.validDue(due) {
			continue
		}
		inst := due.Installment
		message := fmt.Sprintf("Installment #%d for %s is %d day(s) overdue (due %s, balance %s)",
			inst.InstallmentNumber,
			due.CustomerName,
			inst.DaysOverdue(now),
			inst.DueDate.Format("2006-01-02"),
			inst.Balance.StringFixed(2),
		)
		key := notification.OverdueKey(inst.ID)
		if _, _, err := s.service.Notify(ctx, message, notification.TypeAlert, key); err != nil {
			s.logger.Warn("overdue notification failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return nil
}

// ScanUpcoming notifies about unsettled installments due inside the window
func (s *Scanner) ScanUpcoming(ctx context.Context, now time.Time) error {
	dues, err := s.installmentRepo.FindUnsettledDueBetween(ctx, now, now.Add(s.cfg.UpcomingWindow))
	if err != nil {
		return err
	}

	for _, due := range dues {
		if !s.validDue(due) {
			continue
		}
		inst := due.Installment
		message := fmt.Sprintf("Installment #%d for %s is due on %s (balance %s)",
			inst.InstallmentNumber,
			due.CustomerName,
			inst.DueDate.Format("2006-01-02"),
			inst.Balance.StringFixed(2),
		)
		key := notification.UpcomingKey(inst.ID)
		if _, _, err := s.service.Notify(ctx, message, notification.TypeReminder, key); err != nil {
			s.logger.Warn("upcoming notification failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return nil
}

// validDue filters malformed scan rows instead of letting them crash the
// tick or produce garbled messages
func (s *Scanner) validDue(due billing.InstallmentDue) bool {
	switch {
	case due.Installment.ID == uuid.Nil:
		s.logger.Warn("skipping installment without id")
		return false
	case due.CustomerName == "":
		s.logger.Warn("skipping installment without customer name",
			zap.String("installment_id", due.Installment.ID.String()),
		)
		return false
	case !due.Installment.Balance.IsPositive():
		s.logger.Warn("skipping installment with non-positive balance",
			zap.String("installment_id", due.Installment.ID.String()),
		)
		return false
	}
	return true
}

// Handle reacts to recorded sales with the low-stock check. Implements
// shared.EventHandler.
func (s *Scanner) Handle(ctx context.Context, event shared.DomainEvent) error {
	recorded, ok := event.(*billing.SaleRecordedEvent)
	if !ok {
		return nil
	}
	s.OnSaleRecorded(ctx, recorded, time.Now())
	return nil
}

// EventTypes returns the event types the scanner subscribes to
func (s *Scanner) EventTypes() []string {
	return []string{"SaleRecorded"}
}

// OnSaleRecorded checks every sold product's stock level. The dedup rule
// differs from the time-based scans: a restock since the last alert
// (product.UpdatedAt moving past it) re-arms the alert even when a same-day
// or active record exists, because stock recovers in a way overdue-ness
// does not.
func (s *Scanner) OnSaleRecorded(ctx context.Context, event *billing.SaleRecordedEvent, now time.Time) {
	for _, item := range event.Items {
		if item.ProductID == uuid.Nil {
			continue
		}
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			s.logger.Warn("product lookup failed for stock check",
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err),
			)
			continue
		}
		if !product.IsLowStock(s.cfg.LowStockThreshold) {
			continue
		}
		if err := s.notifyLowStock(ctx, product, now); err != nil {
			s.logger.Warn("low-stock notification failed",
				zap.String("product_id", product.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *Scanner) notifyLowStock(ctx context.Context, product *catalog.Product, now time.Time) error {
	key := notification.StockLowKey(product.ID)
	message := fmt.Sprintf("Stock for %s is low (%d left)", product.Name, product.Stock)

	latest, err := s.notifRepo.GetLatestByKey(ctx, key)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		// First alert for this product
	case err != nil:
		return err
	default:
		restocked := product.UpdatedAt.After(latest.CreatedAt)
		if !restocked {
			if latest.IsActive() || latest.CreatedOn(now) {
				return nil
			}
		} else if latest.IsActive() {
			// Re-arming with an active record requires archiving it first,
			// or the unique index rejects the new one.
			if err := s.notifRepo.Delete(ctx, latest.ID); err != nil {
				return err
			}
		}
	}

	record, err := notification.NewRecord(message, notification.TypeAlert, key)
	if err != nil {
		return err
	}
	if err := s.notifRepo.Create(ctx, record); err != nil {
		if errors.Is(err, shared.ErrDuplicateNotification) {
			return nil
		}
		return err
	}
	s.service.pusher.Push(record)
	return nil
}
