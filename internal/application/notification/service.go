package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vendra/backend/internal/domain/notification"
	"github.com/vendra/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Pusher delivers notification records to connected presentation clients.
// Implementations must not block; a slow consumer is the pusher's problem.
type Pusher interface {
	Push(record *notification.Record)
}

// NopPusher discards pushes
type NopPusher struct{}

// Push discards the record
func (NopPusher) Push(*notification.Record) {}

// Service is the notification application surface: guarded creation for
// keyed notifications, free-form creation for manual ones, and the
// read/archive lifecycle.
type Service struct {
	repo   notification.Repository
	pusher Pusher
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a notification Service
func NewService(repo notification.Repository, pusher Pusher, logger *zap.Logger) *Service {
	if pusher == nil {
		pusher = NopPusher{}
	}
	return &Service{
		repo:   repo,
		pusher: pusher,
		logger: logger.Named("notifications"),
		now:    time.Now,
	}
}

// WithNow overrides the service clock. Test hook.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Notify creates a keyed notification through the dedup guard. It returns
// the created record and true, or nil and false when the guard suppressed
// it. The existence pre-checks are an optimization; the store's unique
// index is the arbiter, and losing that race is a silent suppression, not
// an error.
func (s *Service) Notify(ctx context.Context, message string, notifType notification.Type, key string) (*notification.Record, bool, error) {
	if key == "" {
		return nil, false, shared.NewDomainError("INVALID_KEY", "A keyed notification needs a message key")
	}
	now := s.now()

	active, err := s.repo.ExistsActiveWithKey(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if active {
		return nil, false, nil
	}
	today, err := s.repo.ExistsTodayWithKey(ctx, key, now)
	if err != nil {
		return nil, false, err
	}
	if today {
		return nil, false, nil
	}

	record, err := notification.NewRecord(message, notifType, key)
	if err != nil {
		return nil, false, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if errors.Is(err, shared.ErrDuplicateNotification) {
			return nil, false, nil
		}
		return nil, false, err
	}

	s.pusher.Push(record)
	return record, true, nil
}

// CreateManual creates a free-form notification. No key, no dedup.
func (s *Service) CreateManual(ctx context.Context, message string, notifType notification.Type) (*notification.Record, error) {
	record, err := notification.NewRecord(message, notifType, "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	s.pusher.Push(record)
	return record, nil
}

// ListActive returns active notifications, newest first
func (s *Service) ListActive(ctx context.Context, limit int) ([]notification.Record, error) {
	return s.repo.ListActive(ctx, limit)
}

// ListArchived returns archived notifications, newest first
func (s *Service) ListArchived(ctx context.Context, limit int) ([]notification.Record, error) {
	return s.repo.ListArchived(ctx, limit)
}

// MarkRead marks a notification read
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

// MarkUnread marks a notification unread
func (s *Service) MarkUnread(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkUnread(ctx, id)
}

// Delete archives a notification
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// DeleteByMessage archives today's notifications with the exact message
func (s *Service) DeleteByMessage(ctx context.Context, message string) (int64, error) {
	return s.repo.DeleteByMessageToday(ctx, message, s.now())
}

// ClearAll archives every active notification
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	return s.repo.ClearAll(ctx)
}

// PurgeArchived permanently removes archived notifications
func (s *Service) PurgeArchived(ctx context.Context) (int64, error) {
	n, err := s.repo.PurgeArchived(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("archived notifications purged", zap.Int64("count", n))
	return n, nil
}
