package notification

import (
	"fmt"
	"time"

	"github.com/vendra/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Type classifies a notification for the presentation layer
type Type string

const (
	TypeAlert    Type = "ALERT"
	TypeReminder Type = "REMINDER"
	TypeInfo     Type = "INFO"
)

// IsValid checks if the type is a valid notification Type
func (t Type) IsValid() bool {
	switch t {
	case TypeAlert, TypeReminder, TypeInfo:
		return true
	}
	return false
}

// Message key prefixes. A message key identifies the real-world event a
// notification is about, independent of its text; it is the dedup unit.
const (
	keyPrefixOverdue  = "overdue"
	keyPrefixUpcoming = "upcoming"
	keyPrefixStockLow = "stock_low"
)

// OverdueKey builds the semantic key for an overdue installment
func OverdueKey(installmentID uuid.UUID) string {
	return fmt.Sprintf("%s|%s", keyPrefixOverdue, installmentID)
}

// UpcomingKey builds the semantic key for an upcoming installment
func UpcomingKey(installmentID uuid.UUID) string {
	return fmt.Sprintf("%s|%s", keyPrefixUpcoming, installmentID)
}

// StockLowKey builds the semantic key for a low-stock product
func StockLowKey(productID uuid.UUID) string {
	return fmt.Sprintf("%s|%s", keyPrefixStockLow, productID)
}

// Record is a transient operational alert. Records are archived (soft
// deleted) rather than removed, because the one-per-day dedup guarantee
// depends on archived rows remaining queryable. Among active records
// (DeletedAt == nil) the message key is unique; the store enforces this
// with a partial unique index, not just application checks.
type Record struct {
	shared.BaseEntity
	Message    string
	Type       Type
	MessageKey string     // Empty for free-form notifications, which are never deduplicated
	ReadAt     *time.Time
	DeletedAt  *time.Time
}

// NewRecord creates an active notification record
func NewRecord(message string, notifType Type, messageKey string) (*Record, error) {
	if message == "" {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Notification message cannot be empty")
	}
	if !notifType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Notification type is not valid")
	}

	return &Record{
		BaseEntity: shared.NewBaseEntity(),
		Message:    message,
		Type:       notifType,
		MessageKey: messageKey,
	}, nil
}

// IsActive returns true if the record has not been archived
func (r *Record) IsActive() bool {
	return r.DeletedAt == nil
}

// IsRead returns true if the record has been marked read
func (r *Record) IsRead() bool {
	return r.ReadAt != nil
}

// MarkRead sets the read timestamp. No effect on dedup state.
func (r *Record) MarkRead(now time.Time) {
	readAt := now
	r.ReadAt = &readAt
	r.UpdatedAt = now
}

// MarkUnread clears the read timestamp
func (r *Record) MarkUnread(now time.Time) {
	r.ReadAt = nil
	r.UpdatedAt = now
}

// Archive soft-deletes the record. The row is retained for same-day dedup
// and audit until purged.
func (r *Record) Archive(now time.Time) {
	deletedAt := now
	r.DeletedAt = &deletedAt
	r.UpdatedAt = now
}

// CreatedOn reports whether the record was created on the same calendar
// day as the given time, in that time's location.
func (r *Record) CreatedOn(day time.Time) bool {
	y1, m1, d1 := r.CreatedAt.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
