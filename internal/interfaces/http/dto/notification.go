package dto

import (
	"time"

	"github.com/vendra/backend/internal/domain/notification"
)

// CreateNotificationRequest emits a notification manually. When a
// message key is supplied the record goes through the same dedup path
// as scheduler-generated notifications.
type CreateNotificationRequest struct {
	Message    string `json:"message" binding:"required"`
	Type       string `json:"type" binding:"required,oneof=ALERT REMINDER INFO"`
	MessageKey string `json:"message_key"`
}

// DeleteByMessageRequest archives every active notification with the given text
type DeleteByMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// NotificationResponse is the API shape of a notification record
type NotificationResponse struct {
	ID         string     `json:"id"`
	Message    string     `json:"message"`
	Type       string     `json:"type"`
	MessageKey string     `json:"message_key,omitempty"`
	Read       bool       `json:"read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

// NewNotificationResponse converts a domain record
func NewNotificationResponse(record *notification.Record) NotificationResponse {
	return NotificationResponse{
		ID:         record.ID.String(),
		Message:    record.Message,
		Type:       string(record.Type),
		MessageKey: record.MessageKey,
		Read:       record.IsRead(),
		ReadAt:     record.ReadAt,
		CreatedAt:  record.CreatedAt,
		ArchivedAt: record.DeletedAt,
	}
}

// NewNotificationResponseList converts a slice of domain records
func NewNotificationResponseList(records []notification.Record) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(records))
	for i := range records {
		out = append(out, NewNotificationResponse(&records[i]))
	}
	return out
}

// CountResponse reports how many records a bulk operation touched
type CountResponse struct {
	Count int64 `json:"count"`
}
