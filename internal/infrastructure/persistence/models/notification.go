package models

import (
	"time"

	"github.com/vendra/backend/internal/domain/notification"
)

// NotificationModel is the persistence model for notification.Record.
//
// DeletedAt is a plain nullable column, not gorm.DeletedAt: archived rows
// must stay visible to same-day dedup queries, so no query should be
// soft-delete scoped implicitly. A partial unique index on message_key
// WHERE deleted_at IS NULL AND message_key <> '' (created in Migrate,
// since GORM tags cannot express the predicate) enforces at most one
// active row per key; free-form records carry an empty key and are exempt.
type NotificationModel struct {
	BaseModel
	Message    string `gorm:"type:text;not null"`
	Type       string `gorm:"type:varchar(20);not null"`
	MessageKey string `gorm:"type:varchar(255);index"`
	ReadAt     *time.Time
	DeletedAt  *time.Time `gorm:"index"`
}

// TableName returns the table name for NotificationModel
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts NotificationModel to domain Record
func (m *NotificationModel) ToDomain() *notification.Record {
	return &notification.Record{
		BaseEntity: m.BaseModel.ToDomain(),
		Message:    m.Message,
		Type:       notification.Type(m.Type),
		MessageKey: m.MessageKey,
		ReadAt:     m.ReadAt,
		DeletedAt:  m.DeletedAt,
	}
}

// FromDomain populates NotificationModel from domain Record
func (m *NotificationModel) FromDomain(r *notification.Record) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Message = r.Message
	m.Type = string(r.Type)
	m.MessageKey = r.MessageKey
	m.ReadAt = r.ReadAt
	m.DeletedAt = r.DeletedAt
}
