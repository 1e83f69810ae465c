package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vendra/backend/internal/domain/notification"
	"github.com/vendra/backend/internal/domain/shared"
	"github.com/vendra/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNotificationRepository implements notification.Repository using GORM.
//
// Create relies on the partial unique index over active message keys: the
// insert itself is the dedup arbiter, and a constraint rejection comes back
// as shared.ErrDuplicateNotification so callers can treat the race as a
// benign no-op.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification record
func (r *GormNotificationRepository) Create(ctx context.Context, record *notification.Record) error {
	var model models.NotificationModel
	model.FromDomain(record)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateNotification
		}
		return shared.ErrStoreUnavailable.WithCause(err)
	}
	return nil
}

// FindByID finds a notification record by its ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Record, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.ErrStoreUnavailable.WithCause(err)
	}
	return model.ToDomain(), nil
}

// ExistsActiveWithKey reports whether an active record carries the key
func (r *GormNotificationRepository) ExistsActiveWithKey(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("message_key = ? AND deleted_at IS NULL", key).
		Count(&count).Error; err != nil {
		return false, shared.ErrStoreUnavailable.WithCause(err)
	}
	return count > 0, nil
}

// ExistsTodayWithKey reports whether any record with the key, archived or
// not, was created on the calendar day of `day`
func (r *GormNotificationRepository) ExistsTodayWithKey(ctx context.Context, key string, day time.Time) (bool, error) {
	start, end := dayBounds(day)
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("message_key = ? AND created_at >= ? AND created_at < ?", key, start, end).
		Count(&count).Error; err != nil {
		return false, shared.ErrStoreUnavailable.WithCause(err)
	}
	return count > 0, nil
}

// GetLatestByKey returns the most recent record with the key, archived or not
func (r *GormNotificationRepository) GetLatestByKey(ctx context.Context, key string) (*notification.Record, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).
		Where("message_key = ?", key).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.ErrStoreUnavailable.WithCause(err)
	}
	return model.ToDomain(), nil
}

// MarkRead stamps the record's read time
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.setReadAt(ctx, id, time.Now())
}

// MarkUnread clears the record's read time
func (r *GormNotificationRepository) MarkUnread(ctx context.Context, id uuid.UUID) error {
	return r.setReadAt(ctx, id, nil)
}

func (r *GormNotificationRepository) setReadAt(ctx context.Context, id uuid.UUID, readAt interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{"read_at": readAt, "updated_at": time.Now()})
	if result.Error != nil {
		return shared.ErrStoreUnavailable.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete archives the record
func (r *GormNotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{"deleted_at": time.Now(), "updated_at": time.Now()})
	if result.Error != nil {
		return shared.ErrStoreUnavailable.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByKeyToday archives all of today's active records with the key
func (r *GormNotificationRepository) DeleteByKeyToday(ctx context.Context, key string, day time.Time) (int64, error) {
	start, end := dayBounds(day)
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("message_key = ? AND deleted_at IS NULL AND created_at >= ? AND created_at < ?", key, start, end).
		Updates(map[string]interface{}{"deleted_at": time.Now(), "updated_at": time.Now()})
	if result.Error != nil {
		return 0, shared.ErrStoreUnavailable.WithCause(result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByMessageToday archives all of today's active records with the exact message
func (r *GormNotificationRepository) DeleteByMessageToday(ctx context.Context, message string, day time.Time) (int64, error) {
	start, end := dayBounds(day)
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("message = ? AND deleted_at IS NULL AND created_at >= ? AND created_at < ?", message, start, end).
		Updates(map[string]interface{}{"deleted_at": time.Now(), "updated_at": time.Now()})
	if result.Error != nil {
		return 0, shared.ErrStoreUnavailable.WithCause(result.Error)
	}
	return result.RowsAffected, nil
}

// ClearAll archives all active records
func (r *GormNotificationRepository) ClearAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("deleted_at IS NULL").
		Updates(map[string]interface{}{"deleted_at": time.Now(), "updated_at": time.Now()})
	if result.Error != nil {
		return 0, shared.ErrStoreUnavailable.WithCause(result.Error)
	}
	return result.RowsAffected, nil
}

// ListActive returns active records, newest first
func (r *GormNotificationRepository) ListActive(ctx context.Context, limit int) ([]notification.Record, error) {
	return r.list(ctx, "deleted_at IS NULL", limit)
}

// ListArchived returns archived records, newest first
func (r *GormNotificationRepository) ListArchived(ctx context.Context, limit int) ([]notification.Record, error) {
	return r.list(ctx, "deleted_at IS NOT NULL", limit)
}

func (r *GormNotificationRepository) list(ctx context.Context, scope string, limit int) ([]notification.Record, error) {
	var recordModels []models.NotificationModel
	query := r.db.WithContext(ctx).
		Where(scope).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recordModels).Error; err != nil {
		return nil, shared.ErrStoreUnavailable.WithCause(err)
	}
	records := make([]notification.Record, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// PurgeArchived permanently deletes archived records
func (r *GormNotificationRepository) PurgeArchived(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("deleted_at IS NOT NULL").
		Delete(&models.NotificationModel{})
	if result.Error != nil {
		return 0, shared.ErrStoreUnavailable.WithCause(result.Error)
	}
	return result.RowsAffected, nil
}

// FindActiveDuplicateKeys returns keys held by more than one of the most
// recent `limit` active records
func (r *GormNotificationRepository) FindActiveDuplicateKeys(ctx context.Context, limit int) ([]string, error) {
	recent := r.db.Model(&models.NotificationModel{}).
		Select("message_key").
		Where("deleted_at IS NULL AND message_key <> ''").
		Order("created_at DESC")
	if limit > 0 {
		recent = recent.Limit(limit)
	}

	var keys []string
	if err := r.db.WithContext(ctx).
		Table("(?) AS recent", recent).
		Select("message_key").
		Group("message_key").
		Having("COUNT(*) > 1").
		Scan(&keys).Error; err != nil {
		return nil, shared.ErrStoreUnavailable.WithCause(err)
	}
	return keys, nil
}

// ArchiveDuplicatesExceptLatest archives all active records with the key
// except the newest one
func (r *GormNotificationRepository) ArchiveDuplicatesExceptLatest(ctx context.Context, key string) (int64, error) {
	newest := r.db.Model(&models.NotificationModel{}).
		Select("id").
		Where("message_key = ? AND deleted_at IS NULL", key).
		Order("created_at DESC").
		Limit(1)

	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("message_key = ? AND deleted_at IS NULL AND id NOT IN (?)", key, newest).
		Updates(map[string]interface{}{"deleted_at": time.Now(), "updated_at": time.Now()})
	if result.Error != nil {
		return 0, shared.ErrStoreUnavailable.WithCause(result.Error)
	}
	return result.RowsAffected, nil
}

// dayBounds returns the [start, end) window of the calendar day containing t
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
