package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the durable store of notification records.
//
// "Active" means DeletedAt IS NULL. The store must enforce at-most-one
// active record per message key via a partial unique constraint; Create
// returns shared.ErrDuplicateNotification when the constraint rejects an
// insert. Pre-checking with ExistsActiveWithKey is an optimization, never
// the guard - the scheduler tick and user-initiated deletes race.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)

	// ExistsActiveWithKey reports whether an active record carries the key.
	ExistsActiveWithKey(ctx context.Context, key string) (bool, error)
	// ExistsTodayWithKey reports whether any record (active or archived)
	// with the key was created on the calendar day of `day`.
	ExistsTodayWithKey(ctx context.Context, key string, day time.Time) (bool, error)
	// GetLatestByKey returns the most recent record (by creation time)
	// with the key, archived or not.
	GetLatestByKey(ctx context.Context, key string) (*Record, error)

	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkUnread(ctx context.Context, id uuid.UUID) error

	// Delete archives the record (sets DeletedAt). Never a hard delete.
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByKeyToday archives all of today's records with the key.
	DeleteByKeyToday(ctx context.Context, key string, day time.Time) (int64, error)
	// DeleteByMessageToday archives all of today's records with the exact
	// message text.
	DeleteByMessageToday(ctx context.Context, message string, day time.Time) (int64, error)
	// ClearAll archives all active records.
	ClearAll(ctx context.Context) (int64, error)

	// ListActive returns active records, newest first, up to limit
	// (0 means no limit).
	ListActive(ctx context.Context, limit int) ([]Record, error)
	// ListArchived returns archived records, newest first, up to limit.
	ListArchived(ctx context.Context, limit int) ([]Record, error)
	// PurgeArchived permanently deletes archived records. The only hard
	// delete path; used for storage hygiene, never by the scheduler.
	PurgeArchived(ctx context.Context) (int64, error)

	// FindActiveDuplicateKeys returns keys carried by more than one active
	// record, looking at the `limit` most recently created active records.
	// The unique index makes duplicates impossible going forward; this
	// supports the cleanup pass over rows that predate the index.
	FindActiveDuplicateKeys(ctx context.Context, limit int) ([]string, error)
	// ArchiveDuplicatesExceptLatest archives every active record with the
	// key except the most recently created one.
	ArchiveDuplicatesExceptLatest(ctx context.Context, key string) (int64, error)
}
