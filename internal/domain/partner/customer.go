package partner

import (
	"context"

	"github.com/vendra/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Customer is the slice of customer data the ledger needs: a name for
// human-readable notification messages and sale records.
type Customer struct {
	shared.BaseEntity
	Name  string
	Phone string
}

// Repository provides customer lookup
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
}
