package catalog

import (
	"context"

	"github.com/vendra/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the slice of the catalog the ledger subsystem needs: stock
// levels for the low-stock hook and display fields for messages. The full
// catalog management surface lives in the presentation-facing CRUD layer.
type Product struct {
	shared.BaseEntity
	Name     string
	Price    decimal.Decimal
	Category string
	Stock    int
}

// IsLowStock reports whether the stock is at or below the threshold
func (p *Product) IsLowStock(threshold int) bool {
	return p.Stock <= threshold
}

// Repository provides product lookup and stock adjustment
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Save(ctx context.Context, product *Product) error
	// AdjustStock adds delta (possibly negative) to the product's stock
	// and returns the updated product.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Product, error)
}
