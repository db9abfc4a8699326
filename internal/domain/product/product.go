package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
//
// StockQuantity is the authoritative on-hand count. When UnlimitedStock is
// true the count is ignored and checkouts never fail for stock reasons.
type Product struct {
	ID             uuid.UUID
	Name           string
	SKU            string
	Price          decimal.Decimal
	Image          string
	StockQuantity  int
	UnlimitedStock bool
	TotalSales     int64
}

// HasStock reports whether the product can satisfy a request for qty units.
func (p *Product) HasStock(qty int) bool {
	return p.UnlimitedStock || p.StockQuantity >= qty
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
}
