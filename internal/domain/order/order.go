package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/commercekit/backoffice/internal/domain/payment"
)

// FulfillmentStatus enumerates order fulfillment states. Checkout always
// creates orders as FulfillmentPending; later transitions belong to the
// admin status-update flows.
type FulfillmentStatus string

const (
	FulfillmentPending    FulfillmentStatus = "PENDING"
	FulfillmentProcessing FulfillmentStatus = "PROCESSING"
	FulfillmentShipped    FulfillmentStatus = "SHIPPED"
	FulfillmentDelivered  FulfillmentStatus = "DELIVERED"
	FulfillmentCancelled  FulfillmentStatus = "CANCELLED"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems         = errors.New("items required")
	ErrMissingShipping    = errors.New("shipping address required")
	ErrNumberConflict     = errors.New("order or transaction number already exists")
	ErrCommitRetriesSpent = errors.New("order commit failed after retries")
)

// ProductNotFoundError indicates a requested product does not exist.
type ProductNotFoundError struct {
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID uuid.UUID
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// InsufficientStockError indicates a product cannot cover the requested
// quantity. Raised by both the advisory pre-check and the authoritative
// in-transaction check.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// Address is a point-in-time copy of a shipping or billing address. Orders
// snapshot addresses so later edits to a customer's address book do not
// rewrite order history.
type Address struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Order is a committed checkout with its final price breakdown.
// TotalAmount = Subtotal + TaxAmount + ShippingFee - Discount.
type Order struct {
	ID                uuid.UUID
	OrderNumber       string
	CustomerID        uuid.UUID
	Subtotal          decimal.Decimal
	TaxAmount         decimal.Decimal
	ShippingFee       decimal.Decimal
	Discount          decimal.Decimal
	TotalAmount       decimal.Decimal
	FulfillmentStatus FulfillmentStatus
	PaymentStatus     payment.Status
	CouponID          *uuid.UUID
	CouponCode        string
	ShippingAddress   Address
	BillingAddress    *Address
	Notes             string
	IPAddress         string
	UserAgent         string
	Country           string
	CreatedAt         time.Time
	DeletedAt         *time.Time
}

// Item is a line of an order, snapshotting the product as it was at
// purchase time. Never re-derived from the live product.
type Item struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Image       string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
}

// Transaction records the settlement of exactly one order. The one-to-one
// link is enforced by a unique constraint on the order reference.
type Transaction struct {
	ID                uuid.UUID
	TransactionNumber string
	OrderID           uuid.UUID
	PaymentMethodID   *uuid.UUID
	Amount            decimal.Decimal
	Currency          string
	PaymentMethod     payment.Method
	PaymentStatus     payment.Status
	CreatedAt         time.Time
}

// Committer persists an order, its items, the stock decrements, the linked
// transaction, and the denormalized counters as one atomic unit. Nothing
// persists if any step fails.
type Committer interface {
	Commit(ctx context.Context, ord *Order, items []Item, txn *Transaction) error
}
