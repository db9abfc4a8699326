package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role enumerates customer account roles.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleGuest    Role = "GUEST"
)

// ErrNotFound is returned when a customer lookup matches no record.
var ErrNotFound = errors.New("customer not found")

// ErrMissingContact is returned when a checkout supplies neither a customer
// ID nor guest contact details.
var ErrMissingContact = errors.New("customer id or guest contact info required")

// ErrDuplicateEmail is returned by CreateGuest when another record already
// holds the email. Two concurrent guest checkouts for the same address can
// race past FindByEmail; the unique index catches the loser.
var ErrDuplicateEmail = errors.New("customer email already exists")

// Customer is a registered account or an ad-hoc guest created at checkout.
// Guests carry no credentials and are identified by email so repeat guest
// checkouts reuse the same record.
type Customer struct {
	ID            uuid.UUID
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	Role          Role
	Guest         bool
	TotalOrders   int64
	TotalSpent    decimal.Decimal
	LastOrderDate *time.Time
	CreatedAt     time.Time
	DeletedAt     *time.Time
}

// Contact holds the guest contact fields from a checkout request.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Repository defines persistence operations for customers.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	CreateGuest(ctx context.Context, c *Customer) error
}
