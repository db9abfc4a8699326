package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported coupon discount strategies.
type Type string

const (
	// TypeFixed subtracts a fixed amount, capped at the subtotal.
	TypeFixed Type = "FIXED"
	// TypePercentage subtracts a percentage of the subtotal.
	TypePercentage Type = "PERCENTAGE"
	// TypeFreeShipping refunds the shipping fee exactly.
	TypeFreeShipping Type = "FREE_SHIPPING"
	// TypePriceDiscount behaves like TypeFixed; kept as a distinct code for
	// coupons created by the bulk ingest pipeline.
	TypePriceDiscount Type = "PRICE_DISCOUNT"
)

// Status enumerates coupon lifecycle states.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

var (
	// ErrNotFound is returned when no coupon exists for a code.
	ErrNotFound = errors.New("coupon not found")
	// ErrInactive is returned when the coupon status is not ACTIVE.
	ErrInactive = errors.New("coupon is not active")
	// ErrNotYetValid is returned when the coupon window has not opened.
	ErrNotYetValid = errors.New("coupon is not yet valid")
	// ErrExpired is returned when the coupon window has closed.
	ErrExpired = errors.New("coupon has expired")
	// ErrUsageLimitReached is returned when the coupon has exhausted its uses.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
)

// UnsupportedTypeError indicates a coupon row carries a type the evaluator
// does not know. Unreachable for rows written by this codebase.
type UnsupportedTypeError struct {
	Type Type
}

func (e *UnsupportedTypeError) Error() string {
	return "unsupported coupon type: " + string(e.Type)
}

// Coupon defines a discount code, its validity window, and usage limits.
// UsageLimit of zero means unlimited.
type Coupon struct {
	ID         uuid.UUID
	Code       string
	Type       Type
	Value      decimal.Decimal
	Status     Status
	StartsAt   time.Time
	EndsAt     *time.Time
	UsageLimit int
	UsageCount int
}

// Discount holds an evaluated discount amount for one checkout.
type Discount struct {
	CouponID uuid.UUID
	Code     string
	Amount   decimal.Decimal
}

// Repository provides lookup of coupons.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}
