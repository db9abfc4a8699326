package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluator validates a coupon code against a checkout's subtotal and
// shipping fee and returns the computed discount.
type Evaluator interface {
	Evaluate(ctx context.Context, code string, subtotal, shippingFee decimal.Decimal) (*Discount, error)
}

// RepoEvaluator implements Evaluator by looking up coupons from a Repository.
//
// Evaluation is read-only: usage counters move only when an order referencing
// the coupon is durably committed, so an evaluated-but-abandoned checkout
// never consumes a use.
type RepoEvaluator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoEvaluator creates a RepoEvaluator backed by the given Repository.
func NewRepoEvaluator(repo Repository) *RepoEvaluator {
	return &RepoEvaluator{repo: repo, now: time.Now}
}

// Evaluate looks up the coupon, checks status, validity window, and usage
// limit in that order (first failure wins), then computes the discount.
func (e *RepoEvaluator) Evaluate(ctx context.Context, code string, subtotal, shippingFee decimal.Decimal) (*Discount, error) {
	c, err := e.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	now := e.now()

	if c.Status != StatusActive {
		return nil, ErrInactive
	}
	if now.Before(c.StartsAt) {
		return nil, ErrNotYetValid
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return nil, ErrExpired
	}
	if c.UsageLimit > 0 && c.UsageCount >= c.UsageLimit {
		return nil, ErrUsageLimitReached
	}

	amount, err := Apply(c, subtotal, shippingFee)
	if err != nil {
		return nil, err
	}

	return &Discount{
		CouponID: c.ID,
		Code:     c.Code,
		Amount:   amount,
	}, nil
}

// Apply computes the discount amount for the coupon against the given
// subtotal and shipping fee. The result is clamped at zero and rounded to
// 2 decimal places.
func Apply(c *Coupon, subtotal, shippingFee decimal.Decimal) (decimal.Decimal, error) {
	var amount decimal.Decimal

	switch c.Type {
	case TypeFixed, TypePriceDiscount:
		amount = decimal.Min(c.Value, subtotal)
	case TypePercentage:
		amount = subtotal.Mul(c.Value).Div(hundred)
	case TypeFreeShipping:
		amount = shippingFee
	default:
		return decimal.Zero, &UnsupportedTypeError{Type: c.Type}
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount.Round(2), nil
}
