package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	coupon *Coupon
	err    error
}

func (m *mockCouponRepo) FindByCode(_ context.Context, _ string) (*Coupon, error) {
	return m.coupon, m.err
}

func TestRepoEvaluator_Evaluate(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	pastTime := fixedNow.Add(-24 * time.Hour)
	futureTime := fixedNow.Add(24 * time.Hour)

	subtotal := decimal.RequireFromString("100.00")
	shipping := decimal.RequireFromString("7.50")

	tests := []struct {
		name       string
		repo       *mockCouponRepo
		code       string
		wantAmount decimal.Decimal
		wantErr    error
	}{
		{
			name: "percentage coupon",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					ID:       uuid.New(),
					Code:     "SAVE10",
					Type:     TypePercentage,
					Value:    decimal.NewFromInt(10),
					Status:   StatusActive,
					StartsAt: pastTime,
				},
			},
			code:       "SAVE10",
			wantAmount: decimal.NewFromInt(10),
		},
		{
			name: "fixed coupon capped at subtotal",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					Code:     "BIGOFF",
					Type:     TypeFixed,
					Value:    decimal.NewFromInt(500),
					Status:   StatusActive,
					StartsAt: pastTime,
				},
			},
			code:       "BIGOFF",
			wantAmount: decimal.NewFromInt(100),
		},
		{
			name: "price discount behaves like fixed",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					Code:     "TENOFF",
					Type:     TypePriceDiscount,
					Value:    decimal.NewFromInt(10),
					Status:   StatusActive,
					StartsAt: pastTime,
				},
			},
			code:       "TENOFF",
			wantAmount: decimal.NewFromInt(10),
		},
		{
			name: "free shipping refunds the shipping fee exactly",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					Code:     "SHIPFREE",
					Type:     TypeFreeShipping,
					Status:   StatusActive,
					StartsAt: pastTime,
				},
			},
			code:       "SHIPFREE",
			wantAmount: shipping,
		},
		{
			name:    "unknown code",
			repo:    &mockCouponRepo{err: ErrNotFound},
			code:    "BOGUS",
			wantErr: ErrNotFound,
		},
		{
			name: "inactive coupon",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					Code:     "PAUSED",
					Type:     TypePercentage,
					Value:    decimal.NewFromInt(10),
					Status:   StatusInactive,
					StartsAt: pastTime,
				},
			},
			code:    "PAUSED",
			wantErr: ErrInactive,
		},
		{
			name: "not yet valid",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					Code:     "SOON",
					Type:     TypePercentage,
					Value:    decimal.NewFromInt(10),
					Status:   StatusActive,
					StartsAt: futureTime,
				},
			},
			code:    "SOON",
			wantErr: ErrNotYetValid,
		},
		{
			name: "expired",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					Code:     "OLD",
					Type:     TypePercentage,
					Value:    decimal.NewFromInt(10),
					Status:   StatusActive,
					StartsAt: pastTime.Add(-24 * time.Hour),
					EndsAt:   &pastTime,
				},
			},
			code:    "OLD",
			wantErr: ErrExpired,
		},
		{
			name: "inactive expired coupon reports inactive first",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					Code:     "DEADOLD",
					Type:     TypePercentage,
					Value:    decimal.NewFromInt(10),
					Status:   StatusInactive,
					StartsAt: pastTime.Add(-24 * time.Hour),
					EndsAt:   &pastTime,
				},
			},
			code:    "DEADOLD",
			wantErr: ErrInactive,
		},
		{
			name: "usage limit reached",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					Code:       "LIMITED",
					Type:       TypePercentage,
					Value:      decimal.NewFromInt(10),
					Status:     StatusActive,
					StartsAt:   pastTime,
					UsageLimit: 100,
					UsageCount: 100,
				},
			},
			code:    "LIMITED",
			wantErr: ErrUsageLimitReached,
		},
		{
			name: "usage under limit succeeds",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					Code:       "HASROOM",
					Type:       TypePercentage,
					Value:      decimal.NewFromInt(10),
					Status:     StatusActive,
					StartsAt:   pastTime,
					UsageLimit: 100,
					UsageCount: 50,
				},
			},
			code:       "HASROOM",
			wantAmount: decimal.NewFromInt(10),
		},
		{
			name: "zero usage limit means unlimited",
			repo: &mockCouponRepo{
				coupon: &Coupon{
					Code:       "UNLIMITED",
					Type:       TypeFixed,
					Value:      decimal.NewFromInt(5),
					Status:     StatusActive,
					StartsAt:   pastTime,
					UsageLimit: 0,
					UsageCount: 9999,
				},
			},
			code:       "UNLIMITED",
			wantAmount: decimal.NewFromInt(5),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewRepoEvaluator(tt.repo)
			e.now = func() time.Time { return fixedNow }

			got, err := e.Evaluate(context.Background(), tt.code, subtotal, shipping)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.wantAmount.Equal(got.Amount),
				"expected amount %s, got %s", tt.wantAmount, got.Amount)
			assert.Equal(t, tt.repo.coupon.ID, got.CouponID)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}

func TestRepoEvaluator_UnsupportedType(t *testing.T) {
	repo := &mockCouponRepo{
		coupon: &Coupon{
			Code:     "WEIRD",
			Type:     Type("BOGO"),
			Status:   StatusActive,
			StartsAt: time.Now().Add(-time.Hour),
		},
	}

	e := NewRepoEvaluator(repo)
	_, err := e.Evaluate(context.Background(), "WEIRD", decimal.NewFromInt(100), decimal.Zero)

	var utErr *UnsupportedTypeError
	require.ErrorAs(t, err, &utErr)
	assert.Equal(t, Type("BOGO"), utErr.Type)
}

func TestRepoEvaluator_RepoError(t *testing.T) {
	repo := &mockCouponRepo{err: errors.New("db down")}

	e := NewRepoEvaluator(repo)
	_, err := e.Evaluate(context.Background(), "ANY", decimal.NewFromInt(100), decimal.Zero)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup coupon")
}

func TestApply_NegativeClampedToZero(t *testing.T) {
	c := &Coupon{Type: TypePercentage, Value: decimal.NewFromInt(-10)}

	got, err := Apply(c, decimal.NewFromInt(100), decimal.Zero)

	require.NoError(t, err)
	assert.True(t, decimal.Zero.Equal(got), "expected 0, got %s", got)
}
