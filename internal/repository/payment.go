package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commercekit/backoffice/internal/domain/payment"
)

const listPaymentMethodsSQL = `SELECT id, provider, status, is_default, created_at
	FROM payment_methods ORDER BY is_default DESC, created_at`

var _ payment.Repository = (*PaymentMethodRepository)(nil)

// PaymentMethodRepository implements payment.Repository backed by PostgreSQL.
type PaymentMethodRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentMethodRepository returns a PaymentMethodRepository that uses the
// given pool.
func NewPaymentMethodRepository(pool *pgxpool.Pool) *PaymentMethodRepository {
	return &PaymentMethodRepository{pool: pool}
}

// List returns the store's payment methods, default-first.
func (r *PaymentMethodRepository) List(ctx context.Context) ([]payment.StoreMethod, error) {
	rows, err := r.pool.Query(ctx, listPaymentMethodsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing payment methods: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (payment.StoreMethod, error) {
		var m payment.StoreMethod
		err := row.Scan(&m.ID, &m.Provider, &m.Status, &m.Default, &m.CreatedAt)
		return m, err
	})
}
