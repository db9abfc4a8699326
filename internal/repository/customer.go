package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commercekit/backoffice/internal/domain/customer"
)

const (
	findCustomerByEmailSQL = `SELECT id, first_name, last_name, email, phone, role, is_guest,
		total_orders, total_spent, last_order_date, created_at, deleted_at
		FROM customers WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`

	createGuestSQL = `INSERT INTO customers (id, first_name, last_name, email, phone, role, is_guest, total_spent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, 0, $7)`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// FindByEmail looks up an active customer by email, case-insensitively.
// Returns customer.ErrNotFound when no record matches.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, findCustomerByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("finding customer by email: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("finding customer by email: %w", err)
	}
	return &c, nil
}

// CreateGuest inserts a guest customer row. A unique-index violation on the
// email maps to customer.ErrDuplicateEmail so callers can reuse the winner
// of a concurrent insert.
func (r *CustomerRepository) CreateGuest(ctx context.Context, c *customer.Customer) error {
	_, err := r.pool.Exec(ctx, createGuestSQL,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.Role, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return customer.ErrDuplicateEmail
		}
		return fmt.Errorf("creating guest customer %q: %w", c.Email, err)
	}
	return nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Role, &c.Guest,
		&c.TotalOrders, &c.TotalSpent, &c.LastOrderDate, &c.CreatedAt, &c.DeletedAt,
	)
	return c, err
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
