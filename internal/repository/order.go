package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/commercekit/backoffice/internal/domain/coupon"
	"github.com/commercekit/backoffice/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, order_number, customer_id, subtotal, tax_amount, shipping_fee,
		discount, total_amount, fulfillment_status, payment_status, coupon_id, coupon_code,
		shipping_address, billing_address, notes, ip_address, user_agent, country, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	insertOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, product_name, sku, image,
		unit_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	// Decrement-with-guard: the WHERE clause expresses "only if enough stock
	// or unlimited", so correctness does not hinge on isolation level. A zero
	// row count means the guard rejected the decrement.
	decrementStockSQL = `UPDATE products
		SET stock_quantity = CASE WHEN is_unlimited_stock THEN stock_quantity ELSE stock_quantity - $2 END,
		    total_sales = total_sales + $2,
		    updated_at = NOW()
		WHERE id = $1 AND (is_unlimited_stock OR stock_quantity >= $2)`

	readStockSQL = `SELECT name, stock_quantity FROM products WHERE id = $1`

	insertTransactionSQL = `INSERT INTO transactions (id, transaction_number, order_id, payment_method_id,
		amount, currency, payment_method, payment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	// Same conditional-update pattern as stock: the increment lands only
	// while the limit has headroom, closing the over-redemption window.
	incrementCouponUsageSQL = `UPDATE coupons
		SET usage_count = usage_count + 1
		WHERE id = $1 AND (usage_limit = 0 OR usage_count < usage_limit)`

	updateCustomerStatsSQL = `UPDATE customers
		SET total_orders = total_orders + 1,
		    total_spent = total_spent + $2,
		    last_order_date = $3
		WHERE id = $1`
)

var _ order.Committer = (*OrderRepository)(nil)

// OrderRepository persists orders and implements the atomic checkout commit.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Commit writes the order, its items, the guarded stock decrements, the
// linked transaction, the coupon usage increment, and the customer lifetime
// counters in a single database transaction. If any step fails the whole
// unit rolls back and no record becomes visible.
func (r *OrderRepository) Commit(ctx context.Context, ord *order.Order, items []order.Item, txn *order.Transaction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin commit transaction")
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			zctx.From(ctx).Warn("Rollback failed", zap.Error(rbErr))
		}
	}()

	if err := insertOrder(ctx, tx, ord); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, items); err != nil {
		return err
	}
	if err := decrementStock(ctx, tx, items); err != nil {
		return err
	}
	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}
	if ord.CouponID != nil {
		if err := incrementCouponUsage(ctx, tx, ord); err != nil {
			return err
		}
	}
	if err := updateCustomerStats(ctx, tx, ord); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit order transaction")
	}
	return nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, ord *order.Order) error {
	shipping, err := json.Marshal(ord.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}
	var billing []byte
	if ord.BillingAddress != nil {
		billing, err = json.Marshal(ord.BillingAddress)
		if err != nil {
			return fmt.Errorf("marshaling billing address: %w", err)
		}
	}

	_, err = tx.Exec(ctx, insertOrderSQL,
		ord.ID, ord.OrderNumber, ord.CustomerID,
		ord.Subtotal, ord.TaxAmount, ord.ShippingFee, ord.Discount, ord.TotalAmount,
		ord.FulfillmentStatus, ord.PaymentStatus,
		ord.CouponID, ord.CouponCode,
		shipping, billing,
		ord.Notes, ord.IPAddress, ord.UserAgent, ord.Country,
		ord.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return order.ErrNumberConflict
		}
		return fmt.Errorf("creating order %q: %w", ord.OrderNumber, err)
	}
	return nil
}

func insertItems(ctx context.Context, tx pgx.Tx, items []order.Item) error {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(insertOrderItemSQL,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.SKU, item.Image,
			item.UnitPrice, item.Quantity, item.LineTotal,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("creating order items: %w", err)
	}
	return nil
}

// decrementStock applies the authoritative stock check. The advisory check
// in the orchestrator may have passed on stale counts; this one runs against
// current rows and aborts the transaction on a shortfall.
func decrementStock(ctx context.Context, tx pgx.Tx, items []order.Item) error {
	for _, item := range items {
		tag, err := tx.Exec(ctx, decrementStockSQL, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing stock for product %q: %w", item.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return insufficientStock(ctx, tx, item)
		}
	}
	return nil
}

// insufficientStock re-reads the product inside the transaction to name the
// product and report the count that caused the guard to reject.
func insufficientStock(ctx context.Context, tx pgx.Tx, item order.Item) error {
	var (
		name      string
		available int
	)
	err := tx.QueryRow(ctx, readStockSQL, item.ProductID).Scan(&name, &available)
	if errors.Is(err, pgx.ErrNoRows) {
		return &order.ProductNotFoundError{ProductID: item.ProductID}
	}
	if err != nil {
		return fmt.Errorf("reading stock for product %q: %w", item.ProductID, err)
	}
	return &order.InsufficientStockError{
		ProductID:   item.ProductID,
		ProductName: name,
		Requested:   item.Quantity,
		Available:   available,
	}
}

func insertTransaction(ctx context.Context, tx pgx.Tx, txn *order.Transaction) error {
	_, err := tx.Exec(ctx, insertTransactionSQL,
		txn.ID, txn.TransactionNumber, txn.OrderID, txn.PaymentMethodID,
		txn.Amount, txn.Currency, txn.PaymentMethod, txn.PaymentStatus, txn.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Either the transaction number or the one-per-order link
			// collided; both are retried with fresh numbers upstream.
			if pgErr.ConstraintName == "transactions_order_id_key" {
				return fmt.Errorf("transaction already exists for order %q: %w", txn.OrderID, err)
			}
			return order.ErrNumberConflict
		}
		return fmt.Errorf("creating transaction %q: %w", txn.TransactionNumber, err)
	}
	return nil
}

func incrementCouponUsage(ctx context.Context, tx pgx.Tx, ord *order.Order) error {
	tag, err := tx.Exec(ctx, incrementCouponUsageSQL, ord.CouponID)
	if err != nil {
		return fmt.Errorf("incrementing usage for coupon %q: %w", ord.CouponCode, err)
	}
	if tag.RowsAffected() == 0 {
		// A concurrent checkout consumed the last use between evaluation
		// and commit.
		return coupon.ErrUsageLimitReached
	}
	return nil
}

func updateCustomerStats(ctx context.Context, tx pgx.Tx, ord *order.Order) error {
	_, err := tx.Exec(ctx, updateCustomerStatsSQL, ord.CustomerID, ord.TotalAmount, ord.CreatedAt)
	if err != nil {
		return fmt.Errorf("updating stats for customer %q: %w", ord.CustomerID, err)
	}
	return nil
}
