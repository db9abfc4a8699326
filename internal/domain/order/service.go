package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/commercekit/backoffice/internal/domain/coupon"
	"github.com/commercekit/backoffice/internal/domain/customer"
	"github.com/commercekit/backoffice/internal/domain/payment"
	"github.com/commercekit/backoffice/internal/domain/product"
)

// commitAttempts bounds retries of the atomic commit when a generated order
// or transaction number collides with an existing one.
const commitAttempts = 3

// ItemRequest is one requested cart line. Quantities come from the client;
// prices never do.
type ItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderRequest is the checkout input, already schema-validated by the
// HTTP layer. Either CustomerID or Contact must be present.
type CreateOrderRequest struct {
	CustomerID      uuid.UUID
	Contact         *customer.Contact
	Items           []ItemRequest
	ShippingAddress Address
	BillingAddress  *Address
	PaymentMethod   payment.Method
	ShippingFee     decimal.Decimal
	Discount        decimal.Decimal
	CouponCode      string
	Notes           string
	IPAddress       string
	UserAgent       string
	Country         string
}

// CreateOrderResult is returned to the caller after a durable commit.
type CreateOrderResult struct {
	OrderID     uuid.UUID
	OrderNumber string
	TotalAmount decimal.Decimal
}

// ServiceConfig holds store-level settings applied to every checkout.
type ServiceConfig struct {
	// TaxRate is the store tax rate in percent, applied to the discounted
	// subtotal.
	TaxRate decimal.Decimal
	// Currency is the ISO currency code snapshotted on transactions.
	Currency string
}

// Service orchestrates checkout: it prices the cart from catalog data,
// evaluates coupons, resolves the customer, and hands the finalized records
// to the atomic committer.
type Service struct {
	products  product.Repository
	customers *customer.Resolver
	coupons   coupon.Evaluator
	payments  payment.Repository
	committer Committer
	cfg       ServiceConfig
	now       func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(
	products product.Repository,
	customers *customer.Resolver,
	coupons coupon.Evaluator,
	payments payment.Repository,
	committer Committer,
	cfg ServiceConfig,
) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &Service{
		products:  products,
		customers: customers,
		coupons:   coupons,
		payments:  payments,
		committer: committer,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create runs the full checkout pipeline and returns the committed order's
// identifiers and total. Any failure aborts before a single record becomes
// visible.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if req.ShippingAddress == (Address{}) {
		return nil, ErrMissingShipping
	}

	ids := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[uuid.UUID]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	// Advisory stock check and server-priced line snapshots. The committer
	// re-checks stock inside the transaction; this pass only fails fast with
	// a precise message before pricing and coupon work.
	items := make([]Item, len(req.Items))
	lines := make([]PriceLine, len(req.Items))
	for i, reqItem := range req.Items {
		p, ok := byID[reqItem.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: reqItem.ProductID}
		}
		if !p.HasStock(reqItem.Quantity) {
			return nil, &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   reqItem.Quantity,
				Available:   p.StockQuantity,
			}
		}
		qty := decimal.NewFromInt(int64(reqItem.Quantity))
		items[i] = Item{
			ID:          uuid.New(),
			ProductID:   p.ID,
			ProductName: p.Name,
			SKU:         p.SKU,
			Image:       p.Image,
			UnitPrice:   p.Price,
			Quantity:    reqItem.Quantity,
			LineTotal:   p.Price.Mul(qty).Round(2),
		}
		lines[i] = PriceLine{UnitPrice: p.Price, Quantity: reqItem.Quantity}
	}

	subtotal := decimal.Zero
	for _, line := range items {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	// Coupon discount wins over the caller-provided one. A caller discount is
	// clamped at the subtotal so amount-type discounts cannot drive figures
	// negative downstream.
	var (
		couponID   *uuid.UUID
		couponCode string
		discount   decimal.Decimal
	)
	if req.CouponCode != "" {
		d, err := s.coupons.Evaluate(ctx, req.CouponCode, subtotal, req.ShippingFee)
		if err != nil {
			return nil, errors.Wrap(err, "evaluate coupon")
		}
		id := d.CouponID
		couponID = &id
		couponCode = d.Code
		discount = d.Amount
	} else {
		discount = decimal.Min(req.Discount, subtotal)
		if discount.IsNegative() {
			discount = decimal.Zero
		}
	}

	totals := Price(PriceParams{
		Lines:          lines,
		ShippingFee:    req.ShippingFee,
		TaxRate:        s.cfg.TaxRate,
		DiscountAmount: discount,
	})

	customerID, err := s.customers.Resolve(ctx, req.CustomerID, req.Contact)
	if err != nil {
		return nil, err
	}

	methods, err := s.payments.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list payment methods")
	}
	storeMethod, err := payment.SelectActive(methods)
	if err != nil {
		return nil, err
	}

	paymentStatus := req.PaymentMethod.InitialStatus()

	// Commit, regenerating numbers on a persistence-level collision.
	for attempt := 0; attempt < commitAttempts; attempt++ {
		ord := &Order{
			ID:                uuid.New(),
			OrderNumber:       NewOrderNumber(),
			CustomerID:        customerID,
			Subtotal:          totals.Subtotal,
			TaxAmount:         totals.Tax,
			ShippingFee:       req.ShippingFee.Round(2),
			Discount:          totals.Discount,
			TotalAmount:       totals.Total,
			FulfillmentStatus: FulfillmentPending,
			PaymentStatus:     paymentStatus,
			CouponID:          couponID,
			CouponCode:        couponCode,
			ShippingAddress:   req.ShippingAddress,
			BillingAddress:    req.BillingAddress,
			Notes:             req.Notes,
			IPAddress:         req.IPAddress,
			UserAgent:         req.UserAgent,
			Country:           req.Country,
			CreatedAt:         s.now(),
		}
		for i := range items {
			items[i].OrderID = ord.ID
		}
		txn := &Transaction{
			ID:                uuid.New(),
			TransactionNumber: NewTransactionNumber(),
			OrderID:           ord.ID,
			PaymentMethodID:   &storeMethod.ID,
			Amount:            totals.Total,
			Currency:          s.cfg.Currency,
			PaymentMethod:     req.PaymentMethod,
			PaymentStatus:     paymentStatus,
			CreatedAt:         ord.CreatedAt,
		}

		err = s.committer.Commit(ctx, ord, items, txn)
		if err == nil {
			return &CreateOrderResult{
				OrderID:     ord.ID,
				OrderNumber: ord.OrderNumber,
				TotalAmount: ord.TotalAmount,
			}, nil
		}
		if !errors.Is(err, ErrNumberConflict) {
			return nil, err
		}
		zctx.From(ctx).Warn("Order number collision, retrying commit",
			zap.String("order_number", ord.OrderNumber),
			zap.Int("attempt", attempt+1),
		)
	}

	zctx.From(ctx).Error("Order commit retries exhausted", zap.Error(err))
	return nil, ErrCommitRetriesSpent
}
