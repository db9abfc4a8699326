package handler

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/commercekit/backoffice/internal/domain/customer"
	"github.com/commercekit/backoffice/internal/domain/order"
	"github.com/commercekit/backoffice/internal/domain/payment"
)

// createOrderRequest mirrors the checkout request contract of the HTTP API.
type createOrderRequest struct {
	CustomerID  string          `json:"customerId"`
	Customer    *guestContact   `json:"customer"`
	Items       []orderItemReq  `json:"items"`
	Shipping    *order.Address  `json:"shippingAddress"`
	Billing     *order.Address  `json:"billingAddress"`
	Payment     string          `json:"paymentMethod"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Discount    decimal.Decimal `json:"discount"`
	CouponCode  string          `json:"couponCode"`
	Notes       string          `json:"notes"`
	IPAddress   string          `json:"ipAddress"`
	UserAgent   string          `json:"userAgent"`
	Country     string          `json:"country"`
}

type guestContact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type orderItemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrder handles POST /api/orders: the full checkout pipeline.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Shipping == nil {
		writeError(w, http.StatusBadRequest, order.ErrMissingShipping.Error())
		return
	}

	method, err := payment.ParseMethod(req.Payment)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var customerID uuid.UUID
	if req.CustomerID != "" {
		customerID, err = uuid.Parse(req.CustomerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid customerId")
			return
		}
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid productId: "+it.ProductID)
			return
		}
		items[i] = order.ItemRequest{ProductID: pid, Quantity: it.Quantity}
	}

	var contact *customer.Contact
	if req.Customer != nil {
		contact = &customer.Contact{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		}
	}

	result, err := h.orders.Create(r.Context(), order.CreateOrderRequest{
		CustomerID:      customerID,
		Contact:         contact,
		Items:           items,
		ShippingAddress: *req.Shipping,
		BillingAddress:  req.Billing,
		PaymentMethod:   method,
		ShippingFee:     req.ShippingFee,
		Discount:        req.Discount,
		CouponCode:      req.CouponCode,
		Notes:           req.Notes,
		IPAddress:       firstNonEmpty(req.IPAddress, remoteIP(r)),
		UserAgent:       firstNonEmpty(req.UserAgent, r.UserAgent()),
		Country:         req.Country,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	h.ordersPlaced.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("payment_method", string(method)),
	))
	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("order.number", result.OrderNumber),
	)

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(result.OrderID.String())
	e.FieldStart("orderNumber")
	e.Str(result.OrderNumber)
	e.FieldStart("totalAmount")
	e.Num(jx.Num(result.TotalAmount.String()))
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(e.Bytes())
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
