// Package handler exposes the checkout core over HTTP. Requests are decoded
// from JSON, domain errors are mapped to typed JSON error responses, and
// response bodies are encoded with jx.
package handler

import (
	"net/http"

	"go.opentelemetry.io/otel/metric"

	"github.com/commercekit/backoffice/internal/domain/order"
	"github.com/commercekit/backoffice/internal/domain/product"
)

// Handler serves the API routes, delegating business logic to the order
// service and product repository.
type Handler struct {
	products     product.Repository
	orders       *order.Service
	ordersPlaced metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain dependencies.
// ordersPlaced may be a no-op counter in tests.
func NewHandler(products product.Repository, orders *order.Service, ordersPlaced metric.Int64Counter) *Handler {
	return &Handler{
		products:     products,
		orders:       orders,
		ordersPlaced: ordersPlaced,
	}
}

// Routes registers the API endpoints on mux under /api.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("POST /api/orders", h.CreateOrder)
}
