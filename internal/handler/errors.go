package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/commercekit/backoffice/internal/domain/coupon"
	"github.com/commercekit/backoffice/internal/domain/customer"
	"github.com/commercekit/backoffice/internal/domain/order"
	"github.com/commercekit/backoffice/internal/domain/payment"
	"github.com/commercekit/backoffice/internal/domain/product"
)

// writeError emits a JSON error body {code, message} with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeDomainError maps a checkout error to its HTTP status. Lookup failures
// are 404, cart problems are 422, everything unclassified is a 500 with the
// detail kept out of the response body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound  *order.ProductNotFoundError
		badQty    *order.InvalidQuantityError
		noStock   *order.InsufficientStockError
		badType   *coupon.UnsupportedTypeError
		badMethod *payment.UnknownMethodError
	)

	switch {
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrMissingShipping),
		errors.Is(err, customer.ErrMissingContact):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.As(err, &badMethod), errors.As(err, &badQty):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.As(err, &notFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.As(err, &noStock),
		errors.As(err, &badType),
		errors.Is(err, coupon.ErrInactive),
		errors.Is(err, coupon.ErrNotYetValid),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrUsageLimitReached):
		writeError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		zctx.From(r.Context()).Error("Checkout failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
