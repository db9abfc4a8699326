package payment

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Method enumerates the payment methods a checkout may select.
type Method string

const (
	MethodCreditCard     Method = "CREDIT_CARD"
	MethodDebitCard      Method = "DEBIT_CARD"
	MethodPayPal         Method = "PAYPAL"
	MethodBankTransfer   Method = "BANK_TRANSFER"
	MethodCashOnDelivery Method = "CASH_ON_DELIVERY"
)

// Status enumerates settlement states of an order's payment.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// UnknownMethodError indicates a payment method value outside the enum.
type UnknownMethodError struct {
	Value string
}

func (e *UnknownMethodError) Error() string {
	return "unknown payment method: " + e.Value
}

// ParseMethod narrows a raw string to a Method, rejecting unknown values
// instead of coercing them.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodCreditCard, MethodDebitCard, MethodPayPal, MethodBankTransfer, MethodCashOnDelivery:
		return m, nil
	default:
		return "", &UnknownMethodError{Value: s}
	}
}

// InitialStatus returns the payment status a freshly committed order starts
// in. No gateway is integrated; card-like methods are treated as settled
// immediately while pay-on-delivery stays pending until fulfillment.
func (m Method) InitialStatus() Status {
	if m == MethodCashOnDelivery {
		return StatusPending
	}
	return StatusCompleted
}

// StoreMethod is a payment method configured for the store, selectable as
// the processor attached to a transaction.
type StoreMethod struct {
	ID        uuid.UUID
	Provider  string
	Status    string
	Default   bool
	CreatedAt time.Time
}

// ErrNoMethods is returned when the store has no payment methods configured.
var ErrNoMethods = errors.New("no store payment methods configured")

// Repository lists the store's configured payment methods.
type Repository interface {
	List(ctx context.Context) ([]StoreMethod, error)
}

// SelectActive picks the store payment method to attach to a transaction:
// the default ACTIVE one when present, otherwise the first listed.
func SelectActive(methods []StoreMethod) (*StoreMethod, error) {
	if len(methods) == 0 {
		return nil, ErrNoMethods
	}
	for i := range methods {
		if methods[i].Default && methods[i].Status == "ACTIVE" {
			return &methods[i], nil
		}
	}
	return &methods[0], nil
}
