package customer

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Resolver maps a checkout request to a customer record.
//
// A supplied customer ID is trusted as-is; ownership checks belong to the
// auth layer upstream. Guest contact info is matched by email first so a
// returning guest never produces a duplicate row.
type Resolver struct {
	repo Repository
	now  func() time.Time
}

// NewResolver creates a Resolver backed by the given Repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo, now: time.Now}
}

// Resolve returns the customer ID to attach to an order. Exactly one of
// customerID or contact must be usable; otherwise ErrMissingContact is
// returned and the checkout cannot proceed.
func (r *Resolver) Resolve(ctx context.Context, customerID uuid.UUID, contact *Contact) (uuid.UUID, error) {
	if customerID != uuid.Nil {
		return customerID, nil
	}
	if contact == nil || contact.Email == "" {
		return uuid.Nil, ErrMissingContact
	}

	email := strings.ToLower(strings.TrimSpace(contact.Email))

	existing, err := r.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return existing.ID, nil
	case !errors.Is(err, ErrNotFound):
		return uuid.Nil, errors.Wrap(err, "find customer by email")
	}

	guest := &Customer{
		ID:         uuid.New(),
		FirstName:  contact.FirstName,
		LastName:   contact.LastName,
		Email:      email,
		Phone:      contact.Phone,
		Role:       RoleGuest,
		Guest:      true,
		TotalSpent: decimal.Zero,
		CreatedAt:  r.now(),
	}
	err = r.repo.CreateGuest(ctx, guest)
	if errors.Is(err, ErrDuplicateEmail) {
		// Lost a race against a concurrent checkout for the same email;
		// the winner's record is the one to reuse.
		existing, ferr := r.repo.FindByEmail(ctx, email)
		if ferr != nil {
			return uuid.Nil, errors.Wrap(ferr, "refetch customer after duplicate email")
		}
		return existing.ID, nil
	}
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "create guest customer")
	}
	return guest.ID, nil
}
