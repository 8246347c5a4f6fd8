// Package checkout validates checkout submissions and completes orders
// against a cart store. No real payment processing happens here: a valid
// submission captures the cart into a receipt and clears the store.
package checkout

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/ovenlight/pizzeria-cart/internal/domain/cart"
)

// Supported payment methods.
const (
	PaymentCard = "card"
	PaymentCash = "cash"
)

var (
	// ErrEmptyCart is returned when checkout is attempted on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrUnknownPaymentMethod is returned for payment methods other than
	// card and cash.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// MissingFieldError indicates a required contact field was left blank.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required field %s is missing", e.Field)
}

// InvalidCardError indicates a card detail field failed validation.
type InvalidCardError struct {
	Field string
}

func (e *InvalidCardError) Error() string {
	return fmt.Sprintf("card field %s is invalid", e.Field)
}

// CardDetails carries the card fields of a checkout submission. Values may
// arrive raw; they are normalized before validation.
type CardDetails struct {
	Number string
	Expiry string
	CVV    string
}

// Request is a checkout submission.
type Request struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	Address       string
	PaymentMethod string
	Card          CardDetails
}

// Receipt captures a completed order: the line items and totals at the
// moment of checkout, before the cart was cleared.
type Receipt struct {
	OrderID       string
	Items         []cart.LineItem
	Totals        cart.Totals
	PaymentMethod string
	PlacedAt      time.Time
}

var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

// Service completes checkouts.
type Service struct {
	now func() time.Time
}

// NewService creates a checkout Service.
func NewService() *Service {
	return &Service{now: time.Now}
}

// Complete validates req, and on success captures the store's current items
// and totals into a Receipt and clears the store. Validation failures are
// returned as typed errors; the cart is untouched unless everything passed.
func (s *Service) Complete(ctx context.Context, store *cart.Store, req Request) (*Receipt, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	items := store.Snapshot()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	totals := store.Totals()

	if err := store.Clear(ctx); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}

	return &Receipt{
		OrderID:       uuid.New().String(),
		Items:         items,
		Totals:        totals,
		PaymentMethod: req.PaymentMethod,
		PlacedAt:      s.now(),
	}, nil
}

// Validate checks the contact fields, the payment method, and, for card
// payments only, the card details. All five contact fields are required.
func Validate(req Request) error {
	required := []struct {
		field, value string
	}{
		{"firstName", req.FirstName},
		{"lastName", req.LastName},
		{"email", req.Email},
		{"phone", req.Phone},
		{"address", req.Address},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Field: f.field}
		}
	}

	switch req.PaymentMethod {
	case PaymentCash:
		return nil
	case PaymentCard:
		return validateCard(req.Card)
	default:
		return ErrUnknownPaymentMethod
	}
}

func validateCard(card CardDetails) error {
	number := digitsOnly(NormalizeCardNumber(card.Number))
	if len(number) != 16 {
		return &InvalidCardError{Field: "cardNumber"}
	}
	if !expiryPattern.MatchString(NormalizeExpiry(card.Expiry)) {
		return &InvalidCardError{Field: "expiryDate"}
	}
	if len(NormalizeCVV(card.CVV)) != 3 {
		return &InvalidCardError{Field: "cvv"}
	}
	return nil
}
