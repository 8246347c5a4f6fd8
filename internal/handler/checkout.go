package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/ovenlight/pizzeria-cart/internal/domain/checkout"
)

type cardDTO struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

type checkoutRequest struct {
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Address       string  `json:"address"`
	PaymentMethod string  `json:"paymentMethod"`
	Card          cardDTO `json:"card"`
}

type receiptResponse struct {
	OrderID       string        `json:"orderId"`
	Items         []lineItemDTO `json:"items"`
	Totals        totalsDTO     `json:"totals"`
	PaymentMethod string        `json:"paymentMethod"`
	PlacedAt      time.Time     `json:"placedAt"`
}

// Checkout validates the submission and completes the order, clearing the
// cart on success. Field validation failures map to 422 with the failing
// field named; an empty cart maps to 409.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	store, err := h.store(w, r)
	if err != nil {
		internalError(w, r, err)
		return
	}

	receipt, err := h.checkout.Complete(r.Context(), store, checkout.Request{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		Card: checkout.CardDetails{
			Number: req.Card.Number,
			Expiry: req.Card.Expiry,
			CVV:    req.Card.CVV,
		},
	})
	if err != nil {
		h.checkoutError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, receiptResponse{
		OrderID:       receipt.OrderID,
		Items:         toLineItemDTOs(receipt.Items),
		Totals:        toTotalsDTO(receipt.Totals),
		PaymentMethod: receipt.PaymentMethod,
		PlacedAt:      receipt.PlacedAt,
	})
}

// checkoutError maps checkout domain errors to API responses.
func (h *Handler) checkoutError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *checkout.MissingFieldError
	if errors.As(err, &missing) {
		respondError(w, r, http.StatusUnprocessableEntity, missing.Error())
		return
	}

	var invalidCard *checkout.InvalidCardError
	if errors.As(err, &invalidCard) {
		respondError(w, r, http.StatusUnprocessableEntity, invalidCard.Error())
		return
	}

	if errors.Is(err, checkout.ErrUnknownPaymentMethod) {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if errors.Is(err, checkout.ErrEmptyCart) {
		respondError(w, r, http.StatusConflict, err.Error())
		return
	}

	internalError(w, r, err)
}
