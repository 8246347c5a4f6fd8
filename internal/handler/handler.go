// Package handler exposes the cart engine over HTTP. It owns the cart
// identity cookie and the JSON wire types; all cart semantics live in the
// domain packages.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ovenlight/pizzeria-cart/internal/domain/cart"
	"github.com/ovenlight/pizzeria-cart/internal/domain/catalog"
	"github.com/ovenlight/pizzeria-cart/internal/domain/checkout"
)

// cartCookie identifies the browser's cart across visits.
const cartCookie = "cart_id"

// Handler serves the storefront API.
type Handler struct {
	catalog  *catalog.Catalog
	carts    *cart.Manager
	checkout *checkout.Service
}

// New constructs a Handler with its domain dependencies.
func New(cat *catalog.Catalog, carts *cart.Manager, co *checkout.Service) *Handler {
	return &Handler{
		catalog:  cat,
		carts:    carts,
		checkout: co,
	}
}

// Register attaches all API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", h.Catalog)
	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/items", h.AddItem)
	mux.HandleFunc("PATCH /api/cart/items/{index}", h.ChangeQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{index}", h.RemoveItem)
	mux.HandleFunc("DELETE /api/cart", h.ClearCart)
	mux.HandleFunc("POST /api/checkout", h.Checkout)
}

// store resolves the request's cart store, minting a cart identity cookie
// on first touch.
func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, error) {
	id := ""
	if c, err := r.Cookie(cartCookie); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil {
			id = parsed.String()
		}
	}
	if id == "" {
		id = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     cartCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return h.carts.Store(r.Context(), id)
}

// errorResponse is the wire shape of every API error.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, errorResponse{Code: status, Message: message})
}

// internalError logs err and responds with a bare 500. Persistence
// failures land here: they are reported, never swallowed.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	respondError(w, r, http.StatusInternalServerError, "internal error")
}
