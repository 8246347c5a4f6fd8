package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ovenlight/pizzeria-cart/internal/domain/cart"
	"github.com/ovenlight/pizzeria-cart/internal/domain/catalog"
)

// lineItemDTO is the wire shape of one cart row. Money travels as 2-dp
// decimal strings; floats never cross the API.
type lineItemDTO struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

type totalsDTO struct {
	Subtotal  string `json:"subtotal"`
	Tax       string `json:"tax"`
	Total     string `json:"total"`
	ItemCount int    `json:"itemCount"`
}

// cartResponse is returned by every cart read and mutation: the UI
// re-renders the item list, the totals display, and the badge from it, and
// shows message when non-empty.
type cartResponse struct {
	Items   []lineItemDTO `json:"items"`
	Totals  totalsDTO     `json:"totals"`
	Message string        `json:"message,omitempty"`
}

func toLineItemDTOs(items []cart.LineItem) []lineItemDTO {
	out := make([]lineItemDTO, len(items))
	for i, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		out[i] = lineItemDTO{
			Name:      item.Name,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			LineTotal: item.UnitPrice.Mul(qty).StringFixed(2),
		}
	}
	return out
}

func toTotalsDTO(t cart.Totals) totalsDTO {
	return totalsDTO{
		Subtotal:  t.Subtotal.StringFixed(2),
		Tax:       t.Tax.StringFixed(2),
		Total:     t.Total.StringFixed(2),
		ItemCount: t.ItemCount,
	}
}

func toCartResponse(ch cart.Change) cartResponse {
	return cartResponse{
		Items:   toLineItemDTOs(ch.Items),
		Totals:  toTotalsDTO(ch.Totals),
		Message: ch.Message,
	}
}

// GetCart returns the current cart snapshot and totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(w, r)
	if err != nil {
		internalError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, cartResponse{
		Items:  toLineItemDTOs(store.Snapshot()),
		Totals: toTotalsDTO(store.Totals()),
	})
}

type addItemRequest struct {
	Product string `json:"product"`
	Size    string `json:"size"`
}

// AddItem resolves the product and size against the catalog and adds one
// unit to the cart. Unknown product or size ids yield 422.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	price, err := h.catalog.PriceFor(req.Product, req.Size)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, r, http.StatusUnprocessableEntity, "unknown product or size")
			return
		}
		internalError(w, r, err)
		return
	}
	baseName, err := h.catalog.DisplayName(req.Product)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, "unknown product or size")
		return
	}

	store, err := h.store(w, r)
	if err != nil {
		internalError(w, r, err)
		return
	}

	ch, err := store.AddItem(r.Context(), baseName, price, h.catalog.LabelFor(req.Size))
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toCartResponse(ch))
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

// ChangeQuantity adjusts the quantity of the line at the path index.
// Out-of-range indices are a deliberate no-op and still return 200 with
// the unchanged cart.
func (h *Handler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	var req changeQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	store, err := h.store(w, r)
	if err != nil {
		internalError(w, r, err)
		return
	}

	ch, err := store.ChangeQuantity(r.Context(), index, req.Delta)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toCartResponse(ch))
}

// RemoveItem deletes the line at the path index; out-of-range is a no-op.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	store, err := h.store(w, r)
	if err != nil {
		internalError(w, r, err)
		return
	}

	ch, err := store.RemoveItem(r.Context(), index)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toCartResponse(ch))
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store, err := h.store(w, r)
	if err != nil {
		internalError(w, r, err)
		return
	}

	if err := store.Clear(r.Context()); err != nil {
		internalError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, cartResponse{
		Items:  toLineItemDTOs(store.Snapshot()),
		Totals: toTotalsDTO(store.Totals()),
	})
}

// pathIndex parses the {index} path segment. A non-integer index is a
// malformed request, not a stale one, so it gets 400 instead of the
// defensive no-op.
func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid item index")
		return 0, false
	}
	return index, true
}
