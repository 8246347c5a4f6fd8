package handler

import (
	"net/http"
)

type sizeDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type productDTO struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Prices map[string]string `json:"prices"`
}

type catalogResponse struct {
	Sizes    []sizeDTO    `json:"sizes"`
	Products []productDTO `json:"products"`
}

// Catalog returns the full price table so the storefront can render the
// product grid and size selectors.
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	sizes := make([]sizeDTO, 0, len(h.catalog.Sizes()))
	for _, id := range h.catalog.Sizes() {
		sizes = append(sizes, sizeDTO{ID: id, Label: h.catalog.LabelFor(id)})
	}

	products := make([]productDTO, 0, len(h.catalog.Products()))
	for _, p := range h.catalog.Products() {
		prices := make(map[string]string, len(p.Prices))
		for sizeID, price := range p.Prices {
			prices[sizeID] = price.StringFixed(2)
		}
		products = append(products, productDTO{ID: p.ID, Name: p.Name, Prices: prices})
	}

	respondJSON(w, r, http.StatusOK, catalogResponse{Sizes: sizes, Products: products})
}
