package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

const maxQuantity = 99

type CartHandler struct {
	cart    *cart.Engine
	catalog Catalog
	timeout time.Duration
}

func NewCartHandler(engine *cart.Engine, catalog Catalog, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:    engine,
		catalog: catalog,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Direction cart.Direction `json:"direction"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity <= 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	def, err := h.catalog.Product(ctx, req.ProductID)
	if err != nil {
		handleError(w, err)
		return
	}
	if def.IsMeal() {
		respondError(w, http.StatusBadRequest, "meal_requires_build", "meal products are added through a meal build")
		return
	}

	if err := h.cart.AddItem(domain.NewSimpleEntry(def.Product), req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.cart.Snapshot())
}

// PATCH /api/v1/cart/items/{key}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	key, ok := entryKey(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Direction != cart.Inc && req.Direction != cart.Dec {
		respondError(w, http.StatusBadRequest, "invalid_direction", "direction must be inc or dec")
		return
	}

	if err := h.cart.SetItemQuantity(key, req.Direction); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

// DELETE /api/v1/cart/items/{key}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key, ok := entryKey(w, r)
	if !ok {
		return
	}

	if err := h.cart.RemoveItem(key); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	respondJSON(w, http.StatusOK, h.cart.Snapshot())
}

// meal keys contain '#', which clients send escaped
func entryKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil || key == "" {
		respondError(w, http.StatusBadRequest, "invalid_key", "cart entry key is required")
		return "", false
	}
	return key, true
}
