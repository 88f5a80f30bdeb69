package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/meal"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MealHandler keeps one meal builder per open meal screen.
type MealHandler struct {
	catalog Catalog
	cart    *cart.Engine
	timeout time.Duration
	log     *zap.Logger

	mu     sync.Mutex
	builds map[uuid.UUID]*meal.Builder
}

func NewMealHandler(catalog Catalog, engine *cart.Engine, timeout time.Duration, log *zap.Logger) *MealHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MealHandler{
		catalog: catalog,
		cart:    engine,
		timeout: timeout,
		log:     log,
		builds:  make(map[uuid.UUID]*meal.Builder),
	}
}

type ComponentDTO struct {
	Category   string                   `json:"category"`
	Required   int                      `json:"required"`
	Selected   int                      `json:"selected"`
	Candidates []domain.ProductSnapshot `json:"candidates"`
}

type BuildResponse struct {
	ID              uuid.UUID                 `json:"id"`
	MealID          string                    `json:"meal_id"`
	Name            domain.LocalizedText      `json:"name"`
	Components      []ComponentDTO            `json:"components"`
	Selection       []domain.SelectedCategory `json:"selection"`
	SelectedTotal   decimal.Decimal           `json:"selected_total"`
	TotalPrice      decimal.Decimal           `json:"total_price"`
	Currency        string                    `json:"currency"`
	Summary         string                    `json:"summary"`
	Valid           bool                      `json:"valid"`
	ValidationError string                    `json:"validation_error,omitempty"`
}

type SelectionRequestDTO struct {
	Category  string `json:"category"`
	ProductID string `json:"product_id"`
	Delta     int    `json:"delta,omitempty"`
}

type AddMealToCartRequestDTO struct {
	Quantity int `json:"quantity"`
}

// POST /api/v1/meals/{id}/builds
func (h *MealHandler) CreateBuild(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	def, err := h.catalog.Product(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}
	if !def.IsMeal() {
		respondError(w, http.StatusBadRequest, "not_a_meal", "product is not a meal")
		return
	}

	products, err := h.catalog.Products(ctx)
	if err != nil {
		handleError(w, err)
		return
	}

	id := uuid.New()
	b := meal.NewBuilder(def, meal.NewCatalog(products), h.log)

	h.mu.Lock()
	h.builds[id] = b
	h.mu.Unlock()

	respondJSON(w, http.StatusCreated, buildResponse(id, b))
}

// GET /api/v1/meals/builds/{build}
func (h *MealHandler) GetBuild(w http.ResponseWriter, r *http.Request) {
	id, b, ok := h.build(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, buildResponse(id, b))
}

// DELETE /api/v1/meals/builds/{build}
func (h *MealHandler) DiscardBuild(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.build(w, r)
	if !ok {
		return
	}
	h.discard(id)
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/meals/builds/{build}/selections
func (h *MealHandler) AddSelection(w http.ResponseWriter, r *http.Request) {
	id, b, ok := h.build(w, r)
	if !ok {
		return
	}

	var req SelectionRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := b.AddProduct(req.Category, domain.Product{ID: req.ProductID}); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buildResponse(id, b))
}

// PATCH /api/v1/meals/builds/{build}/selections
func (h *MealHandler) ChangeSelection(w http.ResponseWriter, r *http.Request) {
	id, b, ok := h.build(w, r)
	if !ok {
		return
	}

	var req SelectionRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Category == "" || req.ProductID == "" || req.Delta == 0 {
		respondError(w, http.StatusBadRequest, "invalid_selection", "category, product_id and a non-zero delta are required")
		return
	}

	b.ChangeQuantity(req.Category, req.ProductID, req.Delta)
	respondJSON(w, http.StatusOK, buildResponse(id, b))
}

// DELETE /api/v1/meals/builds/{build}/selections/{category}/{product_id}
func (h *MealHandler) RemoveSelection(w http.ResponseWriter, r *http.Request) {
	id, b, ok := h.build(w, r)
	if !ok {
		return
	}

	b.RemoveProduct(chi.URLParam(r, "category"), chi.URLParam(r, "product_id"))
	respondJSON(w, http.StatusOK, buildResponse(id, b))
}

// POST /api/v1/meals/builds/{build}/cart
func (h *MealHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, b, ok := h.build(w, r)
	if !ok {
		return
	}

	req := AddMealToCartRequestDTO{Quantity: 1}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}
	if req.Quantity <= 0 || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	entry, err := b.BuildCartEntry(req.Quantity)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := h.cart.AddItem(entry, req.Quantity); err != nil {
		handleError(w, err)
		return
	}

	h.discard(id)
	respondJSON(w, http.StatusCreated, h.cart.Snapshot())
}

func (h *MealHandler) build(w http.ResponseWriter, r *http.Request) (uuid.UUID, *meal.Builder, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "build"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_build_id", "build id must be a UUID")
		return uuid.Nil, nil, false
	}

	h.mu.Lock()
	b, ok := h.builds[id]
	h.mu.Unlock()
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "meal build not found")
		return uuid.Nil, nil, false
	}
	return id, b, true
}

func (h *MealHandler) discard(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.builds, id)
}

func buildResponse(id uuid.UUID, b *meal.Builder) BuildResponse {
	def := b.Definition()

	components := make([]ComponentDTO, 0, len(def.Components))
	for _, comp := range def.Components {
		components = append(components, ComponentDTO{
			Category:   comp.Category,
			Required:   comp.Quantity,
			Selected:   b.CategoryTotal(comp.Category),
			Candidates: b.CandidateProducts(comp),
		})
	}

	selection := b.SelectedCategories()
	if selection == nil {
		selection = []domain.SelectedCategory{}
	}

	resp := BuildResponse{
		ID:            id,
		MealID:        def.ID,
		Name:          def.Name,
		Components:    components,
		Selection:     selection,
		SelectedTotal: b.SelectedTotal(),
		TotalPrice:    b.TotalPrice(),
		Currency:      domain.Currency,
		Summary:       b.Summary(),
		Valid:         true,
	}
	if err := b.Validate(); err != nil {
		resp.Valid = false
		resp.ValidationError = err.Error()
	}
	return resp
}
