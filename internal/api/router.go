package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Meals    *MealHandler
	Checkout *CheckoutHandler
}

func NewRouter(h Handlers, log *zap.Logger, timeout time.Duration) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.List)
			r.Get("/{id}", h.Products.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Patch("/items/{key}", h.Cart.UpdateQuantity)
			r.Delete("/items/{key}", h.Cart.RemoveItem)
		})

		r.Route("/meals", func(r chi.Router) {
			r.Post("/{id}/builds", h.Meals.CreateBuild)
			r.Route("/builds/{build}", func(r chi.Router) {
				r.Get("/", h.Meals.GetBuild)
				r.Delete("/", h.Meals.DiscardBuild)
				r.Post("/selections", h.Meals.AddSelection)
				r.Patch("/selections", h.Meals.ChangeSelection)
				r.Delete("/selections/{category}/{product_id}", h.Meals.RemoveSelection)
				r.Post("/cart", h.Meals.AddToCart)
			})
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.Checkout.Start)
			r.Post("/recover", h.Checkout.Recover)
			r.Get("/{id}", h.Checkout.Get)
			r.Patch("/{id}", h.Checkout.UpdateContact)
			r.Post("/{id}/payment-result", h.Checkout.PaymentResult)
		})
	})

	return r
}
