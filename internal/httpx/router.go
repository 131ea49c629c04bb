package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kdiomande/rewards-platform/internal/auth"
	"github.com/kdiomande/rewards-platform/internal/httpx/middlewares"
)

// NewRouter wires every route. Everything except the health probe sits
// behind bearer authentication.
func NewRouter(h *Handler, validator *auth.Validator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticate(validator))

		r.Get("/rewards", h.ListRewards)
		r.Post("/rewards/{id}/favorite", h.ToggleFavorite)
		r.Get("/favorites", h.ListFavorites)

		r.Post("/cart", h.AddToCart)
		r.Get("/cart", h.ViewCart)
		r.Delete("/cart/{rewardID}", h.RemoveFromCart)

		r.Post("/orders", h.PlaceOrder)
		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{id}", h.GetOrder)
		r.Put("/orders/{id}/validate", h.ValidateOrder)
		r.Put("/orders/{id}/cancel", h.CancelOrder)
		r.Delete("/orders/{id}", h.DeleteOrder)

		r.Get("/stock", h.ListStock)
		r.Post("/stock", h.Restock)
		r.Delete("/stock/{id}", h.DeleteStock)

		r.Get("/notifications", h.ListNotifications)
	})

	return r
}
