package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/keraflour/storefront/internal/auth"
	"github.com/keraflour/storefront/internal/httpx/middlewares"
)

// NewRouter wires the storefront routes. The public surface is the product
// list and the auth endpoints; everything touching a cart or an order
// requires a bearer token, and the admin surface additionally requires the
// admin role.
func NewRouter(handler *Handler, maker auth.Maker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.Trace)

	authenticate := middlewares.Authenticate(maker)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", handler.Login)
		r.With(authenticate).Get("/me", handler.Me)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/sync-user", handler.SyncUser)

		r.Get("/products", handler.ListProducts)
		r.Group(func(r chi.Router) {
			r.Use(authenticate, middlewares.RequireAdmin)
			r.Post("/products", handler.CreateProduct)
			r.Put("/products/{slug}", handler.UpdateProduct)
			r.Delete("/products/{slug}", handler.DeleteProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Get("/cart", handler.GetCart)
			r.Post("/cart/items", handler.AddCartItem)
			r.Delete("/cart/items/{productId}", handler.RemoveCartItem)
			r.Delete("/cart", handler.ClearCart)

			r.Post("/orders", handler.CreateOrder)
			r.Get("/orders/my", handler.ListMyOrders)
			r.Get("/orders/{id}", handler.GetOrder)

			r.Post("/payments/stripe-checkout", handler.StripeCheckout)
			r.Get("/payments/stripe-session/{sessionId}", handler.StripeSession)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate, middlewares.RequireAdmin)
			r.Get("/orders/all", handler.ListAllOrders)
			r.Put("/orders/{id}/status", handler.UpdateOrderStatus)
		})
	})

	return r
}
