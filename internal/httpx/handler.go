package httpx

import (
	"github.com/keraflour/storefront/internal/auth"
	"github.com/keraflour/storefront/internal/cart"
	"github.com/keraflour/storefront/internal/catalog"
	"github.com/keraflour/storefront/internal/checkout"
	"github.com/keraflour/storefront/internal/store"
)

// Handler handles incoming HTTP requests for the storefront. Every
// dependency is injected as a service or port so the full surface can be
// exercised in tests without the real processor or Redis.
type Handler struct {
	catalog      *catalog.Service
	carts        *cart.Service
	orchestrator *checkout.Orchestrator
	confirmer    *checkout.Confirmer
	auth         *auth.Service
	orders       store.OrderRepository
	events       store.OrderEventRepository // nil-safe

	// adminReadOnly disables catalog mutations for demo deployments.
	adminReadOnly bool
}

func NewHandler(
	catalogSvc *catalog.Service,
	carts *cart.Service,
	orchestrator *checkout.Orchestrator,
	confirmer *checkout.Confirmer,
	authSvc *auth.Service,
	orders store.OrderRepository,
	events store.OrderEventRepository,
	adminReadOnly bool,
) *Handler {
	return &Handler{
		catalog:       catalogSvc,
		carts:         carts,
		orchestrator:  orchestrator,
		confirmer:     confirmer,
		auth:          authSvc,
		orders:        orders,
		events:        events,
		adminReadOnly: adminReadOnly,
	}
}
