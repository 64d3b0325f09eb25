// Package checkout orchestrates an order attempt: validate the cart and
// form state, snapshot the order, and branch on payment method: COD places
// the order directly, card opens a processor checkout session. Failures
// leave no partial state behind; the user simply resubmits.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/payments"
	"github.com/keraflour/storefront/internal/pricing"
	"github.com/keraflour/storefront/internal/store"
)

// Request is one user-initiated checkout submission.
type Request struct {
	AddOn         domain.AddOnSelection
	Slot          domain.Slot
	PaymentMethod domain.PaymentMethod
}

// Result reports the outcome of a successful submission. RedirectURL is
// set only for card payments and points at the processor-hosted checkout.
type Result struct {
	Order       *domain.Order
	RedirectURL string
}

// Orchestrator runs checkout submissions. All dependencies are ports, so
// tests can exercise the full flow against fakes or an in-memory store.
type Orchestrator struct {
	carts   store.CartRepository
	orders  store.OrderRepository
	events  store.OrderEventRepository
	gateway payments.Gateway
	now     func() time.Time
}

func NewOrchestrator(
	carts store.CartRepository,
	orders store.OrderRepository,
	events store.OrderEventRepository,
	gateway payments.Gateway,
) *Orchestrator {
	return &Orchestrator{
		carts:   carts,
		orders:  orders,
		events:  events,
		gateway: gateway,
		now:     time.Now,
	}
}

// Submit validates and executes one checkout attempt. Validation failures
// return before any side effect; after validation, exactly one
// order-creation (and for card, one session-creation) happens per call.
func (o *Orchestrator) Submit(ctx context.Context, userID string, req Request) (*Result, error) {
	lines, err := o.carts.CartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checkout: load cart: %w", err)
	}

	if err := pricing.ValidateCheckout(lines, req.AddOn, req.Slot, req.PaymentMethod, o.now()); err != nil {
		return nil, err
	}

	order := o.buildOrder(userID, lines, req)

	steps := []Step{
		&placeOrderStep{orders: o.orders, events: o.events, order: order},
	}
	if req.PaymentMethod == domain.PaymentStripe {
		steps = append(steps, &paymentSessionStep{gateway: o.gateway, orders: o.orders, order: order})
	}

	if err := runSteps(ctx, steps); err != nil {
		return nil, err
	}

	result := &Result{Order: order}
	if req.PaymentMethod == domain.PaymentStripe {
		// Cart survives until the payment is confirmed: an abandoned
		// session must not lose the customer's cart.
		result.RedirectURL = steps[len(steps)-1].(*paymentSessionStep).session.URL
		slog.InfoContext(ctx, "payment session created",
			"order_id", order.ID, "session_id", order.StripeSessionID)
		return result, nil
	}

	// COD: the order is placed, the cart's lifecycle ends here.
	if err := o.carts.ClearCart(ctx, userID); err != nil {
		// The order exists; a stale cart is recoverable. Log and move on.
		slog.ErrorContext(ctx, "failed to clear cart after COD placement",
			"order_id", order.ID, "error", err)
	}
	slog.InfoContext(ctx, "order placed",
		"order_id", order.ID, "user_id", userID, "total", order.TotalAmount.String())
	return result, nil
}

// buildOrder snapshots the cart lines and form state into an immutable
// order. Prices are copied so later catalog edits never change this order.
func (o *Orchestrator) buildOrder(userID string, lines []domain.CartLine, req Request) *domain.Order {
	items := make([]domain.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Qty:       line.QuantityKg,
			Price:     line.PricePerKg,
		}
	}

	now := o.now().UTC()
	return &domain.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		AddOn:           req.AddOn.Kind,
		AddOnCharge:     req.AddOn.Charge(),
		PickupAddress:   req.AddOn.Pickup,
		DeliveryAddress: req.AddOn.Delivery,
		Slot:            req.Slot,
		PaymentMethod:   req.PaymentMethod,
		TotalAmount:     pricing.FinalTotal(lines, req.AddOn),
		Status:          domain.OrderPending,
		PaymentStatus:   domain.PaymentStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
