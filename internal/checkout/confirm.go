package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/payments"
	"github.com/keraflour/storefront/internal/pkg/cache"
	"github.com/keraflour/storefront/internal/store"
)

// confirmMarkerTTL bounds how long the fast-path marker lives in Redis.
// The database transition remains the source of truth after expiry.
const confirmMarkerTTL = 24 * time.Hour

// Confirmer completes card payments: it polls the processor session and,
// the first time a session reports paid, marks the order paid and clears
// the cart. The success page may poll repeatedly (reloads, back/forward
// navigation), so the whole flow is idempotent.
type Confirmer struct {
	gateway payments.Gateway
	orders  store.OrderRepository
	carts   store.CartRepository
	events  store.OrderEventRepository // nil-safe
	cache   cache.Cache
}

func NewConfirmer(
	gateway payments.Gateway,
	orders store.OrderRepository,
	carts store.CartRepository,
	events store.OrderEventRepository,
	c cache.Cache,
) *Confirmer {
	return &Confirmer{
		gateway: gateway,
		orders:  orders,
		carts:   carts,
		events:  events,
		cache:   c,
	}
}

// Confirm fetches the session status and applies the paid side effects at
// most once. The session is always returned so the success page can render
// status and amount regardless of who cleared the cart first.
func (c *Confirmer) Confirm(ctx context.Context, sessionID string) (*payments.Session, error) {
	sess, err := c.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("checkout: fetch session %q: %w", sessionID, err)
	}

	if sess.PaymentStatus != payments.StatusPaid {
		return sess, nil
	}

	// Fast-path guard: a Redis SETNX marker short-circuits repeated polls
	// without touching the database. Redis being down is not fatal; the
	// conditional update below is idempotent on its own.
	if c.cache != nil {
		claimed, err := c.cache.SetNX(ctx,
			c.cache.GenerateKey("payment-confirmed", sessionID), "1", confirmMarkerTTL)
		if err != nil {
			slog.ErrorContext(ctx, "confirmation marker unavailable, falling back to store",
				"session_id", sessionID, "error", err)
		} else if !claimed {
			return sess, nil
		}
	}

	order, transitioned, err := c.orders.MarkPaidBySession(ctx, sessionID)
	if err == store.ErrNotFound {
		// Paid session with no matching order: surface it, nothing to clear.
		slog.ErrorContext(ctx, "paid session has no order", "session_id", sessionID)
		return sess, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkout: mark paid for session %q: %w", sessionID, err)
	}
	if !transitioned {
		return sess, nil
	}

	// Clear before returning: the cart-clear must happen-before the
	// confirmation the caller shows.
	if err := c.carts.ClearCart(ctx, order.UserID); err != nil {
		slog.ErrorContext(ctx, "failed to clear cart after payment",
			"order_id", order.ID, "error", err)
	}

	if c.events != nil {
		ev := domain.NewOrderEvent(ctx, order.ID, domain.OrderConfirmed, "payment confirmed")
		if err := c.events.AppendOrderEvent(ctx, ev); err != nil {
			slog.ErrorContext(ctx, "failed to append order event",
				"order_id", order.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "payment confirmed",
		"order_id", order.ID, "session_id", sessionID, "amount_minor", sess.AmountTotal)
	return sess, nil
}
