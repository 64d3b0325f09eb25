package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/payments"
	"github.com/keraflour/storefront/internal/store"
)

// Step is a single unit of work in a checkout submission. Each step must
// have a compensating action to undo its effects when a later step fails.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// runSteps executes the steps sequentially. If a step fails, every
// previously successful step is compensated in LIFO order and the step's
// error is returned.
func runSteps(ctx context.Context, steps []Step) error {
	var successful []Step

	for _, step := range steps {
		slog.InfoContext(ctx, "executing checkout step", "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.ErrorContext(ctx, "checkout step failed, rolling back",
				"step", step.Name(), "error", err)
			rollback(ctx, successful)
			return err
		}
		successful = append(successful, step)
	}
	return nil
}

func rollback(ctx context.Context, steps []Step) {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating checkout step", "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate checkout step",
				"step", step.Name(), "error", err)
		}
	}
}

// --- placeOrderStep ---

// placeOrderStep persists the pending order snapshot and writes the
// placement event. Compensation cancels the order.
type placeOrderStep struct {
	orders store.OrderRepository
	events store.OrderEventRepository // nil-safe: audit skipped if nil
	order  *domain.Order
}

func (s *placeOrderStep) Name() string { return "place_order" }

func (s *placeOrderStep) Execute(ctx context.Context) error {
	if err := s.orders.CreateOrder(ctx, s.order); err != nil {
		return fmt.Errorf("checkout: persist order: %w", err)
	}
	s.appendEvent(ctx, domain.OrderPending, "order placed")
	return nil
}

func (s *placeOrderStep) Compensate(ctx context.Context) error {
	if err := s.orders.UpdateOrderStatus(ctx, s.order.ID, domain.OrderCanceled); err != nil {
		return fmt.Errorf("checkout: cancel order %q: %w", s.order.ID, err)
	}
	s.appendEvent(ctx, domain.OrderCanceled, "payment session could not be created")
	return nil
}

func (s *placeOrderStep) appendEvent(ctx context.Context, status domain.OrderStatus, note string) {
	if s.events == nil {
		return
	}
	ev := domain.NewOrderEvent(ctx, s.order.ID, status, note)
	if err := s.events.AppendOrderEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "failed to append order event",
			"order_id", s.order.ID, "error", err)
	}
}

// --- paymentSessionStep ---

// paymentSessionStep opens the processor checkout session and attaches its
// id to the order. It is always the last step, so it needs no compensation
// of its own.
type paymentSessionStep struct {
	gateway payments.Gateway
	orders  store.OrderRepository
	order   *domain.Order
	session *payments.Session
}

func (s *paymentSessionStep) Name() string { return "create_payment_session" }

func (s *paymentSessionStep) Execute(ctx context.Context) error {
	sess, err := s.gateway.CreateSession(ctx, s.order)
	if err != nil {
		return fmt.Errorf("checkout: create payment session: %w", err)
	}
	if err := s.orders.AttachSession(ctx, s.order.ID, sess.ID); err != nil {
		return fmt.Errorf("checkout: attach session %q: %w", sess.ID, err)
	}
	s.order.StripeSessionID = sess.ID
	s.session = sess
	return nil
}

func (s *paymentSessionStep) Compensate(ctx context.Context) error {
	// Nothing to undo: the processor session expires on its own and the
	// order cancellation is handled by placeOrderStep's compensation.
	return nil
}
