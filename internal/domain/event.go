package domain

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// OrderEvent is a single row in the append-only order audit log: placement,
// payment-session attachment, payment confirmation, and admin status changes
// each append one. TraceID/SpanID are the W3C ids of the OpenTelemetry span
// active when the event was written, so a row can be joined directly with
// the corresponding trace.
type OrderEvent struct {
	OrderID   string
	Status    OrderStatus
	Note      string
	TraceID   string
	SpanID    string
	CreatedAt time.Time
}

// NewOrderEvent builds an event stamped with the trace/span ids of the span
// active in ctx. If the context carries no active span (e.g. in unit tests)
// both ids are left empty.
func NewOrderEvent(ctx context.Context, orderID string, status OrderStatus, note string) *OrderEvent {
	ev := &OrderEvent{
		OrderID:   orderID,
		Status:    status,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		ev.TraceID = sc.TraceID().String()
		ev.SpanID = sc.SpanID().String()
	}
	return ev
}
