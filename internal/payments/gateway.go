// Package payments brokers card payments through an external,
// processor-hosted checkout session. The storefront never touches card
// data: it creates a session, redirects the customer to the processor's
// URL, and later polls the session for its settlement status.
package payments

import (
	"context"

	"github.com/keraflour/storefront/internal/domain"
)

// Session payment statuses as reported by the processor.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// Session is a processor-hosted checkout transaction. AmountTotal is in
// minor currency units (paise), the processor convention.
type Session struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
}

// Gateway is the port the checkout orchestrator depends on. The HTTP
// adapter in this package talks to the real processor; tests substitute a
// fake.
type Gateway interface {
	// CreateSession opens a checkout session for the order's total and
	// returns the redirect URL the customer must be sent to.
	CreateSession(ctx context.Context, order *domain.Order) (*Session, error)
	// GetSession fetches the current status of an existing session.
	GetSession(ctx context.Context, sessionID string) (*Session, error)
}
