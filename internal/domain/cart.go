package domain

import "github.com/shopspring/decimal"

// CartLine is one product in a user's cart. The price and display fields are
// copied from the product at add time so the cart can render without a join;
// the authoritative price is still the product's until checkout snapshots it.
type CartLine struct {
	ProductID  string
	Name       string
	Image      string
	PricePerKg decimal.Decimal
	QuantityKg decimal.Decimal
}

// Cart is the ordered set of lines held server-side for one user.
// Lifecycle: created empty on first use, cleared after a cash-on-delivery
// order is placed or after a card payment is confirmed.
type Cart struct {
	UserID string
	Lines  []CartLine
}
