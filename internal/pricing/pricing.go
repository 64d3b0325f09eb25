// Package pricing is the pure computation core of checkout: line and cart
// totals, add-on surcharges, and the pre-submission validation rules. It
// performs no I/O and holds no state, so every function here is trivially
// testable and safe to call on every request.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/keraflour/storefront/internal/domain"
)

// LineTotal is price-per-kg times quantity in kg for one cart line.
func LineTotal(line domain.CartLine) decimal.Decimal {
	return line.PricePerKg.Mul(line.QuantityKg)
}

// CartTotal sums the line totals. Decimal arithmetic keeps the result exact
// and independent of insertion order.
func CartTotal(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(LineTotal(line))
	}
	return total
}

// FinalTotal is the cart total plus the selected add-on's surcharge.
func FinalTotal(lines []domain.CartLine, addOn domain.AddOnSelection) decimal.Decimal {
	return CartTotal(lines).Add(addOn.Charge())
}
