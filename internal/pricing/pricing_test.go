package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keraflour/storefront/internal/domain"
)

func line(price, qty string) domain.CartLine {
	return domain.CartLine{
		PricePerKg: decimal.RequireFromString(price),
		QuantityKg: decimal.RequireFromString(qty),
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(line("20", "2"))
	assert.True(t, got.Equal(decimal.RequireFromString("40")), "got %s", got)

	// Fractional kg built from kg + grams/1000 stays exact.
	got = LineTotal(line("35.5", "1.25"))
	assert.Equal(t, "44.375", got.String())
}

func TestCartTotalIsOrderIndependent(t *testing.T) {
	a := line("20", "2")
	b := line("35.5", "0.75")
	c := line("12", "3.2")

	forward := CartTotal([]domain.CartLine{a, b, c})
	reversed := CartTotal([]domain.CartLine{c, b, a})

	require.True(t, forward.Equal(reversed), "forward %s, reversed %s", forward, reversed)
}

func TestCartTotalEmpty(t *testing.T) {
	assert.True(t, CartTotal(nil).IsZero())
}

func TestFinalTotalAddOnCharges(t *testing.T) {
	lines := []domain.CartLine{line("20", "2")} // cart total 40
	addr := domain.Address{Place: "Mill Rd", City: "Kochi", State: "KL", Pincode: "682001"}

	tests := []struct {
		name  string
		addOn domain.AddOnSelection
		want  string
	}{
		{"none", domain.NoAddOn(), "40"},
		{"pickup", domain.PickupAddOn(addr), "80"},
		{"delivery", domain.DeliveryAddOn(addr), "80"},
		{"both", domain.BothAddOn(addr, addr), "100"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FinalTotal(lines, tc.addOn)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestAddOnChargeAppliedOnce(t *testing.T) {
	lines := []domain.CartLine{line("20", "2")}
	addr := domain.Address{Place: "Mill Rd", City: "Kochi", State: "KL", Pincode: "682001"}
	sel := domain.DeliveryAddOn(addr)

	// Calling FinalTotal repeatedly must not accumulate the surcharge.
	first := FinalTotal(lines, sel)
	second := FinalTotal(lines, sel)
	assert.True(t, first.Equal(second))
	assert.Equal(t, "80", first.String())
}
