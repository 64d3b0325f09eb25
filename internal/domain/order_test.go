package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCanceled, true},
		{OrderPending, OrderDelivered, false},
		{OrderConfirmed, OrderDelivered, true},
		{OrderConfirmed, OrderCanceled, true},
		{OrderConfirmed, OrderPending, false},
		{OrderDelivered, OrderCanceled, false},
		{OrderCanceled, OrderConfirmed, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.ok, ValidStatusTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{
		Qty:   decimal.RequireFromString("1.5"),
		Price: decimal.RequireFromString("35.5"),
	}
	assert.Equal(t, "53.25", item.Subtotal().String())
}

func TestAddOnSelectionCharge(t *testing.T) {
	addr := Address{Place: "Mill Rd", City: "Kochi", State: "KL", Pincode: "682001"}

	assert.True(t, NoAddOn().Charge().IsZero())
	assert.Equal(t, "40", PickupAddOn(addr).Charge().String())
	assert.Equal(t, "40", DeliveryAddOn(addr).Charge().String())
	assert.Equal(t, "60", BothAddOn(addr, addr).Charge().String())
}
