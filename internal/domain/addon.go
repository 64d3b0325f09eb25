package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AddOnKind discriminates the optional pickup/delivery service attached to
// an order.
type AddOnKind string

const (
	AddOnNone     AddOnKind = "none"
	AddOnPickup   AddOnKind = "pickup"
	AddOnDelivery AddOnKind = "delivery"
	AddOnBoth     AddOnKind = "both"
)

// Fixed surcharges per add-on kind, in the same currency unit as product
// prices. "both" is cheaper than two singles on purpose.
var (
	pickupCharge   = decimal.NewFromInt(40)
	deliveryCharge = decimal.NewFromInt(40)
	bothCharge     = decimal.NewFromInt(60)
)

// Address is a fulfilment address. It is complete only when every field is
// non-blank.
type Address struct {
	Place   string
	City    string
	State   string
	Pincode string
}

// Complete reports whether all four fields carry non-whitespace content.
func (a Address) Complete() bool {
	for _, f := range []string{a.Place, a.City, a.State, a.Pincode} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// AddOnSelection is a tagged variant over {none, pickup, delivery, both}.
// The address pointers are populated only for the kinds that need them;
// use the constructors below rather than building the struct by hand.
type AddOnSelection struct {
	Kind     AddOnKind
	Pickup   *Address
	Delivery *Address
}

func NoAddOn() AddOnSelection {
	return AddOnSelection{Kind: AddOnNone}
}

func PickupAddOn(addr Address) AddOnSelection {
	return AddOnSelection{Kind: AddOnPickup, Pickup: &addr}
}

func DeliveryAddOn(addr Address) AddOnSelection {
	return AddOnSelection{Kind: AddOnDelivery, Delivery: &addr}
}

func BothAddOn(pickup, delivery Address) AddOnSelection {
	return AddOnSelection{Kind: AddOnBoth, Pickup: &pickup, Delivery: &delivery}
}

// Charge returns the surcharge for the selection: 40 for a single mode,
// 60 for both, 0 for none or an unknown kind.
func (s AddOnSelection) Charge() decimal.Decimal {
	switch s.Kind {
	case AddOnPickup:
		return pickupCharge
	case AddOnDelivery:
		return deliveryCharge
	case AddOnBoth:
		return bothCharge
	default:
		return decimal.Zero
	}
}

// AddressesComplete reports whether every address the kind requires is
// present and complete. A selection of "none" is always complete.
func (s AddOnSelection) AddressesComplete() bool {
	switch s.Kind {
	case AddOnPickup:
		return s.Pickup != nil && s.Pickup.Complete()
	case AddOnDelivery:
		return s.Delivery != nil && s.Delivery.Complete()
	case AddOnBoth:
		return s.Pickup != nil && s.Pickup.Complete() &&
			s.Delivery != nil && s.Delivery.Complete()
	default:
		return true
	}
}
