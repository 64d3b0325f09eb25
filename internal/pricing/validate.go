package pricing

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keraflour/storefront/internal/domain"
)

// MinimumCardAmount is the processor-imposed floor for card payments.
// Cash-on-delivery has no such floor, so the rule applies to card only.
var MinimumCardAmount = decimal.NewFromInt(50)

// Validation failures. Each maps to a distinct user-facing message and is
// surfaced before any network or storage side effect happens.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrMinimumCardAmount = errors.New("minimum order amount for card payment is 50")
	ErrIncompleteAddress = errors.New("required address is incomplete")
	ErrSlotRequired      = errors.New("a valid slot date and time must be selected")
)

// ValidateCheckout runs the checkout validation rules in order and returns
// the first failure:
//
//  1. empty cart,
//  2. card payment below the minimum amount,
//  3. incomplete address for the selected add-on,
//  4. missing or past slot.
//
// now supplies the clock for the past-date check on the slot.
func ValidateCheckout(
	lines []domain.CartLine,
	addOn domain.AddOnSelection,
	slot domain.Slot,
	method domain.PaymentMethod,
	now time.Time,
) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}

	if method == domain.PaymentStripe {
		if FinalTotal(lines, addOn).LessThan(MinimumCardAmount) {
			return ErrMinimumCardAmount
		}
	}

	if !addOn.AddressesComplete() {
		return ErrIncompleteAddress
	}

	if !slotValid(slot, now) {
		return ErrSlotRequired
	}

	return nil
}

// slotValid requires a non-zero date that is today or later, and a non-blank
// time string. Dates compare at day granularity in UTC.
func slotValid(slot domain.Slot, now time.Time) bool {
	if slot.Date.IsZero() || strings.TrimSpace(slot.Time) == "" {
		return false
	}
	today := now.UTC().Truncate(24 * time.Hour)
	return !slot.Date.UTC().Truncate(24 * time.Hour).Before(today)
}
