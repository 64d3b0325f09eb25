package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod selects how an order is settled.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentStripe PaymentMethod = "stripe"
)

// OrderStatus is the fulfilment lifecycle of a placed order.
// pending → confirmed → delivered, or → canceled at any point before
// delivery. Transitions happen only through the admin surface (and through
// compensation when a payment session cannot be created).
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderDelivered OrderStatus = "delivered"
	OrderCanceled  OrderStatus = "canceled"
)

// PaymentStatus tracks settlement independently of fulfilment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// OrderItem is a snapshot of a cart line at checkout time. It is decoupled
// from the live Product so later price edits never alter a placed order.
type OrderItem struct {
	ProductID string
	Name      string
	Qty       decimal.Decimal
	Price     decimal.Decimal
}

// Subtotal is price-per-kg times quantity in kg.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(i.Qty)
}

// Slot is the customer-chosen fulfilment date and time-of-day.
type Slot struct {
	Date time.Time
	Time string
}

// Order is an immutable snapshot created once at checkout. Only Status and
// PaymentStatus mutate afterwards.
type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	AddOn           AddOnKind
	AddOnCharge     decimal.Decimal
	PickupAddress   *Address
	DeliveryAddress *Address
	Slot            Slot
	PaymentMethod   PaymentMethod
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	StripeSessionID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidStatusTransition reports whether an admin may move an order from one
// fulfilment status to another.
func ValidStatusTransition(from, to OrderStatus) bool {
	switch from {
	case OrderPending:
		return to == OrderConfirmed || to == OrderCanceled
	case OrderConfirmed:
		return to == OrderDelivered || to == OrderCanceled
	default:
		return false
	}
}
