package httpx

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/pricing"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// --- catalog ---

type ProductRequest struct {
	Name       string  `json:"name"`
	PricePerKg float64 `json:"pricePerKg"`
	Image      string  `json:"image"`
}

type ProductResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	PricePerKg float64 `json:"pricePerKg"`
	Image      string  `json:"image"`
	CreatedAt  string  `json:"createdAt"`
}

func mapProduct(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		Slug:       p.Slug,
		PricePerKg: p.PricePerKg.InexactFloat64(),
		Image:      p.Image,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapProducts(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = mapProduct(&products[i])
	}
	return out
}

// --- cart ---

type AddCartItemRequest struct {
	ProductID  string  `json:"productId"`
	QuantityKg float64 `json:"quantityKg"`
}

type CartLineResponse struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Image      string  `json:"image"`
	PricePerKg float64 `json:"pricePerKg"`
	QuantityKg float64 `json:"quantityKg"`
	LineTotal  float64 `json:"lineTotal"`
}

type CartResponse struct {
	Items       []CartLineResponse `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
}

func mapCart(c *domain.Cart) CartResponse {
	items := make([]CartLineResponse, len(c.Lines))
	for i, line := range c.Lines {
		items[i] = CartLineResponse{
			ProductID:  line.ProductID,
			Name:       line.Name,
			Image:      line.Image,
			PricePerKg: line.PricePerKg.InexactFloat64(),
			QuantityKg: line.QuantityKg.InexactFloat64(),
			LineTotal:  pricing.LineTotal(line).InexactFloat64(),
		}
	}
	return CartResponse{
		Items:       items,
		TotalAmount: pricing.CartTotal(c.Lines).InexactFloat64(),
	}
}

// --- checkout / orders ---

type AddressDTO struct {
	Place   string `json:"place"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

func (a *AddressDTO) toDomain() domain.Address {
	return domain.Address{Place: a.Place, City: a.City, State: a.State, Pincode: a.Pincode}
}

// CheckoutRequest is the body of both POST /api/orders (COD) and
// POST /api/payments/stripe-checkout (card). Items and totals are NOT
// accepted from the client: the server-held cart is authoritative.
type CheckoutRequest struct {
	AddOn           string      `json:"addOn"`
	PickupAddress   *AddressDTO `json:"pickupAddress,omitempty"`
	DeliveryAddress *AddressDTO `json:"deliveryAddress,omitempty"`
	SlotDate        string      `json:"slotDate"`
	SlotTime        string      `json:"slotTime"`
}

// buildSelection converts the wire add-on fields into the tagged variant.
// A kind whose address is missing yields a selection that fails address
// validation downstream, so the handler never has to reject it itself.
func (r *CheckoutRequest) buildSelection() domain.AddOnSelection {
	switch domain.AddOnKind(r.AddOn) {
	case domain.AddOnPickup:
		if r.PickupAddress == nil {
			return domain.AddOnSelection{Kind: domain.AddOnPickup}
		}
		return domain.PickupAddOn(r.PickupAddress.toDomain())
	case domain.AddOnDelivery:
		if r.DeliveryAddress == nil {
			return domain.AddOnSelection{Kind: domain.AddOnDelivery}
		}
		return domain.DeliveryAddOn(r.DeliveryAddress.toDomain())
	case domain.AddOnBoth:
		sel := domain.AddOnSelection{Kind: domain.AddOnBoth}
		if r.PickupAddress != nil {
			a := r.PickupAddress.toDomain()
			sel.Pickup = &a
		}
		if r.DeliveryAddress != nil {
			a := r.DeliveryAddress.toDomain()
			sel.Delivery = &a
		}
		return sel
	default:
		return domain.NoAddOn()
	}
}

// parseSlot accepts a bare date ("2006-01-02") or a full RFC3339 stamp.
func (r *CheckoutRequest) parseSlot() (domain.Slot, error) {
	if r.SlotDate == "" {
		return domain.Slot{Time: r.SlotTime}, nil
	}
	date, err := time.Parse("2006-01-02", r.SlotDate)
	if err != nil {
		date, err = time.Parse(time.RFC3339, r.SlotDate)
		if err != nil {
			return domain.Slot{}, fmt.Errorf("invalid slotDate %q", r.SlotDate)
		}
	}
	return domain.Slot{Date: date.UTC(), Time: r.SlotTime}, nil
}

type OrderItemResponse struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Qty     float64 `json:"qty"`
	Price   float64 `json:"price"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"paymentStatus"`
	PaymentMethod   string              `json:"paymentMethod"`
	AddOn           string              `json:"addOn"`
	AddOnCharge     float64             `json:"addOnCharge"`
	PickupAddress   *AddressDTO         `json:"pickupAddress,omitempty"`
	DeliveryAddress *AddressDTO         `json:"deliveryAddress,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	SlotDate        string              `json:"slotDate"`
	SlotTime        string              `json:"slotTime"`
	TotalAmount     float64             `json:"totalAmount"`
	CreatedAt       string              `json:"createdAt"`
}

func mapOrder(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			Product: it.ProductID,
			Name:    it.Name,
			Qty:     it.Qty.InexactFloat64(),
			Price:   it.Price.InexactFloat64(),
		}
	}
	return OrderResponse{
		ID:              o.ID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		AddOn:           string(o.AddOn),
		AddOnCharge:     o.AddOnCharge.InexactFloat64(),
		PickupAddress:   mapAddress(o.PickupAddress),
		DeliveryAddress: mapAddress(o.DeliveryAddress),
		Items:           items,
		SlotDate:        o.Slot.Date.UTC().Format("2006-01-02"),
		SlotTime:        o.Slot.Time,
		TotalAmount:     o.TotalAmount.InexactFloat64(),
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapAddress(a *domain.Address) *AddressDTO {
	if a == nil {
		return nil
	}
	return &AddressDTO{Place: a.Place, City: a.City, State: a.State, Pincode: a.Pincode}
}

func mapOrders(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = mapOrder(&orders[i])
	}
	return out
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// --- payments ---

type StripeCheckoutResponse struct {
	URL     string `json:"url"`
	OrderID string `json:"orderId"`
}

type StripeSessionResponse struct {
	ID            string `json:"id"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
}

// --- auth ---

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SyncUserRequest struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func mapUser(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)}
}

type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// parsePrice converts a wire float into the decimal the domain uses.
func parsePrice(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
