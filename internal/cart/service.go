// Package cart implements the server-backed cart: one cart per
// authenticated user, shared across devices, with the merge and lifecycle
// invariants enforced here rather than in any client.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/store"
)

var (
	// ErrUnauthenticated rejects cart mutation without a user identity.
	ErrUnauthenticated = errors.New("cart: login required")
	// ErrInvalidQuantity rejects non-positive kilogram quantities.
	ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")
	// ErrProductNotFound rejects adds for unknown products.
	ErrProductNotFound = errors.New("cart: product not found")
)

// Service owns cart reads and mutations.
type Service struct {
	products store.ProductRepository
	carts    store.CartRepository
}

func NewService(products store.ProductRepository, carts store.CartRepository) *Service {
	return &Service{products: products, carts: carts}
}

// Get loads the cart for the given user. A user with no lines gets an
// empty cart, not an error.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	lines, err := s.carts.CartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cart: load for %q: %w", userID, err)
	}
	return &domain.Cart{UserID: userID, Lines: lines}, nil
}

// Add puts quantityKg of the product into the user's cart. If the product
// is already in the cart the quantities merge into a single line.
func (s *Service) Add(ctx context.Context, userID, productID string, quantityKg decimal.Decimal) (*domain.Cart, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if quantityKg.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetProductByID(ctx, productID)
	if err == store.ErrNotFound {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cart: resolve product %q: %w", productID, err)
	}

	line := domain.CartLine{
		ProductID:  product.ID,
		Name:       product.Name,
		Image:      product.Image,
		PricePerKg: product.PricePerKg,
		QuantityKg: quantityKg,
	}
	if err := s.carts.UpsertCartLine(ctx, userID, line); err != nil {
		return nil, fmt.Errorf("cart: add %q: %w", productID, err)
	}

	slog.InfoContext(ctx, "cart line added",
		"user_id", userID, "product_id", productID, "quantity_kg", quantityKg.String())
	return s.Get(ctx, userID)
}

// Remove deletes the line for productID. Removing a product that is not in
// the cart is a no-op.
func (s *Service) Remove(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if err := s.carts.RemoveCartLine(ctx, userID, productID); err != nil {
		return nil, fmt.Errorf("cart: remove %q: %w", productID, err)
	}
	return s.Get(ctx, userID)
}

// Clear empties the cart. Called by the checkout flow after a COD order is
// placed and by the payment-confirmation flow after a card payment settles.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	return s.carts.ClearCart(ctx, userID)
}
