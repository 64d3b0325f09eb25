// Package store defines the persistence ports the services depend on.
// The concrete SQLite implementation lives in store/sqlite; tests may swap
// in fakes because everything upstream depends on these interfaces only.
package store

import (
	"context"
	"errors"

	"github.com/keraflour/storefront/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when a unique constraint (product slug, user
// email) would be violated.
var ErrDuplicate = errors.New("store: duplicate")

// ProductRepository owns the catalog.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, slug string) error
}

// CartRepository owns the server-backed cart, keyed by user id.
type CartRepository interface {
	CartLines(ctx context.Context, userID string) ([]domain.CartLine, error)
	// UpsertCartLine inserts the line or, if the user already has this
	// product, adds the quantity onto the existing line.
	UpsertCartLine(ctx context.Context, userID string, line domain.CartLine) error
	// RemoveCartLine deletes the matching line; removing an absent line is
	// not an error.
	RemoveCartLine(ctx context.Context, userID, productID string) error
	ClearCart(ctx context.Context, userID string) error
}

// OrderRepository owns placed orders and their status transitions.
type OrderRepository interface {
	CreateOrder(ctx context.Context, o *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
	// AttachSession records the payment session created for a card order.
	AttachSession(ctx context.Context, orderID, sessionID string) error
	// MarkPaidBySession flips the order for sessionID to paid/confirmed and
	// reports whether this call performed the transition. Repeated calls for
	// the same session return false, which is what makes payment
	// confirmation idempotent.
	MarkPaidBySession(ctx context.Context, sessionID string) (*domain.Order, bool, error)
}

// UserRepository owns accounts.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) error
	// UpsertUserByEmail creates the user or refreshes the name of an
	// existing account, returning the stored row either way. Used by the
	// identity-provider sync flow.
	UpsertUserByEmail(ctx context.Context, u *domain.User) (*domain.User, error)
}

// OrderEventRepository is the append-only audit log. Implementations must
// treat entries as immutable.
type OrderEventRepository interface {
	AppendOrderEvent(ctx context.Context, ev *domain.OrderEvent) error
	ListOrderEvents(ctx context.Context, orderID string) ([]domain.OrderEvent, error)
}
