package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/store"
)

const orderColumns = `
	id, user_id, items, add_on, add_on_charge,
	COALESCE(pickup_address, ''), COALESCE(delivery_address, ''),
	slot_date, slot_time, payment_method, total_amount,
	status, payment_status, stripe_session_id, created_at, updated_at`

func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("sqlite: marshal order items: %w", err)
	}
	pickup, err := marshalAddress(o.PickupAddress)
	if err != nil {
		return err
	}
	delivery, err := marshalAddress(o.DeliveryAddress)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO orders (
			id, user_id, items, add_on, add_on_charge,
			pickup_address, delivery_address,
			slot_date, slot_time, payment_method, total_amount,
			status, payment_status, stripe_session_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, q,
		o.ID, o.UserID, string(items), string(o.AddOn), o.AddOnCharge.String(),
		nullableJSON(pickup), nullableJSON(delivery),
		formatTime(o.Slot.Date), o.Slot.Time, string(o.PaymentMethod), o.TotalAmount.String(),
		string(o.Status), string(o.PaymentStatus), o.StripeSessionID,
		formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create order %q: %w", o.ID, err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	o, err := scanOrder(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %q: %w", id, err)
	}
	return o, nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id`
	return s.listOrders(ctx, q, userID)
}

func (s *Store) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id`
	return s.listOrders(ctx, q)
}

func (s *Store) listOrders(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	const q = `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, string(status), formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("sqlite: update order status %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AttachSession(ctx context.Context, orderID, sessionID string) error {
	const q = `UPDATE orders SET stripe_session_id = ?, updated_at = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, sessionID, formatTime(time.Now()), orderID)
	if err != nil {
		return fmt.Errorf("sqlite: attach session to order %q: %w", orderID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// MarkPaidBySession transitions the order for sessionID to paid/confirmed.
// The read and the conditional write run in one transaction on a single
// connection, so only the first caller observes the transition; everyone
// after gets transitioned=false.
func (s *Store) MarkPaidBySession(ctx context.Context, sessionID string) (*domain.Order, bool, error) {
	var (
		order        *domain.Order
		transitioned bool
	)

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		q := `SELECT ` + orderColumns + ` FROM orders WHERE stripe_session_id = ?`
		o, err := scanOrder(tx.QueryRowContext(ctx, q, sessionID))
		if err == sql.ErrNoRows {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("sqlite: order for session %q: %w", sessionID, err)
		}

		if o.PaymentStatus == domain.PaymentStatusPaid {
			order = o
			return nil
		}

		now := time.Now()
		_, err = tx.ExecContext(ctx, `
			UPDATE orders
			SET    payment_status = ?, status = ?, updated_at = ?
			WHERE  id = ?`,
			string(domain.PaymentStatusPaid), string(domain.OrderConfirmed), formatTime(now), o.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: mark order %q paid: %w", o.ID, err)
		}

		o.PaymentStatus = domain.PaymentStatusPaid
		o.Status = domain.OrderConfirmed
		o.UpdatedAt = now.UTC()
		order = o
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return order, transitioned, nil
}

func marshalAddress(a *domain.Address) (string, error) {
	if a == nil {
		return "", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("sqlite: marshal address: %w", err)
	}
	return string(b), nil
}

func unmarshalAddress(s string) (*domain.Address, error) {
	if s == "" {
		return nil, nil
	}
	var a domain.Address
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal address: %w", err)
	}
	return &a, nil
}

func scanOrder(row scanner) (*domain.Order, error) {
	var (
		o                              domain.Order
		items, pickup, delivery        string
		addOn, method, status, payment string
		addOnCharge, total             string
		slotDate, createdAt, updatedAt string
	)
	err := row.Scan(
		&o.ID, &o.UserID, &items, &addOn, &addOnCharge,
		&pickup, &delivery,
		&slotDate, &o.Slot.Time, &method, &total,
		&status, &payment, &o.StripeSessionID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal order items: %w", err)
	}
	if o.PickupAddress, err = unmarshalAddress(pickup); err != nil {
		return nil, err
	}
	if o.DeliveryAddress, err = unmarshalAddress(delivery); err != nil {
		return nil, err
	}
	if o.AddOnCharge, err = decimal.NewFromString(addOnCharge); err != nil {
		return nil, fmt.Errorf("sqlite: parse add-on charge %q: %w", addOnCharge, err)
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("sqlite: parse total %q: %w", total, err)
	}
	if o.Slot.Date, err = parseTime(slotDate); err != nil {
		return nil, err
	}
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	o.AddOn = domain.AddOnKind(addOn)
	o.PaymentMethod = domain.PaymentMethod(method)
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(payment)
	return &o, nil
}
