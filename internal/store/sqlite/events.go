package sqlite

import (
	"context"
	"fmt"

	"github.com/keraflour/storefront/internal/domain"
)

// AppendOrderEvent inserts a new audit-log row. The table is append-only:
// rows are never updated or deleted.
func (s *Store) AppendOrderEvent(ctx context.Context, ev *domain.OrderEvent) error {
	const q = `
		INSERT INTO order_events (order_id, status, note, trace_id, span_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, q,
		ev.OrderID, string(ev.Status), ev.Note, ev.TraceID, ev.SpanID, formatTime(ev.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append order event for %q: %w", ev.OrderID, err)
	}
	return nil
}

func (s *Store) ListOrderEvents(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	const q = `
		SELECT order_id, status, note, trace_id, span_id, created_at
		FROM   order_events
		WHERE  order_id = ?
		ORDER  BY created_at, id`

	rows, err := s.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list order events for %q: %w", orderID, err)
	}
	defer rows.Close()

	var events []domain.OrderEvent
	for rows.Next() {
		var (
			ev        domain.OrderEvent
			status    string
			createdAt string
		)
		if err := rows.Scan(&ev.OrderID, &status, &ev.Note, &ev.TraceID, &ev.SpanID, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan order event: %w", err)
		}
		ev.Status = domain.OrderStatus(status)
		if ev.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
