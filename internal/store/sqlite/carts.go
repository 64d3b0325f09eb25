package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/keraflour/storefront/internal/domain"
)

func (s *Store) CartLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	const q = `
		SELECT product_id, name, image, price_per_kg, quantity_kg
		FROM   cart_lines
		WHERE  user_id = ?
		ORDER  BY added_at, product_id`

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: cart lines for %q: %w", userID, err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var (
			line     domain.CartLine
			price    string
			quantity string
		)
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Image, &price, &quantity); err != nil {
			return nil, fmt.Errorf("sqlite: scan cart line: %w", err)
		}
		if line.PricePerKg, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sqlite: parse price %q: %w", price, err)
		}
		if line.QuantityKg, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("sqlite: parse quantity %q: %w", quantity, err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// UpsertCartLine merges duplicate products by summing quantities inside a
// transaction. The decimal sum is computed in Go so the stored quantity
// stays exact.
func (s *Store) UpsertCartLine(ctx context.Context, userID string, line domain.CartLine) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var existing string
		err := tx.QueryRowContext(ctx,
			`SELECT quantity_kg FROM cart_lines WHERE user_id = ? AND product_id = ?`,
			userID, line.ProductID,
		).Scan(&existing)

		switch {
		case err == sql.ErrNoRows:
			_, err := tx.ExecContext(ctx, `
				INSERT INTO cart_lines (user_id, product_id, name, image, price_per_kg, quantity_kg, added_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				userID, line.ProductID, line.Name, line.Image,
				line.PricePerKg.String(), line.QuantityKg.String(), formatTime(time.Now()),
			)
			if err != nil {
				return fmt.Errorf("sqlite: insert cart line: %w", err)
			}
			return nil

		case err != nil:
			return fmt.Errorf("sqlite: read cart line: %w", err)

		default:
			current, err := decimal.NewFromString(existing)
			if err != nil {
				return fmt.Errorf("sqlite: parse quantity %q: %w", existing, err)
			}
			merged := current.Add(line.QuantityKg)
			_, err = tx.ExecContext(ctx, `
				UPDATE cart_lines
				SET    quantity_kg = ?, name = ?, image = ?, price_per_kg = ?
				WHERE  user_id = ? AND product_id = ?`,
				merged.String(), line.Name, line.Image, line.PricePerKg.String(),
				userID, line.ProductID,
			)
			if err != nil {
				return fmt.Errorf("sqlite: merge cart line: %w", err)
			}
			return nil
		}
	})
}

// RemoveCartLine is idempotent: removing an absent line succeeds.
func (s *Store) RemoveCartLine(ctx context.Context, userID, productID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE user_id = ? AND product_id = ?`,
		userID, productID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: remove cart line: %w", err)
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: clear cart for %q: %w", userID, err)
	}
	return nil
}
