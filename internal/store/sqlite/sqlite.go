// Package sqlite provides the SQLite-backed implementation of the store
// ports.
//
// WAL mode is enabled on Open so readers never block writers; the payment
// confirmation flow writes while list endpoints may be reading.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/keraflour/storefront/internal/store"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO so
	// the server builds and runs in minimal containers.
	_ "modernc.org/sqlite"
)

// schema is the DDL applied once on startup. Idempotent via IF NOT EXISTS.
// Money and kilogram quantities are stored as decimal TEXT, timestamps as
// RFC3339 TEXT (the SQLite idiom).
const schema = `
CREATE TABLE IF NOT EXISTS products (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    -- Human-readable identifier used by the admin edit/delete routes.
    slug          TEXT NOT NULL UNIQUE,
    price_per_kg  TEXT NOT NULL,
    image         TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cart_lines (
    user_id       TEXT NOT NULL,
    product_id    TEXT NOT NULL,
    name          TEXT NOT NULL,
    image         TEXT NOT NULL DEFAULT '',
    price_per_kg  TEXT NOT NULL,
    quantity_kg   TEXT NOT NULL,
    added_at      TEXT NOT NULL,
    -- One line per product per user: adding again merges quantities.
    PRIMARY KEY (user_id, product_id)
);

CREATE TABLE IF NOT EXISTS orders (
    id                 TEXT PRIMARY KEY,
    user_id            TEXT NOT NULL,
    -- JSON snapshot of the cart lines at checkout time.
    items              TEXT NOT NULL,
    add_on             TEXT NOT NULL DEFAULT 'none',
    add_on_charge      TEXT NOT NULL DEFAULT '0',
    pickup_address     TEXT,
    delivery_address   TEXT,
    slot_date          TEXT NOT NULL,
    slot_time          TEXT NOT NULL,
    payment_method     TEXT NOT NULL,
    total_amount       TEXT NOT NULL,
    status             TEXT NOT NULL,
    payment_status     TEXT NOT NULL,
    stripe_session_id  TEXT NOT NULL DEFAULT '',
    created_at         TEXT NOT NULL,
    updated_at         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_orders_session ON orders(stripe_session_id);

CREATE TABLE IF NOT EXISTS users (
    id             TEXT PRIMARY KEY,
    email          TEXT NOT NULL UNIQUE,
    name           TEXT NOT NULL DEFAULT '',
    password_hash  TEXT NOT NULL DEFAULT '',
    role           TEXT NOT NULL DEFAULT 'user',
    created_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS order_events (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id    TEXT NOT NULL,
    status      TEXT NOT NULL,
    note        TEXT NOT NULL DEFAULT '',
    -- W3C trace/span ids of the span active when the event was written.
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_events_order_id ON order_events(order_id, created_at);
`

// Store implements every repository port in package store on one SQLite
// database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// "sqlite", not "sqlite3": modernc driver name.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// inTx runs fn inside a transaction, committing on nil and rolling back on
// error.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// mapConstraintErr converts the driver's UNIQUE violation into the portable
// store.ErrDuplicate.
func mapConstraintErr(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrDuplicate
	}
	return err
}

// nullableJSON returns nil for empty strings so SQLite stores NULL instead
// of an empty TEXT blob.
func nullableJSON(s string) any {
	if s == "" {
		return nil
	}
	return s
}
