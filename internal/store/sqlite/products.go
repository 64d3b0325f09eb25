package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/store"
)

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const q = `
		SELECT id, name, slug, price_per_kg, image, created_at
		FROM   products
		ORDER  BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
		SELECT id, name, slug, price_per_kg, image, created_at
		FROM   products
		WHERE  id = ?`
	return s.getProduct(ctx, q, id)
}

func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	const q = `
		SELECT id, name, slug, price_per_kg, image, created_at
		FROM   products
		WHERE  slug = ?`
	return s.getProduct(ctx, q, slug)
}

func (s *Store) getProduct(ctx context.Context, q string, arg any) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, q, arg))
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get product: %w", err)
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	const q = `
		INSERT INTO products (id, name, slug, price_per_kg, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, q,
		p.ID, p.Name, p.Slug, p.PricePerKg.String(), p.Image, formatTime(p.CreatedAt),
	)
	if err := mapConstraintErr(err); err != nil {
		if err == store.ErrDuplicate {
			return err
		}
		return fmt.Errorf("sqlite: create product %q: %w", p.Slug, err)
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *domain.Product) error {
	const q = `
		UPDATE products
		SET    name = ?, price_per_kg = ?, image = ?
		WHERE  slug = ?`

	res, err := s.db.ExecContext(ctx, q, p.Name, p.PricePerKg.String(), p.Image, p.Slug)
	if err != nil {
		return fmt.Errorf("sqlite: update product %q: %w", p.Slug, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, slug string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("sqlite: delete product %q: %w", slug, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*domain.Product, error) {
	var (
		p         domain.Product
		price     string
		createdAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &price, &p.Image, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if p.PricePerKg, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("sqlite: parse price %q: %w", price, err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}
