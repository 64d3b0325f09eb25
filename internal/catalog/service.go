// Package catalog owns the product surface: public listing (cached in
// Redis) and the admin CRUD operations that invalidate the cache.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/pkg/cache"
	"github.com/keraflour/storefront/internal/store"
)

const listCacheTTL = 5 * time.Minute

// Service wraps the product repository with slug generation and a
// read-through list cache.
type Service struct {
	products store.ProductRepository
	cache    cache.Cache // nil disables caching
}

func NewService(products store.ProductRepository, c cache.Cache) *Service {
	return &Service{products: products, cache: c}
}

// cachedProduct is the cache wire format. Price travels as its decimal
// string so the roundtrip is exact.
type cachedProduct struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	PricePerKg string `json:"price_per_kg"`
	Image      string `json:"image"`
	CreatedAt  string `json:"created_at"`
}

// List returns the catalog, served from Redis when possible. Cache errors
// degrade to a direct read, never to a failure.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, s.listKey()); err == nil && raw != "" {
			if products, err := decodeProducts(raw); err == nil {
				return products, nil
			}
		}
	}

	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := encodeProducts(products); err == nil {
			if err := s.cache.Set(ctx, s.listKey(), raw, listCacheTTL); err != nil {
				slog.DebugContext(ctx, "product list cache write failed", "error", err)
			}
		}
	}
	return products, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.products.GetProductBySlug(ctx, slug)
}

// Create inserts a new product with a slug derived from its name. On a
// slug collision a short random suffix is appended once.
func (s *Service) Create(ctx context.Context, name string, pricePerKg decimal.Decimal, image string) (*domain.Product, error) {
	p := &domain.Product{
		ID:         uuid.NewString(),
		Name:       name,
		Slug:       Slugify(name),
		PricePerKg: pricePerKg,
		Image:      image,
		CreatedAt:  time.Now().UTC(),
	}

	err := s.products.CreateProduct(ctx, p)
	if err == store.ErrDuplicate {
		p.Slug = fmt.Sprintf("%s-%s", p.Slug, p.ID[:8])
		err = s.products.CreateProduct(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return p, nil
}

// Update edits name/price/image in place; the slug is stable for the life
// of the product so admin bookmarks keep working.
func (s *Service) Update(ctx context.Context, slug, name string, pricePerKg decimal.Decimal, image string) (*domain.Product, error) {
	p, err := s.products.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if name != "" {
		p.Name = name
	}
	if !pricePerKg.IsZero() {
		p.PricePerKg = pricePerKg
	}
	if image != "" {
		p.Image = image
	}

	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, slug string) error {
	if err := s.products.DeleteProduct(ctx, slug); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) listKey() string {
	return s.cache.GenerateKey("products", "list")
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.listKey()); err != nil {
		slog.DebugContext(ctx, "product list cache invalidation failed", "error", err)
	}
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses every non-alphanumeric run
// into a single hyphen.
func Slugify(name string) string {
	slug := slugUnsafe.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func encodeProducts(products []domain.Product) (string, error) {
	out := make([]cachedProduct, len(products))
	for i, p := range products {
		out[i] = cachedProduct{
			ID:         p.ID,
			Name:       p.Name,
			Slug:       p.Slug,
			PricePerKg: p.PricePerKg.String(),
			Image:      p.Image,
			CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeProducts(raw string) ([]domain.Product, error) {
	var cached []cachedProduct
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, err
	}

	products := make([]domain.Product, len(cached))
	for i, c := range cached {
		price, err := decimal.NewFromString(c.PricePerKg)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, c.CreatedAt)
		if err != nil {
			return nil, err
		}
		products[i] = domain.Product{
			ID:         c.ID,
			Name:       c.Name,
			Slug:       c.Slug,
			PricePerKg: price,
			Image:      c.Image,
			CreatedAt:  createdAt,
		}
	}
	return products, nil
}
