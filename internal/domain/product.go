package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a flour variety sold by the mill, priced per kilogram.
// Products are created and edited only through the admin surface; every
// other consumer treats them as read-only.
type Product struct {
	ID         string
	Name       string
	Slug       string
	PricePerKg decimal.Decimal
	Image      string
	CreatedAt  time.Time
}
