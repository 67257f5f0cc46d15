package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Category is the closed set of merchandise categories the store sells.
type Category string

const (
	CategoryTshirt  Category = "tshirt"
	CategorySticker Category = "sticker"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTshirt, CategorySticker:
		return true
	}
	return false
}

// Product represents a catalog entry. Entries are seeded once and read-only
// afterwards, except for the InStock flag.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	Category    Category
	Sizes       []string
	InStock     bool
}

// HasSizes reports whether the product is ordered in a specific size.
func (p Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	// ListInStock returns all products currently available for purchase.
	ListInStock(ctx context.Context) ([]Product, error)
	// GetByID returns a single product or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Product, error)
	// ReplaceAll atomically replaces the catalog. Used by the seeder.
	ReplaceAll(ctx context.Context, products []Product) error
}
