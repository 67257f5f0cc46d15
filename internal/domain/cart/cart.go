// Package cart implements the shopper's in-progress selection state:
// merge-by-key line adds, clamp-to-zero quantity updates, and derived
// totals. The cart is advisory; it is discarded once an order is placed.
package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/flagforge/store-api/internal/domain/product"
)

// Line is one cart entry. Name, price, image, and category are denormalized
// copies taken when the line is added, so later catalog changes do not
// affect an in-progress cart.
type Line struct {
	ProductID    string           `json:"id"`
	Name         string           `json:"name"`
	Price        decimal.Decimal  `json:"price"`
	Image        string           `json:"image"`
	Category     product.Category `json:"category"`
	Quantity     int              `json:"quantity"`
	SelectedSize string           `json:"selectedSize,omitempty"`
	CustomName   string           `json:"customName,omitempty"`
}

// matches reports whether the line has the given merge key. Two adds with
// the same (product, size, personalization) triple are one line.
func (l Line) matches(productID, size, customName string) bool {
	return l.ProductID == productID && l.SelectedSize == size && l.CustomName == customName
}

// Cart holds the current selections. The zero value is an empty cart.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add merges the product into an existing line when the (id, size,
// personalization) key matches, otherwise appends a new line with
// quantity 1. Add always succeeds.
func (c *Cart) Add(p product.Product, size, customName string) {
	for i := range c.Lines {
		if c.Lines[i].matches(p.ID, size, customName) {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, Line{
		ProductID:    p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Image:        p.Image,
		Category:     p.Category,
		Quantity:     1,
		SelectedSize: size,
		CustomName:   customName,
	})
}

// Remove deletes the matching line. Removing an absent line is a no-op.
func (c *Cart) Remove(productID, size, customName string) {
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if !l.matches(productID, size, customName) {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
}

// SetQuantity sets the quantity of the matching line, clamped at zero.
// Lines left at zero quantity are dropped: removal falls out of the
// filter step, it is not a separate code path.
func (c *Cart) SetQuantity(productID string, quantity int, size, customName string) {
	for i := range c.Lines {
		if c.Lines[i].matches(productID, size, customName) {
			c.Lines[i].Quantity = max(0, quantity)
		}
	}
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// TotalItems returns the sum of quantities across all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice returns the cart total in USD. The NPR total is a display
// value derived by the caller, never stored.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Store persists carts by their client-chosen identifier. Carts survive
// page reloads; there is no expiry and no cross-device merge.
type Store interface {
	// Get loads a cart. A missing identifier yields an empty cart.
	Get(ctx context.Context, id string) (*Cart, error)
	// Save writes the cart back under the identifier.
	Save(ctx context.Context, id string, c *Cart) error
	// Delete discards the stored cart.
	Delete(ctx context.Context, id string) error
}
