// Package order holds the persisted order aggregate and the services that
// create, query, and mutate it: intake, payment proof, and admin review.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/flagforge/store-api/internal/domain/product"
)

// ErrNotFound is returned when a referenced order does not exist.
var ErrNotFound = errors.New("order not found")

func init() {
	// Prices serialize as JSON numbers, both in API responses and in the
	// JSONB item snapshots, matching the external contract.
	decimal.MarshalJSONWithoutQuotes = true
}

// Status is the fulfillment state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known fulfillment status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further fulfillment transition is expected.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// PaymentStatus is the manual verification state of an order's payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

// Terminal reports whether the payment has reached its final state.
func (p PaymentStatus) Terminal() bool {
	return p == PaymentPaid
}

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	// MethodCOD is cash on delivery; no proof is ever attached.
	MethodCOD PaymentMethod = "cod"
	// MethodEsewa is an external wallet transfer evidenced by a screenshot.
	MethodEsewa PaymentMethod = "esewa"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCOD, MethodEsewa:
		return true
	}
	return false
}

// Label returns the customer-facing name of the payment method.
func (m PaymentMethod) Label() string {
	if m == MethodCOD {
		return "Cash on Delivery"
	}
	return "eSewa/FonePay"
}

// Customer identifies who placed the order.
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// FullName returns the customer's display name.
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ShippingAddress is where the order is delivered.
type ShippingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
}

// Item is a line snapshot frozen into the order at creation time. Later
// catalog changes never mutate it.
type Item struct {
	ProductID    string           `json:"id"`
	Name         string           `json:"name"`
	Price        decimal.Decimal  `json:"price"`
	PriceNpr     int64            `json:"priceNpr"`
	Image        string           `json:"image"`
	Quantity     int              `json:"quantity"`
	SelectedSize string           `json:"selectedSize,omitempty"`
	CustomName   string           `json:"customName,omitempty"`
	Category     product.Category `json:"category"`
}

// LineTotal returns unit price times quantity in USD.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the durable order aggregate. After creation only Status,
// PaymentStatus, PaymentMethod, and PaymentScreenshotURL may change.
type Order struct {
	ID                   string          `json:"id"`
	Customer             Customer        `json:"customer"`
	ShippingAddress      ShippingAddress `json:"shippingAddress"`
	Items                []Item          `json:"items"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	TotalAmountNpr       int64           `json:"totalAmountNpr"`
	PaymentMethod        PaymentMethod   `json:"paymentMethod"`
	PaymentStatus        PaymentStatus   `json:"paymentStatus"`
	Status               Status          `json:"status"`
	PaymentScreenshotURL string          `json:"paymentScreenshotUrl,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// ItemsTotal returns the sum of line totals across the order's items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Repository defines persistence operations for orders. Each order is a
// single document; writes are atomic per order and last-write-wins under
// concurrent mutation.
type Repository interface {
	// Create persists a new order exactly once.
	Create(ctx context.Context, o *Order) error
	// GetByID returns an order or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Order, error)
	// List returns all orders, newest first.
	List(ctx context.Context) ([]Order, error)
	// Update writes the mutable fields of an existing order back.
	// Returns ErrNotFound when the order no longer exists.
	Update(ctx context.Context, o *Order) error
	// ListWithPaymentProof returns orders carrying a payment screenshot,
	// newest first: the manual verification queue.
	ListWithPaymentProof(ctx context.Context) ([]Order, error)
}
