package repository

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flagforge/store-api/internal/domain/order"
)

const (
	orderColumns = `id, customer_email, customer_first_name, customer_last_name, customer_phone,
		ship_address, ship_city, items, total_amount, total_amount_npr,
		payment_method, payment_status, status, payment_screenshot_url, created_at, updated_at`

	createOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	listOrdersWithProofSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE payment_screenshot_url IS NOT NULL ORDER BY created_at DESC`

	updateOrderSQL = `UPDATE orders
		SET status = $2, payment_status = $3, payment_method = $4,
			payment_screenshot_url = $5, updated_at = $6
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Each
// order is one row; the item snapshots live in a JSONB column so a write is
// atomic per order.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. The line snapshots are serialized to JSON
// for storage in the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "encode order items")
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID,
		o.Customer.Email, o.Customer.FirstName, o.Customer.LastName, o.Customer.Phone,
		o.ShippingAddress.Address, o.ShippingAddress.City,
		itemsJSON, o.TotalAmount, o.TotalAmountNpr,
		string(o.PaymentMethod), string(o.PaymentStatus), string(o.Status),
		nullable(o.PaymentScreenshotURL), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create order %s", o.ID)
	}
	return nil
}

// GetByID returns a single order or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	return &o, nil
}

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListWithPaymentProof returns orders carrying a screenshot, newest first.
func (r *OrderRepository) ListWithPaymentProof(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersWithProofSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list orders with payment proof")
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Update writes the mutable fields back. The immutable fields (customer,
// shipping, items, totals) are deliberately absent from the statement.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		o.ID,
		string(o.Status), string(o.PaymentStatus), string(o.PaymentMethod),
		nullable(o.PaymentScreenshotURL), o.UpdatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "update order %s", o.ID)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		shot      *string
	)
	err := row.Scan(
		&o.ID,
		&o.Customer.Email, &o.Customer.FirstName, &o.Customer.LastName, &o.Customer.Phone,
		&o.ShippingAddress.Address, &o.ShippingAddress.City,
		&itemsJSON, &o.TotalAmount, &o.TotalAmountNpr,
		&o.PaymentMethod, &o.PaymentStatus, &o.Status,
		&shot, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, errors.Wrap(err, "decode order items")
	}
	if shot != nil {
		o.PaymentScreenshotURL = *shot
	}
	return o, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
