package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flagforge/store-api/internal/domain/product"
)

const (
	listInStockProductsSQL = `SELECT id, name, description, price, image, category, sizes, in_stock
		FROM products WHERE in_stock ORDER BY id`

	getProductByIDSQL = `SELECT id, name, description, price, image, category, sizes, in_stock
		FROM products WHERE id = $1`

	insertProductSQL = `INSERT INTO products (id, name, description, price, image, category, sizes, in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// ListInStock returns all purchasable products ordered by ID.
func (r *ProductRepository) ListInStock(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listInStockProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its catalog identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %s", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get product %s", id)
	}
	return &p, nil
}

// ReplaceAll swaps the whole catalog inside one transaction. Used by the
// seeder only.
func (r *ProductRepository) ReplaceAll(ctx context.Context, products []product.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin catalog replace")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
		return errors.Wrap(err, "clear catalog")
	}
	for _, p := range products {
		_, err := tx.Exec(ctx, insertProductSQL,
			p.ID, p.Name, p.Description, p.Price, p.Image, string(p.Category), p.Sizes, p.InStock,
		)
		if err != nil {
			return errors.Wrapf(err, "insert product %s", p.ID)
		}
	}

	return tx.Commit(ctx)
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price,
		&p.Image, &p.Category, &p.Sizes, &p.InStock,
	)
	return p, err
}
