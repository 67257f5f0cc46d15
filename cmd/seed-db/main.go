// Command seed-db loads the default catalog into PostgreSQL. It runs the
// schema migrations first, so a fresh database works with no extra steps.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/flagforge/store-api/db"
	"github.com/flagforge/store-api/internal/domain/product"
	"github.com/flagforge/store-api/internal/repository"
)

type productJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Sizes       []string        `json:"sizes"`
	InStock     bool            `json:"inStock"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to products JSON file (default: embedded catalog)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	data := db.SeedProducts
	if productsFile != "" {
		slog.Info("reading products file", slog.String("path", productsFile))
		var err error
		if data, err = os.ReadFile(productsFile); err != nil {
			return errors.Wrap(err, "read products file")
		}
	}

	var raw []productJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	products := make([]product.Product, len(raw))
	for i, p := range raw {
		products[i] = product.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Image:       p.Image,
			Category:    product.Category(p.Category),
			Sizes:       p.Sizes,
			InStock:     p.InStock,
		}
		if !products[i].Category.Valid() {
			return errors.Errorf("product %s: unknown category %q", p.ID, p.Category)
		}
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("replacing catalog", slog.Int("count", len(products)))

	if err := repository.NewProductRepository(pool).ReplaceAll(ctx, products); err != nil {
		return errors.Wrap(err, "seed products")
	}

	for _, p := range products {
		slog.Info("seeded product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}
