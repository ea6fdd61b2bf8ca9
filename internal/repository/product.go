package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-analytics/internal/domain"
)

// ErrProductNotFound is returned when a requested product does not exist.
var ErrProductNotFound = errors.New("product not found")

const (
	upsertProductSQL = `INSERT INTO products (id, name, price, category, description, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, price = EXCLUDED.price, category = EXCLUDED.category,
			description = EXCLUDED.description, stock = EXCLUDED.stock`

	listProductsSQL = `SELECT id, name, price, category, description, stock
		FROM products ORDER BY id`

	getProductSQL = `SELECT id, name, price, category, description, stock
		FROM products WHERE id = $1`

	setProductStockSQL = `UPDATE products SET stock = $2 WHERE id = $1`
)

// ProductRepository stores catalog products in PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Save upserts a product, including its current stock level.
func (r *ProductRepository) Save(ctx context.Context, p *domain.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Price, p.Category, p.Description, p.Stock(),
	)
	if err != nil {
		return fmt.Errorf("saving product %d: %w", p.ID, err)
	}
	return nil
}

// List returns the full catalog ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	rows, err := r.pool.Query(ctx, getProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return p, nil
}

// SaveStock persists the product's current stock level after an in-memory
// adjustment. The domain entity enforces that stock never goes negative.
func (r *ProductRepository) SaveStock(ctx context.Context, p *domain.Product) error {
	_, err := r.pool.Exec(ctx, setProductStockSQL, p.ID, p.Stock())
	if err != nil {
		return fmt.Errorf("saving stock for product %d: %w", p.ID, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (*domain.Product, error) {
	var (
		id                          int64
		name, category, description string
		price                       decimal.Decimal
		stock                       int
	)
	if err := row.Scan(&id, &name, &price, &category, &description, &stock); err != nil {
		return nil, err
	}
	// Stored rows satisfy the constructor invariants (non-negative price and
	// stock are CHECK constraints in the schema).
	return domain.NewProduct(id, name, price, category, description, stock)
}
