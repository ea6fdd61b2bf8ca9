package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shop-analytics/internal/domain"
)

const (
	upsertOrderSQL = `INSERT INTO orders (id, customer_id, order_date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status`

	deleteOrderItemsSQL = `DELETE FROM order_items WHERE order_id = $1`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, price_at_time)
		VALUES ($1, $2, $3, $4)`

	listOrderIDsSQL = `SELECT id FROM orders ORDER BY id`

	orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`
)

// OrderRepository stores orders and their line items in PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Save upserts an order together with its line items in one transaction.
// Items are rewritten wholesale: the in-memory order is the source of truth.
func (r *OrderRepository) Save(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction for order %d: %w", o.ID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, upsertOrderSQL, o.ID, o.Customer.ID, o.Date, o.Status); err != nil {
		return fmt.Errorf("saving order %d: %w", o.ID, err)
	}
	if _, err := tx.Exec(ctx, deleteOrderItemsSQL, o.ID); err != nil {
		return fmt.Errorf("clearing items of order %d: %w", o.ID, err)
	}
	for _, item := range o.Items() {
		if _, err := tx.Exec(ctx, insertOrderItemSQL,
			o.ID, item.Product.ID, item.Quantity, item.PriceAtTime,
		); err != nil {
			return fmt.Errorf("saving item %d of order %d: %w", item.Product.ID, o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %d: %w", o.ID, err)
	}
	return nil
}

// ListIDs returns the ids of all stored orders in ascending order.
func (r *OrderRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, listOrderIDsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing order ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collecting order ids: %w", err)
	}
	return ids, nil
}

// Exists reports whether an order with the given id is stored.
func (r *OrderRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, orderExistsSQL, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking order %d: %w", id, err)
	}
	return exists, nil
}
