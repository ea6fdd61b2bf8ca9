package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-analytics/internal/domain"
)

const (
	listOrdersSQL = `SELECT id, customer_id, order_date, status
		FROM orders ORDER BY order_date, id`

	listOrderItemsSQL = `SELECT order_id, product_id, quantity, price_at_time
		FROM order_items ORDER BY order_id, id`
)

// Snapshot is a fully rehydrated entity graph: orders attached to their
// customers, line items referencing the shared catalog products. It is what
// the analytics and graph layers consume.
type Snapshot struct {
	Customers []*domain.Customer
	Products  []*domain.Product
	Orders    []*domain.Order
}

// LoadSnapshot loads all customers, products and orders and wires their
// references back together.
func LoadSnapshot(ctx context.Context, pool *pgxpool.Pool) (*Snapshot, error) {
	customers, err := NewCustomerRepository(pool).List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load customers")
	}
	products, err := NewProductRepository(pool).List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load products")
	}

	customerByID := make(map[int64]*domain.Customer, len(customers))
	for _, c := range customers {
		customerByID[c.ID] = c
	}
	productByID := make(map[int64]*domain.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	orders, err := loadOrders(ctx, pool, customerByID, productByID)
	if err != nil {
		return nil, errors.Wrap(err, "load orders")
	}

	return &Snapshot{
		Customers: customers,
		Products:  products,
		Orders:    orders,
	}, nil
}

func loadOrders(
	ctx context.Context,
	pool *pgxpool.Pool,
	customerByID map[int64]*domain.Customer,
	productByID map[int64]*domain.Product,
) ([]*domain.Order, error) {
	rows, err := pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	orderByID := make(map[int64]*domain.Order)
	for rows.Next() {
		var (
			id, customerID int64
			date           time.Time
			status         string
		)
		if err := rows.Scan(&id, &customerID, &date, &status); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}

		customer, ok := customerByID[customerID]
		if !ok {
			return nil, fmt.Errorf("order %d references unknown customer %d", id, customerID)
		}

		o := domain.NewOrder(id, customer, date)
		o.UpdateStatus(status)
		customer.AddOrder(o)
		orders = append(orders, o)
		orderByID[id] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	rows.Close()

	itemRows, err := pool.Query(ctx, listOrderItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID, productID int64
			quantity           int
			priceAtTime        decimal.Decimal
		)
		if err := itemRows.Scan(&orderID, &productID, &quantity, &priceAtTime); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}

		o, ok := orderByID[orderID]
		if !ok {
			return nil, fmt.Errorf("item references unknown order %d", orderID)
		}
		p, ok := productByID[productID]
		if !ok {
			return nil, fmt.Errorf("order %d references unknown product %d", orderID, productID)
		}

		// Restore with the stored snapshot price: current stock and current
		// catalog price are irrelevant for historical lines.
		if err := o.RestoreItem(p, quantity, priceAtTime); err != nil {
			return nil, fmt.Errorf("restoring item %d of order %d: %w", productID, orderID, err)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}

	return orders, nil
}
