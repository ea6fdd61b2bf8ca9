//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/shop-analytics/internal/domain"
	"github.com/xenking/shop-analytics/internal/repository"
)

// setupPool starts a throwaway PostgreSQL container, applies the schema and
// returns a connected pool.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("shop"),
		postgres.WithUsername("shop"),
		postgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "connection string")

	pool, err := repository.NewPool(ctx, connStr)
	require.NoError(t, err, "create pool")
	t.Cleanup(pool.Close)

	require.NoError(t, repository.RunMigrations(ctx, pool), "run migrations")

	return pool
}

func mustCustomer(t *testing.T, id int64, name, email, city string) *domain.Customer {
	t.Helper()
	c, err := domain.NewCustomer(id, name, email, "+7(495)123-45-67", "Tverskaya st. 1", city)
	require.NoError(t, err)
	return c
}

func mustProduct(t *testing.T, id int64, name, price, category string, stock int) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(id, name, decimal.RequireFromString(price), category, "", stock)
	require.NoError(t, err)
	return p
}

func TestSnapshotRoundTrip(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	customers := repository.NewCustomerRepository(pool)
	products := repository.NewProductRepository(pool)
	orders := repository.NewOrderRepository(pool)

	ivan := mustCustomer(t, 1, "Ivan Petrov", "ivan@example.com", "Moscow")
	anna := mustCustomer(t, 2, "Anna Orlova", "anna@example.com", "Kazan")
	require.NoError(t, customers.Save(ctx, ivan))
	require.NoError(t, customers.Save(ctx, anna))

	laptop := mustProduct(t, 10, "Laptop", "50000", "Computers", 5)
	mouse := mustProduct(t, 11, "Mouse", "2000", "Accessories", 30)
	require.NoError(t, products.Save(ctx, laptop))
	require.NoError(t, products.Save(ctx, mouse))

	o := domain.NewOrder(100, ivan, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, o.AddItem(laptop, 1))
	require.NoError(t, o.AddItem(mouse, 2))
	o.UpdateStatus("Completed")
	require.NoError(t, orders.Save(ctx, o))

	snap, err := repository.LoadSnapshot(ctx, pool)
	require.NoError(t, err)

	require.Len(t, snap.Customers, 2)
	require.Len(t, snap.Products, 2)
	require.Len(t, snap.Orders, 1)

	got := snap.Orders[0]
	assert.Equal(t, int64(100), got.ID)
	assert.Equal(t, "Completed", got.Status)
	assert.Equal(t, int64(1), got.Customer.ID)
	assert.True(t, got.Date.Equal(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)))

	require.Len(t, got.Items(), 2)
	assert.True(t, got.Total().Equal(decimal.RequireFromString("54000")),
		"total %s", got.Total())

	// The customer on the rehydrated graph carries its orders.
	var loadedIvan *domain.Customer
	for _, c := range snap.Customers {
		if c.ID == 1 {
			loadedIvan = c
		}
	}
	require.NotNil(t, loadedIvan)
	assert.Equal(t, 1, loadedIvan.OrdersCount())
	assert.True(t, loadedIvan.TotalSpent().Equal(decimal.RequireFromString("54000")))
}

func TestPriceSnapshotSurvivesPriceChange(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	customers := repository.NewCustomerRepository(pool)
	products := repository.NewProductRepository(pool)
	orders := repository.NewOrderRepository(pool)

	c := mustCustomer(t, 1, "Ivan Petrov", "ivan@example.com", "Moscow")
	require.NoError(t, customers.Save(ctx, c))

	p := mustProduct(t, 10, "Laptop", "50000", "Computers", 5)
	require.NoError(t, products.Save(ctx, p))

	o := domain.NewOrder(100, c, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, o.AddItem(p, 1))
	require.NoError(t, orders.Save(ctx, o))

	// Reprice the product after the order was stored.
	repriced := mustProduct(t, 10, "Laptop", "60000", "Computers", 5)
	require.NoError(t, products.Save(ctx, repriced))

	snap, err := repository.LoadSnapshot(ctx, pool)
	require.NoError(t, err)
	require.Len(t, snap.Orders, 1)

	item := snap.Orders[0].Items()[0]
	assert.True(t, item.PriceAtTime.Equal(decimal.RequireFromString("50000")),
		"price at time %s", item.PriceAtTime)
	assert.True(t, item.Product.Price.Equal(decimal.RequireFromString("60000")),
		"current price %s", item.Product.Price)
}

func TestOrderIDs(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	customers := repository.NewCustomerRepository(pool)
	products := repository.NewProductRepository(pool)
	orders := repository.NewOrderRepository(pool)

	c := mustCustomer(t, 1, "Ivan Petrov", "ivan@example.com", "Moscow")
	require.NoError(t, customers.Save(ctx, c))
	p := mustProduct(t, 10, "Mouse", "2000", "Accessories", 30)
	require.NoError(t, products.Save(ctx, p))

	for _, id := range []int64{3, 1, 2} {
		o := domain.NewOrder(id, c, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC))
		require.NoError(t, o.AddItem(p, 1))
		require.NoError(t, orders.Save(ctx, o))
	}

	ids, err := orders.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	exists, err := orders.Exists(ctx, 2)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = orders.Exists(ctx, 99)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProductStockPersistence(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	products := repository.NewProductRepository(pool)

	p := mustProduct(t, 10, "Mouse", "2000", "Accessories", 30)
	require.NoError(t, products.Save(ctx, p))

	require.NoError(t, p.AdjustStock(-5))
	require.NoError(t, products.SaveStock(ctx, p))

	got, err := products.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Stock())

	_, err = products.GetByID(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}
