package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-analytics/internal/domain"
	"github.com/xenking/shop-analytics/internal/repository"
)

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
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

	customers, err := seedCustomers(ctx, repository.NewCustomerRepository(pool))
	if err != nil {
		return errors.Wrap(err, "seed customers")
	}

	products, err := seedProducts(ctx, repository.NewProductRepository(pool))
	if err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedOrders(ctx, pool, customers, products); err != nil {
		return errors.Wrap(err, "seed orders")
	}

	return nil
}

func seedCustomers(ctx context.Context, repo *repository.CustomerRepository) ([]*domain.Customer, error) {
	rows := []struct {
		id                                int64
		name, email, phone, address, city string
	}{
		{1, "Ivan Petrov", "ivan.petrov@email.com", "+7(495)123-45-67", "Tverskaya st. 10", "Moscow"},
		{2, "Maria Sidorova", "maria.sidorova@email.com", "+7(812)987-65-43", "Nevsky pr. 25", "Saint Petersburg"},
		{3, "Alexey Kozlov", "alexey.kozlov@email.com", "+7(383)555-12-34", "Lenina st. 15", "Novosibirsk"},
		{4, "Elena Vasileva", "elena.vasileva@email.com", "+7(843)777-88-99", "Baumana st. 5", "Kazan"},
		{5, "Dmitry Nikolaev", "dmitry.nikolaev@email.com", "+7(495)456-78-90", "Arbat st. 3", "Moscow"},
	}

	customers := make([]*domain.Customer, 0, len(rows))
	for _, row := range rows {
		c, err := domain.NewCustomer(row.id, row.name, row.email, row.phone, row.address, row.city)
		if err != nil {
			return nil, errors.Wrapf(err, "customer %d", row.id)
		}
		if err := repo.Save(ctx, c); err != nil {
			return nil, errors.Wrapf(err, "save customer %d", row.id)
		}
		customers = append(customers, c)

		slog.Info("seeded customer", slog.Int64("id", c.ID), slog.String("name", c.Name))
	}

	return customers, nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository) ([]*domain.Product, error) {
	rows := []struct {
		id                    int64
		name, price           string
		category, description string
		stock                 int
	}{
		{1, "ASUS ROG Laptop", "85000", "Computers", "15.6\" gaming laptop", 5},
		{2, "iPhone 13", "65000", "Phones", "128GB, blue", 10},
		{3, "Sony WH-1000XM4", "25000", "Audio", "Wireless noise-cancelling headphones", 15},
		{4, "Logitech MX Keys", "8500", "Accessories", "Wireless mechanical keyboard", 20},
		{5, "Logitech MX Master 3", "6500", "Accessories", "Wireless ergonomic mouse", 25},
		{6, "Dell UltraSharp Monitor", "35000", "Monitors", "27\" 4K IPS", 8},
		{7, "Samsung 980 PRO SSD", "12000", "Components", "1TB NVMe M.2", 30},
		{8, "Logitech C920 Webcam", "7500", "Accessories", "Full HD 1080p", 12},
	}

	products := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		p, err := domain.NewProduct(row.id, row.name, decimal.RequireFromString(row.price), row.category, row.description, row.stock)
		if err != nil {
			return nil, errors.Wrapf(err, "product %d", row.id)
		}
		if err := repo.Save(ctx, p); err != nil {
			return nil, errors.Wrapf(err, "save product %d", row.id)
		}
		products = append(products, p)

		slog.Info("seeded product", slog.Int64("id", p.ID), slog.String("name", p.Name))
	}

	return products, nil
}

// seedOrders writes a fixed order history so repeated runs produce the same
// dataset, deducting stock for every line it creates.
func seedOrders(ctx context.Context, pool *pgxpool.Pool, customers []*domain.Customer, products []*domain.Product) error {
	orders := repository.NewOrderRepository(pool)
	stock := repository.NewProductRepository(pool)

	byID := make(map[int64]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	type line struct {
		productID int64
		qty       int
	}
	rows := []struct {
		id       int64
		customer *domain.Customer
		date     time.Time
		status   string
		lines    []line
	}{
		{1, customers[0], date(2025, 7, 5), "Completed", []line{{1, 1}, {5, 1}}},
		{2, customers[0], date(2025, 7, 18), "Delivered", []line{{3, 1}}},
		{3, customers[1], date(2025, 7, 9), "Completed", []line{{2, 1}, {4, 1}}},
		{4, customers[2], date(2025, 7, 12), "Shipped", []line{{6, 1}, {7, 2}}},
		{5, customers[3], date(2025, 7, 20), "Processing", []line{{8, 1}, {5, 2}}},
		{6, customers[4], date(2025, 7, 25), domain.StatusNew, []line{{4, 1}, {5, 1}}},
		{7, customers[4], date(2025, 8, 2), domain.StatusNew, []line{{7, 1}}},
	}

	for _, row := range rows {
		o := domain.NewOrder(row.id, row.customer, row.date)
		o.UpdateStatus(row.status)

		for _, l := range row.lines {
			p := byID[l.productID]
			if err := o.AddItem(p, l.qty); err != nil {
				return errors.Wrapf(err, "order %d: add product %d", row.id, l.productID)
			}
			if err := p.AdjustStock(-l.qty); err != nil {
				return errors.Wrapf(err, "order %d: deduct stock for product %d", row.id, l.productID)
			}
		}

		if err := orders.Save(ctx, o); err != nil {
			return errors.Wrapf(err, "save order %d", row.id)
		}
		row.customer.AddOrder(o)

		slog.Info("seeded order",
			slog.Int64("id", o.ID),
			slog.String("customer", row.customer.Name),
			slog.String("total", o.Total().String()),
		)
	}

	for _, p := range products {
		if err := stock.SaveStock(ctx, p); err != nil {
			return errors.Wrapf(err, "save stock for product %d", p.ID)
		}
	}

	return nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
