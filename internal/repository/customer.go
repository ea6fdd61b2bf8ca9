package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/shop-analytics/internal/domain"
)

const (
	upsertCustomerSQL = `INSERT INTO customers (id, name, email, phone, address, city, registration_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone,
			address = EXCLUDED.address, city = EXCLUDED.city`

	listCustomersSQL = `SELECT id, name, email, phone, address, city, registration_date
		FROM customers ORDER BY id`
)

// CustomerRepository stores customers in PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Save upserts a customer. The registration date is written on first insert
// and never overwritten afterwards.
func (r *CustomerRepository) Save(ctx context.Context, c *domain.Customer) error {
	_, err := r.pool.Exec(ctx, upsertCustomerSQL,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.City, c.RegistrationDate,
	)
	if err != nil {
		return fmt.Errorf("saving customer %d: %w", c.ID, err)
	}
	return nil
}

// List returns all customers ordered by id, without their order histories.
// Orders are attached when loading a full snapshot.
func (r *CustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// scanCustomer rehydrates a stored customer. Contact fields were validated
// at construction time; stored rows are trusted as-is.
func scanCustomer(row pgx.CollectableRow) (*domain.Customer, error) {
	var (
		c          domain.Customer
		registered time.Time
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.City, &registered)
	c.RegistrationDate = registered
	return &c, err
}
