// Package domain holds the in-memory commerce entities: customers, the
// product catalog, and orders with their line items. Entities validate their
// fields once at construction and are treated as trusted afterwards. All
// monetary values are shopspring decimals.
package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	// Phones are accepted in national formats like +7(999)123-45-67,
	// +79991234567 or 89991234567. Formatting noise is stripped before the
	// match; the original string is stored as given.
	phonePattern = regexp.MustCompile(`^(\+7|8)[\d()\-\s]{10,15}$`)
	phoneNoise   = regexp.MustCompile(`[^\d+()]`)
)

// Customer is a registered shop customer with an append-only order history.
// A customer never loses an order once it is attached.
type Customer struct {
	ID               int64
	Name             string
	Email            string
	Phone            string
	Address          string
	City             string
	RegistrationDate time.Time

	orders []*Order
}

// NewCustomer validates email and phone and returns a new customer with the
// registration date stamped to the current time. Returns *ValidationError
// when either contact field is malformed.
func NewCustomer(id int64, name, email, phone, address, city string) (*Customer, error) {
	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Field: "email", Value: email}
	}
	if !phonePattern.MatchString(phoneNoise.ReplaceAllString(phone, "")) {
		return nil, &ValidationError{Field: "phone", Value: phone}
	}

	return &Customer{
		ID:               id,
		Name:             name,
		Email:            email,
		Phone:            phone,
		Address:          address,
		City:             city,
		RegistrationDate: time.Now(),
	}, nil
}

// AddOrder appends an order to the customer's history. Duplicate order IDs
// are not checked here; that is a repository concern.
func (c *Customer) AddOrder(o *Order) {
	c.orders = append(c.orders, o)
}

// Orders returns the customer's order history in insertion order.
// Callers must not mutate the returned slice.
func (c *Customer) Orders() []*Order {
	return c.orders
}

// OrdersCount returns the number of orders placed by the customer.
func (c *Customer) OrdersCount() int {
	return len(c.orders)
}

// TotalSpent sums the totals of all the customer's orders. Recomputed on
// every call, never cached.
func (c *Customer) TotalSpent() decimal.Decimal {
	total := decimal.Zero
	for _, o := range c.orders {
		total = total.Add(o.Total())
	}
	return total
}
