package domain

import "github.com/shopspring/decimal"

// Product is a shared catalog entry. Many order lines across many orders may
// reference the same product. Stock is only mutated through AdjustStock and
// never goes negative.
type Product struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Category    string
	Description string

	stock int
}

// NewProduct returns a new catalog product. Returns *ValidationError when the
// price or the initial stock is negative.
func NewProduct(id int64, name string, price decimal.Decimal, category, description string, stock int) (*Product, error) {
	if price.IsNegative() {
		return nil, &ValidationError{Field: "price", Value: price.String()}
	}
	if stock < 0 {
		return nil, &ValidationError{Field: "stock", Value: decimal.NewFromInt(int64(stock)).String()}
	}

	return &Product{
		ID:          id,
		Name:        name,
		Price:       price,
		Category:    category,
		Description: description,
		stock:       stock,
	}, nil
}

// Stock returns the current units in stock.
func (p *Product) Stock() int {
	return p.stock
}

// AdjustStock applies a positive or negative delta to the stock level.
// Returns *InsufficientStockError and leaves the stock unchanged when the
// adjustment would drive it below zero.
func (p *Product) AdjustStock(delta int) error {
	next := p.stock + delta
	if next < 0 {
		return &InsufficientStockError{
			ProductID: p.ID,
			Available: p.stock,
			Requested: -delta,
		}
	}
	p.stock = next
	return nil
}

// IsAvailable reports whether at least qty units are in stock.
func (p *Product) IsAvailable(qty int) bool {
	return p.stock >= qty
}
