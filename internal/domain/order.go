package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusNew is the status assigned to freshly created orders. Status is a
// free-form label with no enforced transition graph; callers may assign any
// value at any time.
const StatusNew = "New"

// OrderItem is a single line within an order: a product reference, a
// quantity, and the unit price snapshotted when the line was first added.
// Later catalog price changes never affect existing lines.
type OrderItem struct {
	Product     *Product
	Quantity    int
	PriceAtTime decimal.Decimal
}

// LineTotal returns PriceAtTime * Quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtTime.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a customer order holding an ordered sequence of lines, at most one
// per product.
type Order struct {
	ID       int64
	Customer *Customer
	Date     time.Time
	Status   string

	items []*OrderItem
}

// NewOrder returns a new order in the StatusNew state. A zero date defaults
// to the current time.
func NewOrder(id int64, customer *Customer, date time.Time) *Order {
	if date.IsZero() {
		date = time.Now()
	}
	return &Order{
		ID:       id,
		Customer: customer,
		Date:     date,
		Status:   StatusNew,
	}
}

// AddItem adds qty units of the product to the order. When the order already
// has a line for this product, the quantity accumulates into that line and
// its price snapshot is left untouched; otherwise a new line is appended with
// the product's current price.
//
// Returns *ValidationError for a non-positive quantity and *UnavailableError
// when the product is not in stock in the requested quantity.
func (o *Order) AddItem(p *Product, qty int) error {
	if qty <= 0 {
		return &ValidationError{Field: "quantity", Value: decimal.NewFromInt(int64(qty)).String()}
	}
	if !p.IsAvailable(qty) {
		return &UnavailableError{ProductID: p.ID, Name: p.Name, Requested: qty}
	}

	for _, item := range o.items {
		if item.Product.ID == p.ID {
			item.Quantity += qty
			return nil
		}
	}

	o.items = append(o.items, &OrderItem{
		Product:     p,
		Quantity:    qty,
		PriceAtTime: p.Price,
	})
	return nil
}

// RestoreItem appends a line with an explicit price snapshot, bypassing the
// stock availability check. Used when rehydrating persisted orders whose
// stock was already deducted at fulfillment time.
func (o *Order) RestoreItem(p *Product, qty int, priceAtTime decimal.Decimal) error {
	if qty <= 0 {
		return &ValidationError{Field: "quantity", Value: decimal.NewFromInt(int64(qty)).String()}
	}
	o.items = append(o.items, &OrderItem{
		Product:     p,
		Quantity:    qty,
		PriceAtTime: priceAtTime,
	})
	return nil
}

// RemoveItem removes the line for the given product, reporting whether a
// line was removed. Removing an absent product is not an error.
func (o *Order) RemoveItem(productID int64) bool {
	for i, item := range o.items {
		if item.Product.ID == productID {
			o.items = append(o.items[:i], o.items[i+1:]...)
			return true
		}
	}
	return false
}

// UpdateStatus sets the order status unconditionally.
func (o *Order) UpdateStatus(status string) {
	o.Status = status
}

// Items returns the order lines in insertion order.
// Callers must not mutate the returned slice.
func (o *Order) Items() []*OrderItem {
	return o.items
}

// Total sums the line totals over all items.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemsCount sums the quantities over all items.
func (o *Order) ItemsCount() int {
	count := 0
	for _, item := range o.items {
		count += item.Quantity
	}
	return count
}
