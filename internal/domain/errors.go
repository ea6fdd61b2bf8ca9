package domain

import "fmt"

// ValidationError indicates a field failed its construction-time check.
// Entities validate once at construction; the value is trusted afterwards.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// InsufficientStockError indicates a stock adjustment would drive the
// product's stock below zero. The product state is left unchanged.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// UnavailableError indicates an order line could not be added because the
// product is not available in the requested quantity.
type UnavailableError struct {
	ProductID int64
	Name      string
	Requested int
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("product %q (%d) unavailable in quantity %d", e.Name, e.ProductID, e.Requested)
}
