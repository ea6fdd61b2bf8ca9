package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct_Validation(t *testing.T) {
	_, err := NewProduct(1, "Laptop", decimal.NewFromInt(-1), "", "", 0)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "price", vErr.Field)

	_, err = NewProduct(1, "Laptop", decimal.NewFromInt(100), "", "", -5)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "stock", vErr.Field)

	p, err := NewProduct(1, "Laptop", decimal.Zero, "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock())
}

func TestProduct_AdjustStock(t *testing.T) {
	p, err := NewProduct(1, "Laptop", decimal.NewFromInt(50000), "Electronics", "", 10)
	require.NoError(t, err)

	require.NoError(t, p.AdjustStock(-4))
	assert.Equal(t, 6, p.Stock())

	require.NoError(t, p.AdjustStock(10))
	assert.Equal(t, 16, p.Stock())

	// An adjustment below zero fails and leaves the stock unchanged.
	err = p.AdjustStock(-20)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 16, stockErr.Available)
	assert.Equal(t, 20, stockErr.Requested)
	assert.Equal(t, 16, p.Stock())

	// Draining exactly to zero is allowed.
	require.NoError(t, p.AdjustStock(-16))
	assert.Equal(t, 0, p.Stock())
}

func TestProduct_IsAvailable(t *testing.T) {
	p, err := NewProduct(1, "Mouse", decimal.NewFromInt(1500), "", "", 3)
	require.NoError(t, err)

	assert.True(t, p.IsAvailable(1))
	assert.True(t, p.IsAvailable(3))
	assert.False(t, p.IsAvailable(4))
}
