package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/shop-analytics/internal/domain"
)

type stubProvider struct {
	snap Snapshot
	err  error
}

func (s *stubProvider) Snapshot(_ context.Context) (Snapshot, error) {
	return s.snap, s.err
}

func testSnapshot(t *testing.T) Snapshot {
	t.Helper()

	ivan, err := domain.NewCustomer(1, "Ivan Petrov", "ivan@example.com", "+79991234567", "", "Moscow")
	require.NoError(t, err)
	anna, err := domain.NewCustomer(2, "Anna Sidorova", "anna@example.com", "+79991234568", "", "Moscow")
	require.NoError(t, err)

	laptop, err := domain.NewProduct(1, "Laptop", decimal.NewFromInt(50000), "Electronics", "", 10)
	require.NoError(t, err)
	mouse, err := domain.NewProduct(2, "Mouse", decimal.NewFromInt(2000), "Accessories", "", 50)
	require.NoError(t, err)

	o1 := domain.NewOrder(1, ivan, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC))
	require.NoError(t, o1.AddItem(laptop, 1))
	require.NoError(t, o1.AddItem(mouse, 1))
	ivan.AddOrder(o1)

	o2 := domain.NewOrder(2, anna, time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
	require.NoError(t, o2.AddItem(mouse, 2))
	anna.AddOrder(o2)

	return Snapshot{
		Customers: []*domain.Customer{ivan, anna},
		Products:  []*domain.Product{laptop, mouse},
		Orders:    []*domain.Order{o1, o2},
	}
}

func serve(t *testing.T, provider SnapshotProvider, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(provider).Routes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestTopCustomers(t *testing.T) {
	provider := &stubProvider{snap: testSnapshot(t)}

	rec := serve(t, provider, "/api/reports/top-customers?by=spending&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rows []struct {
		CustomerID  int64   `json:"customer_id"`
		Name        string  `json:"name"`
		OrdersCount int     `json:"orders_count"`
		TotalSpent  float64 `json:"total_spent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].CustomerID)
	assert.Equal(t, "Ivan Petrov", rows[0].Name)
	assert.Equal(t, 1, rows[0].OrdersCount)
	assert.Equal(t, 52000.0, rows[0].TotalSpent)
}

func TestTopCustomers_BadParams(t *testing.T) {
	provider := &stubProvider{snap: testSnapshot(t)}

	rec := serve(t, provider, "/api/reports/top-customers?by=revenue")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, provider, "/api/reports/top-customers?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, provider, "/api/reports/top-customers?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSalesDynamics(t *testing.T) {
	provider := &stubProvider{snap: testSnapshot(t)}

	rec := serve(t, provider, "/api/reports/sales-dynamics?period=daily")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []struct {
		Period       string  `json:"period"`
		OrdersCount  int     `json:"orders_count"`
		TotalRevenue float64 `json:"total_revenue"`
		TotalItems   int     `json:"total_items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-03-03", rows[0].Period)
	assert.Equal(t, 52000.0, rows[0].TotalRevenue)
	assert.Equal(t, 2, rows[0].TotalItems)
	assert.Equal(t, "2025-03-04", rows[1].Period)
	assert.Equal(t, 4000.0, rows[1].TotalRevenue)

	rec = serve(t, provider, "/api/reports/sales-dynamics?period=hourly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductStats(t *testing.T) {
	provider := &stubProvider{snap: testSnapshot(t)}

	rec := serve(t, provider, "/api/reports/product-stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []struct {
		ProductID    int64   `json:"product_id"`
		Name         string  `json:"name"`
		QuantitySold int     `json:"quantity_sold"`
		Revenue      float64 `json:"revenue"`
		OrdersCount  int     `json:"orders_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ProductID)
	assert.Equal(t, 50000.0, rows[0].Revenue)
	assert.Equal(t, int64(2), rows[1].ProductID)
	assert.Equal(t, 3, rows[1].QuantitySold)
	assert.Equal(t, 6000.0, rows[1].Revenue)
	assert.Equal(t, 2, rows[1].OrdersCount)
}

func TestCustomerGraph(t *testing.T) {
	provider := &stubProvider{snap: testSnapshot(t)}

	rec := serve(t, provider, "/api/graph/customers?relation=products")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Nodes []struct {
			ID         int64   `json:"id"`
			Centrality float64 `json:"centrality"`
		} `json:"nodes"`
		Edges []struct {
			A      int64 `json:"a"`
			B      int64 `json:"b"`
			Weight int   `json:"weight"`
		} `json:"edges"`
		Metrics struct {
			Nodes         int     `json:"nodes"`
			Edges         int     `json:"edges"`
			Density       float64 `json:"density"`
			MostConnected struct {
				ID int64 `json:"id"`
			} `json:"most_connected"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Both customers bought the mouse: one edge of weight 1.
	require.Len(t, resp.Edges, 1)
	assert.Equal(t, int64(1), resp.Edges[0].A)
	assert.Equal(t, int64(2), resp.Edges[0].B)
	assert.Equal(t, 1, resp.Edges[0].Weight)
	assert.Equal(t, 2, resp.Metrics.Nodes)
	assert.Equal(t, 1.0, resp.Metrics.Density)
	assert.Equal(t, int64(1), resp.Metrics.MostConnected.ID)

	rec = serve(t, provider, "/api/graph/customers?relation=friends")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomerGraph_Cities(t *testing.T) {
	provider := &stubProvider{snap: testSnapshot(t)}

	rec := serve(t, provider, "/api/graph/customers?relation=cities")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Edges []struct {
			City string `json:"city"`
		} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Edges, 1)
	assert.Equal(t, "Moscow", resp.Edges[0].City)
}

func TestSnapshotError(t *testing.T) {
	provider := &stubProvider{err: errors.New("db down")}

	for _, target := range []string{
		"/api/reports/top-customers",
		"/api/reports/sales-dynamics",
		"/api/reports/product-stats",
		"/api/reports/cities",
		"/api/graph/customers",
	} {
		rec := serve(t, provider, target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
	}
}
