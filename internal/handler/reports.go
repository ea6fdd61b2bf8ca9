package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"

	"github.com/xenking/shop-analytics/internal/analytics"
)

// TopCustomers serves GET /api/reports/top-customers?by=orders|spending&limit=N.
func (h *Handler) TopCustomers(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	if by == "" {
		by = "orders"
	}
	if by != "orders" && by != "spending" {
		badRequest(w, "by must be orders or spending")
		return
	}

	limit := analytics.DefaultTopN
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	a := analytics.NewAnalyzer(snap.Customers, snap.Products, snap.Orders)
	var ranks []analytics.CustomerRank
	if by == "spending" {
		ranks = a.TopCustomersBySpending(limit)
	} else {
		ranks = a.TopCustomersByOrders(limit)
	}

	var e jx.Encoder
	e.ArrStart()
	for _, rank := range ranks {
		e.ObjStart()
		e.FieldStart("customer_id")
		e.Int64(rank.CustomerID)
		e.FieldStart("name")
		e.Str(rank.Name)
		e.FieldStart("orders_count")
		e.Int(rank.OrdersCount)
		e.FieldStart("total_spent")
		e.Float64(rank.TotalSpent.InexactFloat64())
		e.ObjEnd()
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// SalesDynamics serves GET /api/reports/sales-dynamics?period=daily|weekly|monthly.
func (h *Handler) SalesDynamics(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		raw = string(analytics.Daily)
	}
	period, err := analytics.ParsePeriod(raw)
	if err != nil {
		badRequest(w, "period must be daily, weekly or monthly")
		return
	}

	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	stats := analytics.NewAnalyzer(snap.Customers, snap.Products, snap.Orders).SalesDynamics(period)

	var e jx.Encoder
	e.ArrStart()
	for _, s := range stats {
		e.ObjStart()
		e.FieldStart("period")
		e.Str(s.Period)
		e.FieldStart("orders_count")
		e.Int(s.OrdersCount)
		e.FieldStart("total_revenue")
		e.Float64(s.TotalRevenue.InexactFloat64())
		e.FieldStart("total_items")
		e.Int(s.TotalItems)
		e.ObjEnd()
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// ProductStats serves GET /api/reports/product-stats.
func (h *Handler) ProductStats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	stats := analytics.NewAnalyzer(snap.Customers, snap.Products, snap.Orders).ProductSalesStats()

	var e jx.Encoder
	e.ArrStart()
	for _, s := range stats {
		e.ObjStart()
		e.FieldStart("product_id")
		e.Int64(s.ProductID)
		e.FieldStart("name")
		e.Str(s.Name)
		e.FieldStart("category")
		e.Str(s.Category)
		e.FieldStart("quantity_sold")
		e.Int(s.QuantitySold)
		e.FieldStart("revenue")
		e.Float64(s.Revenue.InexactFloat64())
		e.FieldStart("orders_count")
		e.Int(s.OrdersCount)
		e.ObjEnd()
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// Cities serves GET /api/reports/cities.
func (h *Handler) Cities(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	dist := analytics.NewAnalyzer(snap.Customers, snap.Products, snap.Orders).CityDistribution()

	var e jx.Encoder
	e.ArrStart()
	for _, c := range dist {
		e.ObjStart()
		e.FieldStart("city")
		e.Str(c.City)
		e.FieldStart("customers")
		e.Int(c.Customers)
		e.ObjEnd()
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}
