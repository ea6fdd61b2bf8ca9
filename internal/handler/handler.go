// Package handler exposes the analytics reports over HTTP. Handlers load an
// entity snapshot per request, run the pure aggregation or graph code over
// it, and encode flat JSON records with jx.
package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/shop-analytics/internal/domain"
)

// Snapshot is the rehydrated entity graph reports are computed over.
type Snapshot struct {
	Customers []*domain.Customer
	Products  []*domain.Product
	Orders    []*domain.Order
}

// SnapshotProvider loads the current entity snapshot. Implemented by the
// repository layer; tests supply fixtures directly.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Handler serves the report and graph endpoints.
type Handler struct {
	snapshots SnapshotProvider
}

// NewHandler constructs a Handler over the given snapshot source.
func NewHandler(snapshots SnapshotProvider) *Handler {
	return &Handler{snapshots: snapshots}
}

// Routes registers all report endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/reports/top-customers", h.TopCustomers)
	mux.HandleFunc("GET /api/reports/sales-dynamics", h.SalesDynamics)
	mux.HandleFunc("GET /api/reports/product-stats", h.ProductStats)
	mux.HandleFunc("GET /api/reports/cities", h.Cities)
	mux.HandleFunc("GET /api/graph/customers", h.CustomerGraph)
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func badRequest(w http.ResponseWriter, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(http.StatusBadRequest)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, http.StatusBadRequest, &e)
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(http.StatusInternalServerError)
	e.FieldStart("message")
	e.Str("internal error")
	e.ObjEnd()
	writeJSON(w, http.StatusInternalServerError, &e)
}
