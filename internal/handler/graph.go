package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/shop-analytics/internal/graph"
)

// CustomerGraph serves GET /api/graph/customers?relation=products|cities.
// The response carries the node list, the edge list and the scalar graph
// metrics in one object.
func (h *Handler) CustomerGraph(w http.ResponseWriter, r *http.Request) {
	relation := r.URL.Query().Get("relation")
	if relation == "" {
		relation = "products"
	}
	if relation != "products" && relation != "cities" {
		badRequest(w, "relation must be products or cities")
		return
	}

	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}

	b := graph.NewBuilder(snap.Customers, snap.Orders)
	var g *graph.Graph
	if relation == "cities" {
		g = b.SharedCities()
	} else {
		g = b.SharedPurchases()
	}

	centrality := g.DegreeCentrality()

	var e jx.Encoder
	e.ObjStart()

	e.FieldStart("nodes")
	e.ArrStart()
	for _, n := range g.Nodes() {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(n.ID)
		e.FieldStart("name")
		e.Str(n.Name)
		e.FieldStart("city")
		e.Str(n.City)
		e.FieldStart("centrality")
		e.Float64(centrality[n.ID])
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("edges")
	e.ArrStart()
	for _, edge := range g.Edges() {
		e.ObjStart()
		e.FieldStart("a")
		e.Int64(edge.A)
		e.FieldStart("b")
		e.Int64(edge.B)
		if relation == "cities" {
			e.FieldStart("city")
			e.Str(edge.City)
		} else {
			e.FieldStart("weight")
			e.Int(edge.Weight)
		}
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("metrics")
	e.ObjStart()
	e.FieldStart("nodes")
	e.Int(g.NodeCount())
	e.FieldStart("edges")
	e.Int(g.EdgeCount())
	e.FieldStart("density")
	e.Float64(g.Density())
	if top, c, ok := g.MostConnected(); ok {
		e.FieldStart("most_connected")
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(top.ID)
		e.FieldStart("name")
		e.Str(top.Name)
		e.FieldStart("centrality")
		e.Float64(c)
		e.ObjEnd()
	}
	e.ObjEnd()

	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}
