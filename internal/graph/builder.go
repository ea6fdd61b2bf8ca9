package graph

import "github.com/xenking/shop-analytics/internal/domain"

// Builder derives relationship graphs from a snapshot of customers and
// orders. Both builds are pure reads; the snapshot is never mutated.
type Builder struct {
	customers []*domain.Customer
	orders    []*domain.Order
}

// NewBuilder returns a Builder over the given snapshot.
func NewBuilder(customers []*domain.Customer, orders []*domain.Order) *Builder {
	return &Builder{
		customers: customers,
		orders:    orders,
	}
}

// SharedPurchases connects customers who bought the same product. The edge
// weight counts the distinct products both endpoints purchased: a customer
// counts at most once per product no matter the quantity or how many of
// their orders contain it. Every snapshot customer becomes a node, so
// customers with no purchases appear isolated.
//
// The pairwise step is quadratic in the number of customers sharing each
// product.
func (b *Builder) SharedPurchases() *Graph {
	g := newGraph()

	for _, c := range b.customers {
		g.addNode(Node{ID: c.ID, Name: c.Name, City: c.City})
	}

	// product id -> customer ids that bought it, first purchase first.
	buyers := make(map[int64][]int64)
	seen := make(map[int64]map[int64]bool)
	for _, o := range b.orders {
		customerID := o.Customer.ID
		for _, item := range o.Items() {
			productID := item.Product.ID
			if seen[productID] == nil {
				seen[productID] = make(map[int64]bool)
			}
			if seen[productID][customerID] {
				continue
			}
			seen[productID][customerID] = true
			buyers[productID] = append(buyers[productID], customerID)
		}
	}

	for _, ids := range buyers {
		for i := range ids {
			for j := i + 1; j < len(ids); j++ {
				g.incrementEdge(ids[i], ids[j])
			}
		}
	}

	return g
}

// SharedCities connects every pair of customers registered in the same
// non-empty city with an edge tagged by that city. Customers without a city
// contribute neither node nor edge.
func (b *Builder) SharedCities() *Graph {
	g := newGraph()

	byCity := make(map[string][]int64)
	for _, c := range b.customers {
		if c.City == "" {
			continue
		}
		g.addNode(Node{ID: c.ID, Name: c.Name, City: c.City})
		byCity[c.City] = append(byCity[c.City], c.ID)
	}

	for city, ids := range byCity {
		for i := range ids {
			for j := i + 1; j < len(ids); j++ {
				g.tagEdge(ids[i], ids[j], city)
			}
		}
	}

	return g
}
