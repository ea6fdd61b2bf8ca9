// Package analytics derives tabular summaries from a snapshot of the domain
// entities: spending leaderboards, time-bucketed sales dynamics and
// per-product revenue statistics.
//
// Every operation is a pure read over the snapshot handed to NewAnalyzer.
// Nothing here mutates an entity; empty input degrades to an empty result
// rather than an error. Callers are responsible for not mutating the
// underlying collections while a computation is in flight.
package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-analytics/internal/domain"
)

// DefaultTopN is the leaderboard size used when the caller does not ask for
// a specific one.
const DefaultTopN = 5

// Period selects the calendar bucket for sales dynamics.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// ErrUnknownPeriod is returned by ParsePeriod for unrecognized period names.
var ErrUnknownPeriod = errors.New("unknown period")

// ParsePeriod maps a period name to a Period, case-insensitively.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(s)) {
	case Daily, Weekly, Monthly:
		return Period(strings.ToLower(s)), nil
	default:
		return "", errors.Wrap(ErrUnknownPeriod, s)
	}
}

// CustomerRank is one leaderboard row.
type CustomerRank struct {
	CustomerID  int64
	Name        string
	OrdersCount int
	TotalSpent  decimal.Decimal
}

// PeriodStats aggregates the orders that fall into one calendar bucket.
type PeriodStats struct {
	Period       string
	OrdersCount  int
	TotalRevenue decimal.Decimal
	TotalItems   int
}

// ProductStats accumulates sales figures for one product across all orders.
type ProductStats struct {
	ProductID    int64
	Name         string
	Category     string
	QuantitySold int
	Revenue      decimal.Decimal
	OrdersCount  int
}

// CityCount is the number of customers registered in one city.
type CityCount struct {
	City      string
	Customers int
}

// Analyzer computes read-only aggregations over an entity snapshot.
type Analyzer struct {
	customers []*domain.Customer
	products  []*domain.Product
	orders    []*domain.Order
}

// NewAnalyzer returns an Analyzer over the given snapshot. The slices are
// kept by reference and read on demand.
func NewAnalyzer(customers []*domain.Customer, products []*domain.Product, orders []*domain.Order) *Analyzer {
	return &Analyzer{
		customers: customers,
		products:  products,
		orders:    orders,
	}
}

// TopCustomersByOrders returns the n customers with the most orders, order
// count descending. Ties break by customer id ascending so the ranking is
// reproducible. n <= 0 falls back to DefaultTopN.
func (a *Analyzer) TopCustomersByOrders(n int) []CustomerRank {
	return a.topCustomers(n, func(l, r CustomerRank) bool {
		return l.OrdersCount > r.OrdersCount
	})
}

// TopCustomersBySpending returns the n customers with the highest lifetime
// spend, descending, ties broken by customer id ascending.
func (a *Analyzer) TopCustomersBySpending(n int) []CustomerRank {
	return a.topCustomers(n, func(l, r CustomerRank) bool {
		return l.TotalSpent.GreaterThan(r.TotalSpent)
	})
}

func (a *Analyzer) topCustomers(n int, greater func(l, r CustomerRank) bool) []CustomerRank {
	if n <= 0 {
		n = DefaultTopN
	}

	ranks := make([]CustomerRank, 0, len(a.customers))
	for _, c := range a.customers {
		ranks = append(ranks, CustomerRank{
			CustomerID:  c.ID,
			Name:        c.Name,
			OrdersCount: c.OrdersCount(),
			TotalSpent:  c.TotalSpent(),
		})
	}

	sort.Slice(ranks, func(i, j int) bool {
		if greater(ranks[i], ranks[j]) {
			return true
		}
		if greater(ranks[j], ranks[i]) {
			return false
		}
		return ranks[i].CustomerID < ranks[j].CustomerID
	})

	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

// SalesDynamics groups all orders into calendar buckets and reports the
// order count, revenue and item count per bucket, ascending by period.
// Buckets with no orders are absent: the output is sparse.
func (a *Analyzer) SalesDynamics(period Period) []PeriodStats {
	buckets := make(map[string]*PeriodStats)

	for _, o := range a.orders {
		label := bucketLabel(period, o)
		b, ok := buckets[label]
		if !ok {
			b = &PeriodStats{Period: label, TotalRevenue: decimal.Zero}
			buckets[label] = b
		}
		b.OrdersCount++
		b.TotalRevenue = b.TotalRevenue.Add(o.Total())
		b.TotalItems += o.ItemsCount()
	}

	out := make([]PeriodStats, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	// All bucket labels sort chronologically as strings.
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

func bucketLabel(period Period, o *domain.Order) string {
	switch period {
	case Weekly:
		year, week := o.Date.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Monthly:
		return o.Date.Format("2006-01")
	default:
		return o.Date.Format("2006-01-02")
	}
}

// ProductSalesStats accumulates per-product sales across every order line:
// units sold, revenue from line totals, and the number of orders containing
// the product (counted once per line occurrence, not per unit). The name and
// category are taken from the last observed line. Rows come back revenue
// descending, ties broken by product id ascending.
func (a *Analyzer) ProductSalesStats() []ProductStats {
	stats := make(map[int64]*ProductStats)

	for _, o := range a.orders {
		for _, item := range o.Items() {
			p := item.Product
			s, ok := stats[p.ID]
			if !ok {
				s = &ProductStats{ProductID: p.ID, Revenue: decimal.Zero}
				stats[p.ID] = s
			}
			s.Name = p.Name
			s.Category = p.Category
			s.QuantitySold += item.Quantity
			s.Revenue = s.Revenue.Add(item.LineTotal())
			s.OrdersCount++
		}
	}

	out := make([]ProductStats, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		cmp := out[i].Revenue.Cmp(out[j].Revenue)
		if cmp != 0 {
			return cmp > 0
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// TotalRevenue sums the totals of every order in the snapshot.
func (a *Analyzer) TotalRevenue() decimal.Decimal {
	total := decimal.Zero
	for _, o := range a.orders {
		total = total.Add(o.Total())
	}
	return total
}

// CustomersByCity returns the customers registered in the given city,
// matched case-insensitively, in snapshot order.
func (a *Analyzer) CustomersByCity(city string) []*domain.Customer {
	var out []*domain.Customer
	for _, c := range a.customers {
		if strings.EqualFold(c.City, city) {
			out = append(out, c)
		}
	}
	return out
}

// CityDistribution counts customers per non-empty city, most populous first,
// ties broken by city name ascending.
func (a *Analyzer) CityDistribution() []CityCount {
	counts := make(map[string]int)
	for _, c := range a.customers {
		if c.City != "" {
			counts[c.City]++
		}
	}

	out := make([]CityCount, 0, len(counts))
	for city, n := range counts {
		out = append(out, CityCount{City: city, Customers: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Customers != out[j].Customers {
			return out[i].Customers > out[j].Customers
		}
		return out[i].City < out[j].City
	})
	return out
}
