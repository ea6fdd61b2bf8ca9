package domain

// Direction selects ascending or descending order for the sort helpers.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// SortByDate sorts orders by their date using a three-way partition sort
// around the middle element. The input is never mutated; every level
// allocates fresh slices. Empty and single-element inputs are returned
// unchanged.
func SortByDate(orders []*Order, dir Direction) []*Order {
	if len(orders) <= 1 {
		return orders
	}

	pivot := orders[len(orders)/2].Date

	var before, equal, after []*Order
	for _, o := range orders {
		switch {
		case o.Date.Before(pivot):
			before = append(before, o)
		case o.Date.After(pivot):
			after = append(after, o)
		default:
			equal = append(equal, o)
		}
	}

	out := make([]*Order, 0, len(orders))
	if dir == Descending {
		before, after = after, before
	}
	out = append(out, SortByDate(before, dir)...)
	out = append(out, equal...)
	out = append(out, SortByDate(after, dir)...)
	return out
}

// SortByTotal sorts orders by their total using a top-down merge sort.
// The merge takes from the left half on equal totals, so orders with equal
// totals keep their relative input order. The input is never mutated.
func SortByTotal(orders []*Order, dir Direction) []*Order {
	if len(orders) <= 1 {
		return orders
	}

	mid := len(orders) / 2
	left := SortByTotal(orders[:mid], dir)
	right := SortByTotal(orders[mid:], dir)

	out := make([]*Order, 0, len(orders))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		cmp := left[i].Total().Cmp(right[j].Total())
		takeLeft := cmp <= 0
		if dir == Descending {
			takeLeft = cmp >= 0
		}
		if takeLeft {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
	}
	out = append(out, left[i:]...)
	out = append(out, right[j:]...)
	return out
}
