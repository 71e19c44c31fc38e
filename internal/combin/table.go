package combin

// Table caches the enumeration of every order from 1 to MaxOrder for a fixed
// number of species so the accumulation loop never re-enumerates.
type Table struct {
	n      int
	tuples [MaxOrder + 1][][]int
}

// NewTable enumerates all tuples of order 1..maxOrder over n species.
// maxOrder is clamped to MaxOrder.
func NewTable(n, maxOrder int) *Table {
	if maxOrder > MaxOrder {
		maxOrder = MaxOrder
	}
	tb := &Table{n: n}
	for m := 1; m <= maxOrder; m++ {
		list := make([][]int, 0, Count(n, m))
		for _, t := range Tuples(n, m) {
			list = append(list, t)
		}
		tb.tuples[m] = list
	}
	return tb
}

// Species returns the number of species the table was built for.
func (tb *Table) Species() int { return tb.n }

// MaxOrder returns the highest enumerated order.
func (tb *Table) MaxOrder() int {
	for m := MaxOrder; m > 0; m-- {
		if tb.tuples[m] != nil {
			return m
		}
	}
	return 0
}

// Tuples returns the canonical tuples of one order, indexed by slot. The
// returned slices must not be modified.
func (tb *Table) Tuples(order int) [][]int {
	if order < 1 || order > MaxOrder {
		return nil
	}
	return tb.tuples[order]
}

// Index is shorthand for Index(tb.Species(), t).
func (tb *Table) Index(t ...int) int {
	return Index(tb.n, t)
}
