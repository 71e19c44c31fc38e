package nudyn

import (
	"slices"

	"github.com/san-kum/nudyn/internal/combin"
)

// factor references a raw moment f_order[slot].
type factor struct {
	order int
	slot  int
}

// term is one set partition of a tuple: coef * prod f_|B|[B].
type term struct {
	coef    float64
	factors []factor
}

// partitions returns all set partitions of {0..m-1} as lists of blocks,
// generated from restricted growth strings.
func partitions(m int) [][][]int {
	var out [][][]int
	rgs := make([]int, m)
	var walk func(i, maxBlock int)
	walk = func(i, maxBlock int) {
		if i == m {
			blocks := make([][]int, maxBlock+1)
			for pos, b := range rgs {
				blocks[b] = append(blocks[b], pos)
			}
			out = append(out, blocks)
			return
		}
		for b := 0; b <= maxBlock+1; b++ {
			rgs[i] = b
			next := maxBlock
			if b > maxBlock {
				next = b
			}
			walk(i+1, next)
		}
	}
	if m > 0 {
		rgs[0] = 0
		walk(1, 0)
	}
	return out
}

// partitionCoef is (-1)^(k-1) (k-1)! for a partition into k blocks.
func partitionCoef(k int) float64 {
	c := 1.0
	for i := 2; i < k; i++ {
		c *= float64(i)
	}
	if k%2 == 0 {
		return -c
	}
	return c
}

// Engine derives cumulants and correlators from moment cells. The cumulant
// of every tuple is expanded over all set partitions of its positions once,
// at construction.
type Engine struct {
	table      *combin.Table
	plans      [combin.MaxOrder + 1][][]term
	minEntries int64
}

// NewEngine prepares the expansion for every tuple in tb. Cells with fewer
// than minEntries events are left invalid.
func NewEngine(tb *combin.Table, minEntries int64) *Engine {
	e := &Engine{table: tb, minEntries: minEntries}
	n := tb.Species()
	for m := 2; m <= tb.MaxOrder(); m++ {
		parts := partitions(m)
		tuples := tb.Tuples(m)
		e.plans[m] = make([][]term, len(tuples))
		for slot, t := range tuples {
			terms := make([]term, 0, len(parts))
			for _, blocks := range parts {
				tm := term{coef: partitionCoef(len(blocks))}
				for _, b := range blocks {
					sub := make([]int, len(b))
					for i, pos := range b {
						sub[i] = t[pos]
					}
					tm.factors = append(tm.factors, factor{order: len(sub), slot: combin.Index(n, sub)})
				}
				terms = append(terms, tm)
			}
			e.plans[m][slot] = terms
		}
	}
	return e
}

// DerivedCell holds the derived observables of one bin. F[m] and R[m] are
// indexed by the order-m slot; NuDyn by the order-2 slot. A restored cell
// holds NaN for values whose records could not be read.
type DerivedCell struct {
	Valid   bool
	Entries int64
	F       [combin.MaxOrder + 1][]float64
	R       [combin.MaxOrder + 1][]float64
	NuDyn   []float64

	table *combin.Table
}

// Cumulant returns F_m for the given species tuple, m = len(t).
func (d *DerivedCell) Cumulant(t ...int) float64 {
	return d.lookup(&d.F, t)
}

// Correlator returns R_m for the given species tuple, m = len(t).
func (d *DerivedCell) Correlator(t ...int) float64 {
	return d.lookup(&d.R, t)
}

// lookup panics with *combin.IndexError for an order that was not derived.
func (d *DerivedCell) lookup(vals *[combin.MaxOrder + 1][]float64, t []int) float64 {
	if len(t) < 2 || len(t) > combin.MaxOrder || vals[len(t)] == nil {
		panic(&combin.IndexError{N: d.table.Species(), Tuple: slices.Clone(t)})
	}
	return vals[len(t)][d.table.Index(t...)]
}

// NuDynOf returns nu-dynamic for species a and b.
func (d *DerivedCell) NuDynOf(a, b int) float64 {
	return d.NuDyn[d.table.Index(a, b)]
}

// Derive computes every derived observable of one cell in ascending order.
// A zero product of first-order moments yields R = 0.
func (e *Engine) Derive(cell *MomentCell) DerivedCell {
	tb := e.table
	d := DerivedCell{Entries: cell.Entries, table: tb}
	for m := 2; m <= tb.MaxOrder(); m++ {
		d.F[m] = make([]float64, len(tb.Tuples(m)))
		d.R[m] = make([]float64, len(tb.Tuples(m)))
	}
	d.NuDyn = make([]float64, len(tb.Tuples(2)))

	if cell.Entries == 0 || cell.Entries < e.minEntries {
		return d
	}
	d.Valid = true

	for m := 2; m <= tb.MaxOrder(); m++ {
		for slot, t := range tb.Tuples(m) {
			cum := 0.0
			for _, tm := range e.plans[m][slot] {
				v := tm.coef
				for _, f := range tm.factors {
					v *= cell.Mean(f.order, f.slot)
				}
				cum += v
			}
			d.F[m][slot] = cum

			norm := 1.0
			for _, s := range t {
				norm *= cell.Mean(1, s)
			}
			if norm != 0 {
				d.R[m][slot] = cum / norm
			}
		}
	}

	for slot, t := range tb.Tuples(2) {
		a, b := t[0], t[1]
		d.NuDyn[slot] = d.R[2][tb.Index(a, a)] + d.R[2][tb.Index(b, b)] - 2*d.R[2][slot]
	}
	return d
}

// Derived is the grid of derived cells for a whole pass.
type Derived struct {
	layout Layout
	table  *combin.Table
	cells  []DerivedCell
}

// DeriveAll sweeps every bin of acc.
func (e *Engine) DeriveAll(acc *Accumulator) *Derived {
	out := &Derived{
		layout: acc.layout,
		table:  e.table,
		cells:  make([]DerivedCell, len(acc.cells)),
	}
	for i := range acc.cells {
		out.cells[i] = e.Derive(&acc.cells[i])
	}
	return out
}

func (d *Derived) Layout() Layout       { return d.layout }
func (d *Derived) Table() *combin.Table { return d.table }

// Cell returns the derived cell at (ab, rb), or nil outside the layout.
func (d *Derived) Cell(ab, rb int) *DerivedCell {
	idx, err := d.layout.cellIndex(ab, rb)
	if err != nil {
		return nil
	}
	return &d.cells[idx]
}

// NewDerived returns an empty grid, used when restoring persisted values.
func NewDerived(layout Layout) (*Derived, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	tb := combin.NewTable(layout.Species, layout.MaxOrder())
	out := &Derived{layout: layout, table: tb, cells: make([]DerivedCell, layout.Cells())}
	for i := range out.cells {
		c := &out.cells[i]
		c.table = tb
		for m := 2; m <= tb.MaxOrder(); m++ {
			c.F[m] = make([]float64, len(tb.Tuples(m)))
			c.R[m] = make([]float64, len(tb.Tuples(m)))
		}
		c.NuDyn = make([]float64, len(tb.Tuples(2)))
	}
	return out, nil
}
