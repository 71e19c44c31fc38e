package nudyn

import (
	"fmt"
	"math"

	"github.com/san-kum/nudyn/internal/combin"
)

// Moment is a running mean with its second moment for error estimates.
type Moment struct {
	N     int64   `json:"n"`
	Sum   float64 `json:"sum"`
	SumSq float64 `json:"sum_sq"`
}

func (m *Moment) Add(v float64) {
	m.N++
	m.Sum += v
	m.SumSq += v * v
}

func (m *Moment) Merge(o Moment) {
	m.N += o.N
	m.Sum += o.Sum
	m.SumSq += o.SumSq
}

// Mean is 0 for an empty moment.
func (m Moment) Mean() float64 {
	if m.N == 0 {
		return 0
	}
	return m.Sum / float64(m.N)
}

// MeanSquare is the running mean of the squared value.
func (m Moment) MeanSquare() float64 {
	if m.N == 0 {
		return 0
	}
	return m.SumSq / float64(m.N)
}

// Variance is the population variance of the accumulated values.
func (m Moment) Variance() float64 {
	if m.N == 0 {
		return 0
	}
	mean := m.Mean()
	v := m.MeanSquare() - mean*mean
	if v < 0 {
		return 0
	}
	return v
}

// StdErr is the standard error of the mean.
func (m Moment) StdErr() float64 {
	if m.N < 2 {
		return 0
	}
	return math.Sqrt(m.Variance() / float64(m.N-1))
}

// MomentCell holds the raw factorial moments of one (activity, rapidity)
// bin. F[m][slot] is the moment of the order-m combination at that slot.
type MomentCell struct {
	Entries int64
	F       [combin.MaxOrder + 1][]Moment
}

func newMomentCell(tb *combin.Table) MomentCell {
	var c MomentCell
	for m := 1; m <= tb.MaxOrder(); m++ {
		c.F[m] = make([]Moment, len(tb.Tuples(m)))
	}
	return c
}

// Mean returns the running mean f_m at the given slot.
func (c *MomentCell) Mean(order, slot int) float64 {
	return c.F[order][slot].Mean()
}

func (c *MomentCell) reset() {
	c.Entries = 0
	for m := range c.F {
		clear(c.F[m])
	}
}

func (c *MomentCell) merge(o *MomentCell) {
	c.Entries += o.Entries
	for m := range c.F {
		for i := range c.F[m] {
			c.F[m][i].Merge(o.F[m][i])
		}
	}
}

// Accumulator folds per-event window counts into the moment cells of one
// analysis pass. Cells are stored activity-major.
type Accumulator struct {
	layout Layout
	table  *combin.Table
	runs   [combin.MaxOrder + 1][][]combin.Run
	cells  []MomentCell
	ff     []float64
}

func NewAccumulator(layout Layout) (*Accumulator, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	tb := combin.NewTable(layout.Species, layout.MaxOrder())
	a := &Accumulator{
		layout: layout,
		table:  tb,
		cells:  make([]MomentCell, layout.Cells()),
		ff:     make([]float64, layout.Species*(combin.MaxOrder+1)),
	}
	for m := 1; m <= tb.MaxOrder(); m++ {
		tuples := tb.Tuples(m)
		a.runs[m] = make([][]combin.Run, len(tuples))
		for i, t := range tuples {
			a.runs[m][i] = combin.Runs(t)
		}
	}
	for i := range a.cells {
		a.cells[i] = newMomentCell(tb)
	}
	return a, nil
}

func (a *Accumulator) Layout() Layout       { return a.layout }
func (a *Accumulator) Table() *combin.Table { return a.table }

// Cell returns the cell at the given bin.
func (a *Accumulator) Cell(ab, rb int) (*MomentCell, error) {
	idx, err := a.layout.cellIndex(ab, rb)
	if err != nil {
		return nil, err
	}
	return &a.cells[idx], nil
}

// Fill folds the counts of window rb into the cell (ab, rb).
func (a *Accumulator) Fill(ab, rb int, counts *WindowCounts) error {
	if counts.Species() != a.layout.Species || counts.Windows() != a.layout.Rapidity.Bins {
		return fmt.Errorf("%w: counts for %d species x %d windows", ErrLayoutMismatch, counts.Species(), counts.Windows())
	}
	idx, err := a.layout.cellIndex(ab, rb)
	if err != nil {
		return err
	}
	a.fill(&a.cells[idx], counts, rb)
	return nil
}

// FillEvent folds one event into every rapidity window of activity bin ab.
func (a *Accumulator) FillEvent(ab int, counts *WindowCounts) error {
	for rb := 0; rb < a.layout.Rapidity.Bins; rb++ {
		if err := a.Fill(ab, rb, counts); err != nil {
			return err
		}
	}
	return nil
}

func (a *Accumulator) fill(cell *MomentCell, counts *WindowCounts, k int) {
	const stride = combin.MaxOrder + 1
	maxOrder := a.table.MaxOrder()

	// ff[s*stride+r] = n_s (n_s - 1) ... (n_s - r + 1)
	for s := 0; s < a.layout.Species; s++ {
		n := float64(counts.At(s, k))
		a.ff[s*stride] = 1
		for r := 1; r <= maxOrder; r++ {
			a.ff[s*stride+r] = a.ff[s*stride+r-1] * (n - float64(r-1))
		}
	}

	cell.Entries++
	for m := 1; m <= maxOrder; m++ {
		for i, runs := range a.runs[m] {
			v := 1.0
			for _, r := range runs {
				v *= a.ff[r.Species*stride+r.Len]
			}
			cell.F[m][i].Add(v)
		}
	}
}

// Merge adds the contents of o, which must share the same layout.
func (a *Accumulator) Merge(o *Accumulator) error {
	if a.layout != o.layout {
		return ErrLayoutMismatch
	}
	for i := range a.cells {
		a.cells[i].merge(&o.cells[i])
	}
	return nil
}

func (a *Accumulator) Reset() {
	for i := range a.cells {
		a.cells[i].reset()
	}
}
