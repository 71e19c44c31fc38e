package nudyn

import (
	"math"
	"sort"

	"github.com/san-kum/nudyn/internal/event"
)

// WindowCounts holds, for one event, the number of accepted particles of
// each species inside each nested rapidity window. Counts never decrease
// with the window index.
type WindowCounts struct {
	species int
	windows int
	n       []int
}

func NewWindowCounts(species, windows int) *WindowCounts {
	return &WindowCounts{
		species: species,
		windows: windows,
		n:       make([]int, species*windows),
	}
}

// At returns the count of species s inside window k.
func (w *WindowCounts) At(s, k int) int {
	return w.n[s*w.windows+k]
}

// Set overwrites one count. It exists for callers that already hold
// per-window multiplicities; no monotonicity check is applied.
func (w *WindowCounts) Set(s, k, v int) {
	w.n[s*w.windows+k] = v
}

func (w *WindowCounts) Species() int { return w.species }
func (w *WindowCounts) Windows() int { return w.windows }

func (w *WindowCounts) Reset() {
	for i := range w.n {
		w.n[i] = 0
	}
}

// Counter turns an event into WindowCounts. The returned buffer is reused by
// the next call to Count.
type Counter struct {
	filters    []event.SpeciesFilter
	thresholds []float64
	counts     *WindowCounts
}

func NewCounter(filters []event.SpeciesFilter, thresholds []float64) *Counter {
	return &Counter{
		filters:    filters,
		thresholds: thresholds,
		counts:     NewWindowCounts(len(filters), len(thresholds)),
	}
}

// Count fills the per-window counts for ev. Each particle is histogrammed
// into the innermost window containing it, then a prefix sum over windows
// produces the cumulative counts.
func (c *Counter) Count(ev event.Event) *WindowCounts {
	w := c.counts
	w.Reset()
	nw := len(c.thresholds)

	for _, p := range ev.Particles() {
		y := math.Abs(p.Rapidity())
		k := sort.Search(nw, func(i int) bool { return y < c.thresholds[i] })
		if k == nw {
			continue
		}
		for s, f := range c.filters {
			if f.Accept(p) {
				w.n[s*nw+k]++
			}
		}
	}

	for s := 0; s < w.species; s++ {
		row := w.n[s*nw : (s+1)*nw]
		for k := 1; k < nw; k++ {
			row[k] += row[k-1]
		}
	}
	return w
}
