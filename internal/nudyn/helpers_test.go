package nudyn

import (
	"math"
	"math/rand"

	"github.com/san-kum/nudyn/internal/event"
)

func singleBinLayout(species int) Layout {
	return Layout{
		Species:   species,
		Estimator: event.EstimatorMult,
		Activity:  Axis{Bins: 1, Min: 0, Max: 1000},
		Rapidity:  Axis{Bins: 1, Min: 0, Max: 1},
	}
}

// countsOf builds a single-window count buffer from per-species totals.
func countsOf(n ...int) *WindowCounts {
	w := NewWindowCounts(len(n), 1)
	for s, v := range n {
		w.Set(s, 0, v)
	}
	return w
}

func poisson(rng *rand.Rand, lambda float64) int {
	L := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= L {
			return k
		}
		k++
	}
}

func binomial(rng *rand.Rand, n int, p float64) int {
	k := 0
	for i := 0; i < n; i++ {
		if rng.Float64() < p {
			k++
		}
	}
	return k
}

// speciesFilter accepts tracks by PDG code.
func speciesFilter(name string, pdg int) event.SpeciesFilter {
	return &event.KinematicFilter{Label: name, PDG: []int{pdg}}
}

func makeEvent(mult float64, tracks ...event.Track) *event.Record {
	return &event.Record{Mult: mult, Tracks: tracks}
}
