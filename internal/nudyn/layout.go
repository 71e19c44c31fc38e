package nudyn

import (
	"math"

	"github.com/san-kum/nudyn/internal/combin"
	"github.com/san-kum/nudyn/internal/event"
)

// MaxSpecies bounds the number of species filters in one analysis.
const MaxSpecies = 8

// Axis is a uniform binning of [Min, Max).
type Axis struct {
	Bins int     `json:"bins"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Find returns the bin containing x, or false when x falls outside the axis.
func (a Axis) Find(x float64) (int, bool) {
	if math.IsNaN(x) || x < a.Min || x >= a.Max {
		return -1, false
	}
	idx := int((x - a.Min) / (a.Max - a.Min) * float64(a.Bins))
	if idx >= a.Bins {
		idx = a.Bins - 1
	}
	return idx, true
}

// Center returns the midpoint of bin i.
func (a Axis) Center(i int) float64 {
	w := (a.Max - a.Min) / float64(a.Bins)
	return a.Min + (float64(i)+0.5)*w
}

// UpperEdge returns the upper edge of bin i.
func (a Axis) UpperEdge(i int) float64 {
	return a.Min + float64(i+1)*(a.Max-a.Min)/float64(a.Bins)
}

// Layout fixes everything an analysis pass needs to size its cells.
type Layout struct {
	Species   int             `json:"species"`
	PairOnly  bool            `json:"pair_only"`
	Estimator event.Estimator `json:"estimator"`
	Activity  Axis            `json:"activity"`
	Rapidity  Axis            `json:"rapidity"`
}

// MaxOrder is 2 in pair-only mode and 4 otherwise.
func (l Layout) MaxOrder() int {
	if l.PairOnly {
		return 2
	}
	return combin.MaxOrder
}

// Thresholds returns the nested window limits Y_0 < ... < Y_{K-1}; window k
// is |y| < Y_k. The last threshold equals Rapidity.Max.
func (l Layout) Thresholds() []float64 {
	ys := make([]float64, l.Rapidity.Bins)
	for k := range ys {
		ys[k] = l.Rapidity.UpperEdge(k)
	}
	return ys
}

// Cells returns the number of (activity, rapidity) bins.
func (l Layout) Cells() int {
	return l.Activity.Bins * l.Rapidity.Bins
}

func (l Layout) Validate() error {
	if l.Species < 1 || l.Species > MaxSpecies {
		return configErr("species count %d outside [1, %d]", l.Species, MaxSpecies)
	}
	if !l.Estimator.Valid() {
		return configErr("unknown activity estimator %q", l.Estimator)
	}
	if l.Activity.Bins < 1 {
		return configErr("activity bins must be positive, got %d", l.Activity.Bins)
	}
	if !(l.Activity.Max > l.Activity.Min) {
		return configErr("activity range [%g, %g) is empty", l.Activity.Min, l.Activity.Max)
	}
	if l.Rapidity.Bins < 1 {
		return configErr("rapidity bins must be positive, got %d", l.Rapidity.Bins)
	}
	if l.Rapidity.Min < 0 {
		return configErr("rapidity minimum must be non-negative, got %g", l.Rapidity.Min)
	}
	if !(l.Rapidity.Max > l.Rapidity.Min) {
		return configErr("rapidity thresholds must increase: min %g, max %g", l.Rapidity.Min, l.Rapidity.Max)
	}
	return nil
}

func (l Layout) cellIndex(ab, rb int) (int, error) {
	if ab < 0 || ab >= l.Activity.Bins || rb < 0 || rb >= l.Rapidity.Bins {
		return 0, &BinError{ActivityBin: ab, RapidityBin: rb, Wrapped: ErrBinOutOfRange}
	}
	return ab*l.Rapidity.Bins + rb, nil
}
