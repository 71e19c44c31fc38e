package event

import "slices"

// KinematicFilter accepts tracks by PDG code, charge sign and transverse
// momentum window. Zero-valued constraints are ignored.
type KinematicFilter struct {
	Label  string
	PDG    []int
	Charge int
	PtMin  float64
	PtMax  float64
}

func (f *KinematicFilter) Name() string { return f.Label }

func (f *KinematicFilter) Accept(p Particle) bool {
	t, ok := p.(*Track)
	if !ok {
		return false
	}
	if len(f.PDG) > 0 && !slices.Contains(f.PDG, t.PDG) {
		return false
	}
	if f.Charge != 0 && sign(t.Charge) != sign(f.Charge) {
		return false
	}
	if f.PtMin > 0 && t.Pt < f.PtMin {
		return false
	}
	if f.PtMax > 0 && t.Pt >= f.PtMax {
		return false
	}
	return true
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// MultiplicityFilter accepts events whose reference multiplicity lies in
// [Min, Max). Max <= 0 disables the upper bound.
type MultiplicityFilter struct {
	Min float64
	Max float64
}

func (f *MultiplicityFilter) Accept(ev Event) bool {
	m := ev.Activity(EstimatorMult)
	if m < f.Min {
		return false
	}
	if f.Max > 0 && m >= f.Max {
		return false
	}
	return true
}

// AcceptAll passes every event.
type AcceptAll struct{}

func (AcceptAll) Accept(Event) bool { return true }
