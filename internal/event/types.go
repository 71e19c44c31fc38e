// Package event defines the particle and event records consumed by the
// analysis, the species and event acceptance filters, and event sources.
package event

// Particle is a single reconstructed or generated track.
type Particle interface {
	Rapidity() float64
}

// Event is one collision: a particle list plus global activity estimators.
type Event interface {
	Particles() []Particle
	Activity(est Estimator) float64
}

// SpeciesFilter decides whether a particle belongs to a species. It must be
// stable and free of side effects.
type SpeciesFilter interface {
	Name() string
	Accept(p Particle) bool
}

// EventFilter is the upstream event-level acceptance.
type EventFilter interface {
	Accept(ev Event) bool
}

// Estimator selects the scalar used to bin events by activity.
type Estimator string

const (
	// EstimatorXsect is the cross-section fraction (centrality proxy).
	EstimatorXsect Estimator = "xsect"
	// EstimatorMult is the reference multiplicity.
	EstimatorMult Estimator = "mult"
)

// Valid reports whether e is a recognized estimator.
func (e Estimator) Valid() bool {
	return e == EstimatorXsect || e == EstimatorMult
}

// Track is the concrete particle record read from event files.
type Track struct {
	PDG    int     `json:"pdg"`
	Charge int     `json:"charge"`
	Pt     float64 `json:"pt"`
	Y      float64 `json:"y"`
}

func (t *Track) Rapidity() float64 { return t.Y }

// Record is the concrete event record read from event files.
type Record struct {
	Mult   float64 `json:"mult"`
	Xsect  float64 `json:"xsect"`
	Tracks []Track `json:"particles"`

	particles []Particle
}

func (r *Record) Particles() []Particle {
	if r.particles == nil || len(r.particles) != len(r.Tracks) {
		r.particles = make([]Particle, len(r.Tracks))
		for i := range r.Tracks {
			r.particles[i] = &r.Tracks[i]
		}
	}
	return r.particles
}

func (r *Record) Activity(est Estimator) float64 {
	switch est {
	case EstimatorXsect:
		return r.Xsect
	default:
		return r.Mult
	}
}
