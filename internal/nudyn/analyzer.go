package nudyn

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/san-kum/nudyn/internal/event"
)

// Stats counts events seen by an Analyzer.
type Stats struct {
	Seen     int64 `json:"seen"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
	Skipped  int64 `json:"skipped"`
}

// Add accumulates the counts of o.
func (s *Stats) Add(o Stats) {
	s.Seen += o.Seen
	s.Accepted += o.Accepted
	s.Rejected += o.Rejected
	s.Skipped += o.Skipped
}

// Analyzer is the context of one analysis pass. It owns the counter and the
// accumulator; nothing is shared with other analyzers.
type Analyzer struct {
	layout  Layout
	species []event.SpeciesFilter
	filter  event.EventFilter
	counter *Counter
	acc     *Accumulator
	log     *zap.Logger
	stats   Stats
}

// NewAnalyzer validates the layout against the species filters. A nil event
// filter accepts every event; a nil logger discards output.
func NewAnalyzer(layout Layout, species []event.SpeciesFilter, filter event.EventFilter, log *zap.Logger) (*Analyzer, error) {
	if len(species) != layout.Species {
		return nil, configErr("layout expects %d species, got %d filters", layout.Species, len(species))
	}
	acc, err := NewAccumulator(layout)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = event.AcceptAll{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		layout:  layout,
		species: species,
		filter:  filter,
		counter: NewCounter(species, layout.Thresholds()),
		acc:     acc,
		log:     log,
	}, nil
}

func (a *Analyzer) Layout() Layout                 { return a.layout }
func (a *Analyzer) Species() []event.SpeciesFilter { return a.species }
func (a *Analyzer) Accumulator() *Accumulator      { return a.acc }
func (a *Analyzer) Stats() Stats                   { return a.stats }

// Process runs one event through the filter, the counter and the
// accumulator. Events whose activity falls outside the activity axis are
// counted as skipped.
func (a *Analyzer) Process(ev event.Event) error {
	a.stats.Seen++
	if !a.filter.Accept(ev) {
		a.stats.Rejected++
		return nil
	}
	x := ev.Activity(a.layout.Estimator)
	ab, ok := a.layout.Activity.Find(x)
	if !ok {
		a.stats.Skipped++
		a.log.Debug("event activity outside axis",
			zap.Float64("activity", x),
			zap.String("estimator", string(a.layout.Estimator)))
		return nil
	}
	a.stats.Accepted++
	return a.acc.FillEvent(ab, a.counter.Count(ev))
}

// Run drains src. Cancellation is checked between events.
func (a *Analyzer) Run(ctx context.Context, src event.Source) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read event %d: %w", a.stats.Seen, err)
		}
		if err := a.Process(ev); err != nil {
			return err
		}
	}
}

// Merge folds another analyzer of the same layout into a.
func (a *Analyzer) Merge(o *Analyzer) error {
	if err := a.acc.Merge(o.acc); err != nil {
		return err
	}
	a.stats.Add(o.stats)
	return nil
}

// MergeAccumulator folds a restored accumulator and the event counts of the
// pass that produced it into a.
func (a *Analyzer) MergeAccumulator(acc *Accumulator, stats Stats) error {
	if err := a.acc.Merge(acc); err != nil {
		return err
	}
	a.stats.Add(stats)
	return nil
}

// Finalize derives every bin. Bins with fewer than minEntries events are
// returned invalid.
func (a *Analyzer) Finalize(minEntries int64) *Derived {
	d := NewEngine(a.acc.Table(), minEntries).DeriveAll(a.acc)
	valid := 0
	for i := range d.cells {
		if d.cells[i].Valid {
			valid++
		}
	}
	a.log.Info("derived correlators",
		zap.Int("bins", len(d.cells)),
		zap.Int("valid", valid),
		zap.Int64("accepted", a.stats.Accepted),
		zap.Int("max_order", a.layout.MaxOrder()))
	return d
}

func (a *Analyzer) Reset() {
	a.acc.Reset()
	a.stats = Stats{}
}
