package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/san-kum/nudyn/internal/nudyn"
)

type recordWriter struct {
	ctx     context.Context
	stmt    *sql.Stmt
	runID   string
	species []string
	written int
}

func (w *recordWriter) put(kind string, tuple []int, ab, rb int, entries int64, sum, sumSq, value float64) error {
	_, err := w.stmt.ExecContext(w.ctx, w.runID, RecordName(kind, tuple, w.species), kind, len(tuple),
		formatTuple(tuple), ab, rb, entries, sum, sumSq, value)
	if err != nil {
		return fmt.Errorf("insert %s: %w", RecordName(kind, tuple, w.species), err)
	}
	w.written++
	return nil
}

func (w *recordWriter) moments(acc *nudyn.Accumulator) error {
	l := acc.Layout()
	tb := acc.Table()
	for ab := 0; ab < l.Activity.Bins; ab++ {
		for rb := 0; rb < l.Rapidity.Bins; rb++ {
			cell, err := acc.Cell(ab, rb)
			if err != nil {
				return err
			}
			if cell.Entries == 0 {
				continue
			}
			for m := 1; m <= tb.MaxOrder(); m++ {
				for slot, t := range tb.Tuples(m) {
					mo := cell.F[m][slot]
					if err := w.put(KindMoment, t, ab, rb, mo.N, mo.Sum, mo.SumSq, mo.Mean()); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (w *recordWriter) derived(d *nudyn.Derived) error {
	l := d.Layout()
	tb := d.Table()
	for ab := 0; ab < l.Activity.Bins; ab++ {
		for rb := 0; rb < l.Rapidity.Bins; rb++ {
			c := d.Cell(ab, rb)
			if !c.Valid {
				continue
			}
			for m := 2; m <= tb.MaxOrder(); m++ {
				for slot, t := range tb.Tuples(m) {
					if err := w.put(KindCumulant, t, ab, rb, c.Entries, 0, 0, c.F[m][slot]); err != nil {
						return err
					}
					if err := w.put(KindCorrelator, t, ab, rb, c.Entries, 0, 0, c.R[m][slot]); err != nil {
						return err
					}
				}
			}
			for slot, t := range tb.Tuples(2) {
				if err := w.put(KindNuDyn, t, ab, rb, c.Entries, 0, 0, c.NuDyn[slot]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// RecordError describes a record group that could not be imported.
type RecordError struct {
	Name   string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("storage: record group %s: %s", e.Name, e.Reason)
}

// ImportReport summarizes an import. Values of skipped groups read as NaN in
// the rebuilt cells; Missing lists expected groups with no records at all.
type ImportReport struct {
	Groups  int
	Records int
	Skipped []*RecordError
	Missing []string
}

type row struct {
	name    string
	kind    string
	ord     int
	tuple   []int
	ab, rb  int
	entries int64
	sum     float64
	sumSq   float64
	value   float64
}

// readGroups loads every record of the given kinds and groups them by name.
// A group with any malformed row is reported and dropped as a whole.
func (s *Store) readGroups(ctx context.Context, runID string, meta *RunMetadata, kinds []string, minOrder int, report *ImportReport) (map[string][]row, map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, kind, ord, tuple, activity_bin, rapidity_bin, entries, sum, sum_sq, value
		 FROM records WHERE run_id = ? ORDER BY name, activity_bin, rapidity_bin`, runID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	l := meta.Layout
	groups := make(map[string][]row)
	bad := make(map[string]string)
	for rows.Next() {
		var (
			r     row
			tuple string
		)
		if err := rows.Scan(&r.name, &r.kind, &r.ord, &tuple, &r.ab, &r.rb, &r.entries, &r.sum, &r.sumSq, &r.value); err != nil {
			return nil, nil, err
		}
		if !slices.Contains(kinds, r.kind) {
			continue
		}
		if _, dropped := bad[r.name]; dropped {
			continue
		}
		if reason := validateRow(&r, tuple, l, meta.Species, minOrder); reason != "" {
			bad[r.name] = reason
			delete(groups, r.name)
			continue
		}
		groups[r.name] = append(groups[r.name], r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	for name, reason := range bad {
		rerr := &RecordError{Name: name, Reason: reason}
		report.Skipped = append(report.Skipped, rerr)
		s.log.Warn("skipping record group", zap.String("run", runID), zap.Error(rerr))
	}
	slices.SortFunc(report.Skipped, func(a, b *RecordError) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return groups, bad, nil
}

func validateRow(r *row, tuple string, l nudyn.Layout, species []string, minOrder int) string {
	t, err := parseTuple(tuple)
	if err != nil {
		return fmt.Sprintf("bad tuple %q: %v", tuple, err)
	}
	r.tuple = t
	if r.ord != len(t) || r.ord < minOrder || r.ord > l.MaxOrder() {
		return fmt.Sprintf("order %d does not fit tuple %v", r.ord, t)
	}
	if r.kind == KindNuDyn && r.ord != 2 {
		return "nu-dynamic record is not a pair"
	}
	if !slices.IsSorted(t) {
		return fmt.Sprintf("tuple %v is not canonical", t)
	}
	for _, sp := range t {
		if sp < 0 || sp >= len(species) {
			return fmt.Sprintf("species index %d out of range", sp)
		}
	}
	if want := RecordName(r.kind, t, species); r.name != want {
		return fmt.Sprintf("name does not match tuple (want %s)", want)
	}
	if r.ab < 0 || r.ab >= l.Activity.Bins || r.rb < 0 || r.rb >= l.Rapidity.Bins {
		return fmt.Sprintf("bin (%d, %d) out of range", r.ab, r.rb)
	}
	if r.entries < 0 {
		return "negative entry count"
	}
	return ""
}

// LoadAccumulator rebuilds the moment cells of a run.
func (s *Store) LoadAccumulator(ctx context.Context, runID string) (*nudyn.Accumulator, *ImportReport, error) {
	meta, err := s.Load(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	acc, err := nudyn.NewAccumulator(meta.Layout)
	if err != nil {
		return nil, nil, err
	}

	report := &ImportReport{}
	groups, bad, err := s.readGroups(ctx, runID, meta, []string{KindMoment}, 1, report)
	if err != nil {
		return nil, nil, err
	}

	tb := acc.Table()
	for m := 1; m <= tb.MaxOrder(); m++ {
		for slot, t := range tb.Tuples(m) {
			name := RecordName(KindMoment, t, meta.Species)
			if _, skipped := bad[name]; skipped {
				continue
			}
			g, ok := groups[name]
			if !ok {
				report.Missing = append(report.Missing, name)
				continue
			}
			report.Groups++
			for _, r := range g {
				cell, err := acc.Cell(r.ab, r.rb)
				if err != nil {
					return nil, nil, err
				}
				cell.F[m][slot] = nudyn.Moment{N: r.entries, Sum: r.sum, SumSq: r.sumSq}
				if r.entries > cell.Entries {
					cell.Entries = r.entries
				}
				report.Records++
			}
		}
	}
	s.logReport(runID, KindMoment, report)
	return acc, report, nil
}

// LoadDerived rebuilds the derived cells of a run.
func (s *Store) LoadDerived(ctx context.Context, runID string) (*nudyn.Derived, *ImportReport, error) {
	meta, err := s.Load(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	d, err := nudyn.NewDerived(meta.Layout)
	if err != nil {
		return nil, nil, err
	}

	report := &ImportReport{}
	groups, bad, err := s.readGroups(ctx, runID, meta, []string{KindCumulant, KindCorrelator, KindNuDyn}, 2, report)
	if err != nil {
		return nil, nil, err
	}

	tb := d.Table()
	apply := func(kind string, t []int, set func(c *nudyn.DerivedCell, v float64)) {
		name := RecordName(kind, t, meta.Species)
		if _, skipped := bad[name]; skipped {
			return
		}
		g, ok := groups[name]
		if !ok {
			report.Missing = append(report.Missing, name)
			return
		}
		report.Groups++
		for _, r := range g {
			c := d.Cell(r.ab, r.rb)
			if !c.Valid {
				markUnavailable(c)
				c.Valid = true
			}
			c.Entries = r.entries
			set(c, r.value)
			report.Records++
		}
	}

	for m := 2; m <= tb.MaxOrder(); m++ {
		for slot, t := range tb.Tuples(m) {
			apply(KindCumulant, t, func(c *nudyn.DerivedCell, v float64) { c.F[m][slot] = v })
			apply(KindCorrelator, t, func(c *nudyn.DerivedCell, v float64) { c.R[m][slot] = v })
		}
	}
	for slot, t := range tb.Tuples(2) {
		apply(KindNuDyn, t, func(c *nudyn.DerivedCell, v float64) { c.NuDyn[slot] = v })
	}
	s.logReport(runID, "derived", report)
	return d, report, nil
}

// markUnavailable sets every value of c to NaN so that values whose group
// was skipped or missing cannot be read as measurements.
func markUnavailable(c *nudyn.DerivedCell) {
	nan := math.NaN()
	for m := range c.F {
		for i := range c.F[m] {
			c.F[m][i] = nan
		}
		for i := range c.R[m] {
			c.R[m][i] = nan
		}
	}
	for i := range c.NuDyn {
		c.NuDyn[i] = nan
	}
}

func (s *Store) logReport(runID, what string, r *ImportReport) {
	s.log.Info("imported records",
		zap.String("run", runID),
		zap.String("kind", what),
		zap.Int("groups", r.Groups),
		zap.Int("records", r.Records),
		zap.Int("skipped", len(r.Skipped)),
		zap.Int("missing", len(r.Missing)))
}
