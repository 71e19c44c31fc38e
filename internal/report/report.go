// Package report renders derived observables for the terminal.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/nudyn/internal/nudyn"
)

// Observable selects one derived quantity: Kind is F, R or nudyn and Tuple
// holds species indices.
type Observable struct {
	Kind  string
	Tuple []int
	Label string
}

// ParseObservable reads "R2:pi,K", "F3:pi,pi,K" or "nudyn:pi,K". The order
// digit must match the number of species listed.
func ParseObservable(expr string, species []string) (Observable, error) {
	head, list, ok := strings.Cut(expr, ":")
	if !ok {
		return Observable{}, fmt.Errorf("observable %q: expected KIND:species,...", expr)
	}

	names := strings.Split(list, ",")
	tuple := make([]int, len(names))
	for i, n := range names {
		idx := indexOf(species, strings.TrimSpace(n))
		if idx < 0 {
			return Observable{}, fmt.Errorf("observable %q: unknown species %q", expr, n)
		}
		tuple[i] = idx
	}

	var kind string
	switch {
	case strings.EqualFold(head, "nudyn"):
		kind = "nudyn"
		if len(tuple) != 2 {
			return Observable{}, fmt.Errorf("observable %q: nudyn takes two species", expr)
		}
	case len(head) == 2 && (head[0] == 'F' || head[0] == 'R'):
		kind = head[:1]
		order := int(head[1] - '0')
		if order < 2 || order > 4 || order != len(tuple) {
			return Observable{}, fmt.Errorf("observable %q: order %c does not match %d species", expr, head[1], len(tuple))
		}
	default:
		return Observable{}, fmt.Errorf("observable %q: unknown kind %q", expr, head)
	}
	return Observable{Kind: kind, Tuple: tuple, Label: expr}, nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// DefaultObservables lists R2 and nu-dynamic for every species pair.
func DefaultObservables(d *nudyn.Derived, species []string) []Observable {
	var out []Observable
	for _, t := range d.Table().Tuples(2) {
		out = append(out, Observable{
			Kind:  "R",
			Tuple: t,
			Label: fmt.Sprintf("R2:%s,%s", species[t[0]], species[t[1]]),
		})
	}
	for _, t := range d.Table().Tuples(2) {
		if t[0] == t[1] {
			continue
		}
		out = append(out, Observable{
			Kind:  "nudyn",
			Tuple: t,
			Label: fmt.Sprintf("nudyn:%s,%s", species[t[0]], species[t[1]]),
		})
	}
	return out
}

// Value reads the observable from one cell. Orders beyond the analyzed
// maximum read as false.
func (o Observable) Value(c *nudyn.DerivedCell) (float64, bool) {
	switch o.Kind {
	case "nudyn":
		return c.NuDynOf(o.Tuple[0], o.Tuple[1]), true
	case "F":
		if c.F[len(o.Tuple)] == nil {
			return 0, false
		}
		return c.Cumulant(o.Tuple...), true
	case "R":
		if c.R[len(o.Tuple)] == nil {
			return 0, false
		}
		return c.Correlator(o.Tuple...), true
	}
	return 0, false
}

// Table prints every rapidity window of one activity bin as a row.
func Table(w io.Writer, d *nudyn.Derived, obs []Observable, activityBin int) error {
	l := d.Layout()
	if activityBin < 0 || activityBin >= l.Activity.Bins {
		return fmt.Errorf("activity bin %d outside [0, %d)", activityBin, l.Activity.Bins)
	}

	fmt.Fprintln(w, Title.Render(fmt.Sprintf("activity bin %d (%s = %.3g)",
		activityBin, l.Estimator, l.Activity.Center(activityBin))))

	cols := []string{"Y_MAX", "EVENTS"}
	for _, o := range obs {
		cols = append(cols, o.Label)
	}
	fmt.Fprintln(w, Header.Render(strings.Join(cols, "  ")))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for rb := 0; rb < l.Rapidity.Bins; rb++ {
		c := d.Cell(activityBin, rb)
		row := []string{fmt.Sprintf("%.2f", l.Rapidity.UpperEdge(rb)), fmt.Sprintf("%d", c.Entries)}
		for _, o := range obs {
			row = append(row, formatValue(c, o))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func formatValue(c *nudyn.DerivedCell, o Observable) string {
	if !c.Valid {
		return Invalid.Render("-")
	}
	v, ok := o.Value(c)
	if !ok || math.IsNaN(v) {
		return Invalid.Render("n/a")
	}
	s := fmt.Sprintf("%+.5f", v)
	if v < 0 {
		return Negative.Render(s)
	}
	return Value.Render(s)
}

// PlotRapidityScan draws one observable against the rapidity window for an
// activity bin. Invalid windows and unavailable values are plotted as zero.
func PlotRapidityScan(d *nudyn.Derived, o Observable, activityBin int) (string, error) {
	l := d.Layout()
	if activityBin < 0 || activityBin >= l.Activity.Bins {
		return "", fmt.Errorf("activity bin %d outside [0, %d)", activityBin, l.Activity.Bins)
	}

	data := make([]float64, l.Rapidity.Bins)
	for rb := range data {
		c := d.Cell(activityBin, rb)
		if !c.Valid {
			continue
		}
		v, ok := o.Value(c)
		if !ok {
			return "", fmt.Errorf("observable %s not available in this run", o.Label)
		}
		if math.IsNaN(v) {
			continue
		}
		data[rb] = v
	}

	width := 60
	if len(data) > width {
		width = len(data)
	}
	caption := fmt.Sprintf("%s vs y_max [%.2f..%.2f], activity bin %d",
		o.Label, l.Rapidity.UpperEdge(0), l.Rapidity.Max, activityBin)
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}
