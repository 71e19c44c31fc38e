package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/san-kum/nudyn/internal/nudyn"
)

type ExportBin struct {
	ActivityBin int                `json:"activity_bin"`
	Activity    float64            `json:"activity"`
	RapidityBin int                `json:"rapidity_bin"`
	YMax        float64            `json:"y_max"`
	Entries     int64              `json:"entries"`
	Values      map[string]float64 `json:"values"`
}

type ExportData struct {
	Run     RunMetadata `json:"run"`
	Species []string    `json:"species"`
	Bins    []ExportBin `json:"bins"`
}

// BuildExport flattens the valid derived cells into named values keyed by
// record name. Unavailable (NaN) values are left out.
func BuildExport(meta *RunMetadata, d *nudyn.Derived) ExportData {
	l := d.Layout()
	tb := d.Table()
	data := ExportData{Run: *meta, Species: meta.Species, Bins: make([]ExportBin, 0)}

	for ab := 0; ab < l.Activity.Bins; ab++ {
		for rb := 0; rb < l.Rapidity.Bins; rb++ {
			c := d.Cell(ab, rb)
			if !c.Valid {
				continue
			}
			bin := ExportBin{
				ActivityBin: ab,
				Activity:    l.Activity.Center(ab),
				RapidityBin: rb,
				YMax:        l.Rapidity.UpperEdge(rb),
				Entries:     c.Entries,
				Values:      make(map[string]float64),
			}
			put := func(kind string, t []int, v float64) {
				if !math.IsNaN(v) {
					bin.Values[RecordName(kind, t, meta.Species)] = v
				}
			}
			for m := 2; m <= tb.MaxOrder(); m++ {
				for slot, t := range tb.Tuples(m) {
					put(KindCumulant, t, c.F[m][slot])
					put(KindCorrelator, t, c.R[m][slot])
				}
			}
			for slot, t := range tb.Tuples(2) {
				put(KindNuDyn, t, c.NuDyn[slot])
			}
			data.Bins = append(data.Bins, bin)
		}
	}
	return data
}

func ExportJSON(path string, meta *RunMetadata, d *nudyn.Derived) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, d)
}

func WriteJSON(w io.Writer, meta *RunMetadata, d *nudyn.Derived) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildExport(meta, d))
}
