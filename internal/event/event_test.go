package event

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKinematicFilter(t *testing.T) {
	piPlus := &KinematicFilter{Label: "pi+", PDG: []int{211}, Charge: 1, PtMin: 0.2, PtMax: 2.0}

	tests := []struct {
		name  string
		track Track
		want  bool
	}{
		{"accepted", Track{PDG: 211, Charge: 1, Pt: 0.5}, true},
		{"wrong pdg", Track{PDG: 321, Charge: 1, Pt: 0.5}, false},
		{"wrong charge", Track{PDG: 211, Charge: -1, Pt: 0.5}, false},
		{"below pt", Track{PDG: 211, Charge: 1, Pt: 0.1}, false},
		{"at pt max", Track{PDG: 211, Charge: 1, Pt: 2.0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := tt.track
			assert.Equal(t, tt.want, piPlus.Accept(&tr))
		})
	}

	all := &KinematicFilter{Label: "all"}
	assert.True(t, all.Accept(&Track{PDG: 2212, Charge: 1, Pt: 10}))
}

func TestMultiplicityFilter(t *testing.T) {
	f := &MultiplicityFilter{Min: 10, Max: 100}
	assert.False(t, f.Accept(&Record{Mult: 5}))
	assert.True(t, f.Accept(&Record{Mult: 10}))
	assert.False(t, f.Accept(&Record{Mult: 100}))

	open := &MultiplicityFilter{Min: 0}
	assert.True(t, open.Accept(&Record{Mult: 1e6}))
}

func TestRecordActivity(t *testing.T) {
	r := &Record{Mult: 42, Xsect: 0.3}
	assert.Equal(t, 42.0, r.Activity(EstimatorMult))
	assert.Equal(t, 0.3, r.Activity(EstimatorXsect))
	assert.True(t, EstimatorMult.Valid())
	assert.False(t, Estimator("npart").Valid())
}

func TestJSONSource(t *testing.T) {
	input := `{"mult": 12, "xsect": 0.1, "particles": [{"pdg": 211, "charge": 1, "pt": 0.4, "y": -0.3}, {"pdg": 321, "charge": -1, "pt": 0.8, "y": 1.2}]}

{"mult": 3, "xsect": 0.9, "particles": []}
`
	src := NewJSONSource(strings.NewReader(input))

	ev, err := src.Next()
	require.NoError(t, err)
	ps := ev.Particles()
	require.Len(t, ps, 2)
	assert.Equal(t, -0.3, ps[0].Rapidity())
	assert.Equal(t, 12.0, ev.Activity(EstimatorMult))

	ev, err = src.Next()
	require.NoError(t, err)
	assert.Empty(t, ev.Particles())

	_, err = src.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestJSONSourceCorruptLine(t *testing.T) {
	src := NewJSONSource(strings.NewReader("{\"mult\": 1}\n{not json\n"))
	_, err := src.Next()
	require.NoError(t, err)
	_, err = src.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource(&Record{Mult: 1}, &Record{Mult: 2})
	n := 0
	for {
		_, err := src.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 2, n)
}
