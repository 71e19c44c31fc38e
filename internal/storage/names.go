package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Record kinds.
const (
	KindMoment     = "moment"
	KindCumulant   = "cumulant"
	KindCorrelator = "correlator"
	KindNuDyn      = "nudyn"
)

var kindTags = map[string]string{
	KindMoment:     "f",
	KindCumulant:   "F",
	KindCorrelator: "R",
	KindNuDyn:      "nudyn",
}

// ErrSpeciesName is returned when a species list cannot give every tuple a
// distinct record name.
var ErrSpeciesName = errors.New("storage: species names do not form distinct record names")

// CheckSpeciesNames rejects empty or duplicate names and names containing the
// '_' separator, which would let two tuples share one record name.
func CheckSpeciesNames(species []string) error {
	seen := make(map[string]bool, len(species))
	for i, s := range species {
		switch {
		case s == "":
			return fmt.Errorf("%w: species %d has no name", ErrSpeciesName, i)
		case strings.Contains(s, "_"):
			return fmt.Errorf("%w: %q contains '_'", ErrSpeciesName, s)
		case seen[s]:
			return fmt.Errorf("%w: duplicate %q", ErrSpeciesName, s)
		}
		seen[s] = true
	}
	return nil
}

// RecordName returns the deterministic name of a record group, built from
// the species names in canonical tuple order, e.g. NuDyn_f3_pi_K_K or
// NuDyn_nudyn_pi_K.
func RecordName(kind string, tuple []int, species []string) string {
	var b strings.Builder
	b.WriteString("NuDyn_")
	b.WriteString(kindTags[kind])
	if kind != KindNuDyn {
		b.WriteString(strconv.Itoa(len(tuple)))
	}
	for _, s := range tuple {
		b.WriteByte('_')
		b.WriteString(species[s])
	}
	return b.String()
}

func formatTuple(t []int) string {
	parts := make([]string, len(t))
	for i, s := range t {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

func parseTuple(s string) ([]int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty tuple")
	}
	parts := strings.Split(s, ",")
	t := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		t[i] = v
	}
	return t, nil
}
