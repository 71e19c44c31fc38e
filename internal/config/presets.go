package config

import "sort"

var Presets = map[string]*Config{
	"pion-kaon": DefaultConfig(),
	"charge": {
		Name: "charge",
		Species: []SpeciesConfig{
			{Name: "pos", Charge: 1, PtMin: 0.2, PtMax: 2.0},
			{Name: "neg", Charge: -1, PtMin: 0.2, PtMax: 2.0},
		},
		Rapidity: AxisConfig{Bins: 10, Min: 0, Max: 1.0},
		Activity: ActivityConfig{
			Estimator:  "mult",
			AxisConfig: AxisConfig{Bins: 20, Min: 0, Max: 400},
		},
	},
	"pion-kaon-proton": {
		Name: "pion-kaon-proton",
		Species: []SpeciesConfig{
			{Name: "pi", PDG: []int{211, -211}},
			{Name: "K", PDG: []int{321, -321}},
			{Name: "p", PDG: []int{2212, -2212}},
		},
		Rapidity: AxisConfig{Bins: 5, Min: 0, Max: 0.5},
		Activity: ActivityConfig{
			Estimator:  "xsect",
			AxisConfig: AxisConfig{Bins: 10, Min: 0, Max: 1.0},
		},
	},
	"kaon-pairs": {
		Name:     "kaon-pairs",
		PairOnly: true,
		Species: []SpeciesConfig{
			{Name: "K+", PDG: []int{321}},
			{Name: "K-", PDG: []int{-321}},
		},
		Rapidity: AxisConfig{Bins: 10, Min: 0, Max: 1.0},
		Activity: ActivityConfig{
			Estimator:  "xsect",
			AxisConfig: AxisConfig{Bins: 10, Min: 0, Max: 1.0},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	cp.Species = append([]SpeciesConfig(nil), p.Species...)
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
