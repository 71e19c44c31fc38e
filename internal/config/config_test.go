package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/nudyn/internal/event"
	"github.com/san-kum/nudyn/internal/nudyn"
	"github.com/san-kum/nudyn/internal/storage"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Species) != 2 {
		t.Errorf("expected 2 species, got %d", len(cfg.Species))
	}
	if cfg.Activity.Estimator != event.EstimatorXsect {
		t.Errorf("expected xsect estimator, got %s", cfg.Activity.Estimator)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
name: test
pair_only: true
species:
  - name: pos
    charge: 1
  - name: neg
    charge: -1
  - name: p
    pdg: [2212]
    pt_min: 0.4
    pt_max: 2.0
rapidity:
  bins: 4
  max: 0.8
activity:
  estimator: mult
  bins: 5
  min: 0
  max: 500
event:
  min_mult: 10
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	l := cfg.Layout()
	if l.Species != 3 || !l.PairOnly {
		t.Errorf("unexpected layout %+v", l)
	}
	if l.Rapidity.Bins != 4 || l.Rapidity.Max != 0.8 || l.Rapidity.Min != 0 {
		t.Errorf("unexpected rapidity axis %+v", l.Rapidity)
	}
	if l.Activity.Max != 500 || l.Estimator != event.EstimatorMult {
		t.Errorf("unexpected activity axis %+v", l.Activity)
	}
	if _, ok := cfg.EventFilter().(*event.MultiplicityFilter); !ok {
		t.Errorf("expected multiplicity filter, got %T", cfg.EventFilter())
	}

	filters := cfg.SpeciesFilters()
	if filters[2].Name() != "p" {
		t.Errorf("expected species p, got %s", filters[2].Name())
	}
	if !filters[2].Accept(&event.Track{PDG: 2212, Pt: 1.0}) {
		t.Error("proton filter should accept a 1 GeV proton")
	}
}

func TestParseKeepsDefaultSpecies(t *testing.T) {
	cfg, err := Parse([]byte("pair_only: true\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(cfg.Species) != 2 {
		t.Errorf("expected default species, got %d", len(cfg.Species))
	}
	if _, ok := cfg.EventFilter().(event.AcceptAll); !ok {
		t.Errorf("expected accept-all filter, got %T", cfg.EventFilter())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no species", func(c *Config) { c.Species = nil }},
		{"too many species", func(c *Config) {
			for i := 0; i < nudyn.MaxSpecies; i++ {
				c.Species = append(c.Species, SpeciesConfig{Name: string(rune('a' + i))})
			}
		}},
		{"unnamed species", func(c *Config) { c.Species[0].Name = "" }},
		{"duplicate species", func(c *Config) { c.Species[1].Name = c.Species[0].Name }},
		{"empty pt window", func(c *Config) { c.Species[0].PtMin, c.Species[0].PtMax = 1, 0.5 }},
		{"non-increasing rapidity", func(c *Config) { c.Rapidity.Max = c.Rapidity.Min }},
		{"unknown estimator", func(c *Config) { c.Activity.Estimator = "npart" }},
		{"negative min entries", func(c *Config) { c.MinEntries = -1 }},
		{"separator in species name", func(c *Config) {
			c.Species = []SpeciesConfig{{Name: "a"}, {Name: "b_c"}, {Name: "a_b"}, {Name: "c"}}
		}},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !errors.Is(err, nudyn.ErrConfig) {
			t.Errorf("%s: expected ErrConfig, got %v", tt.name, err)
		}
	}

	cfg := DefaultConfig()
	cfg.Species = []SpeciesConfig{{Name: "a"}, {Name: "b_c"}}
	if err := cfg.Validate(); !errors.Is(err, storage.ErrSpeciesName) {
		t.Errorf("expected ErrSpeciesName, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	cfg := GetPreset("pion-kaon-proton")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Name != cfg.Name || len(loaded.Species) != 3 {
		t.Errorf("round trip lost data: %+v", loaded)
	}
	if loaded.Layout() != cfg.Layout() {
		t.Errorf("layout changed: %+v vs %+v", loaded.Layout(), cfg.Layout())
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("charge")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Activity.Estimator != event.EstimatorMult {
		t.Errorf("expected mult estimator, got %s", cfg.Activity.Estimator)
	}

	cfg.Species[0].Name = "changed"
	if Presets["charge"].Species[0].Name == "changed" {
		t.Error("GetPreset should return a copy")
	}

	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}
