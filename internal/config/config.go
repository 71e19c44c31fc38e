package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nudyn/internal/event"
	"github.com/san-kum/nudyn/internal/nudyn"
	"github.com/san-kum/nudyn/internal/storage"
)

const (
	DefaultRapidityBins = 10
	DefaultRapidityMax  = 1.0
	DefaultActivityBins = 10
	DefaultActivityMax  = 1.0
	DefaultEstimator    = event.EstimatorXsect
)

type Config struct {
	Name       string          `yaml:"name"`
	PairOnly   bool            `yaml:"pair_only"`
	MinEntries int64           `yaml:"min_entries"`
	Species    []SpeciesConfig `yaml:"species"`
	Rapidity   AxisConfig      `yaml:"rapidity"`
	Activity   ActivityConfig  `yaml:"activity"`
	Event      EventConfig     `yaml:"event"`
}

type SpeciesConfig struct {
	Name   string  `yaml:"name"`
	PDG    []int   `yaml:"pdg"`
	Charge int     `yaml:"charge"`
	PtMin  float64 `yaml:"pt_min"`
	PtMax  float64 `yaml:"pt_max"`
}

type AxisConfig struct {
	Bins int     `yaml:"bins"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

type ActivityConfig struct {
	Estimator  event.Estimator `yaml:"estimator"`
	AxisConfig `yaml:",inline"`
}

type EventConfig struct {
	MinMult float64 `yaml:"min_mult"`
	MaxMult float64 `yaml:"max_mult"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "pion-kaon",
		Species: []SpeciesConfig{
			{Name: "pi", PDG: []int{211, -211}},
			{Name: "K", PDG: []int{321, -321}},
		},
		Rapidity: AxisConfig{Bins: DefaultRapidityBins, Min: 0, Max: DefaultRapidityMax},
		Activity: ActivityConfig{
			Estimator:  DefaultEstimator,
			AxisConfig: AxisConfig{Bins: DefaultActivityBins, Min: 0, Max: DefaultActivityMax},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML on top of DefaultConfig. A species list in data
// replaces the default one.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Species = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Species == nil {
		cfg.Species = DefaultConfig().Species
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal returns the YAML form stored alongside each run.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) Layout() nudyn.Layout {
	return nudyn.Layout{
		Species:   len(c.Species),
		PairOnly:  c.PairOnly,
		Estimator: c.Activity.Estimator,
		Activity:  nudyn.Axis{Bins: c.Activity.Bins, Min: c.Activity.Min, Max: c.Activity.Max},
		Rapidity:  nudyn.Axis{Bins: c.Rapidity.Bins, Min: c.Rapidity.Min, Max: c.Rapidity.Max},
	}
}

// Validate checks the whole configuration once, before any event is read.
func (c *Config) Validate() error {
	if err := c.Layout().Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Species))
	for i, s := range c.Species {
		if s.Name == "" {
			return fmt.Errorf("%w: species %d has no name", nudyn.ErrConfig, i)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate species name %q", nudyn.ErrConfig, s.Name)
		}
		seen[s.Name] = true
		if s.PtMax > 0 && s.PtMax <= s.PtMin {
			return fmt.Errorf("%w: species %q has empty pt window", nudyn.ErrConfig, s.Name)
		}
	}
	if err := storage.CheckSpeciesNames(c.SpeciesNames()); err != nil {
		return fmt.Errorf("%w: %w", nudyn.ErrConfig, err)
	}
	if c.MinEntries < 0 {
		return fmt.Errorf("%w: min_entries must be non-negative", nudyn.ErrConfig)
	}
	return nil
}

func (c *Config) SpeciesFilters() []event.SpeciesFilter {
	out := make([]event.SpeciesFilter, len(c.Species))
	for i, s := range c.Species {
		out[i] = &event.KinematicFilter{
			Label:  s.Name,
			PDG:    s.PDG,
			Charge: s.Charge,
			PtMin:  s.PtMin,
			PtMax:  s.PtMax,
		}
	}
	return out
}

func (c *Config) SpeciesNames() []string {
	names := make([]string, len(c.Species))
	for i, s := range c.Species {
		names[i] = s.Name
	}
	return names
}

func (c *Config) EventFilter() event.EventFilter {
	if c.Event.MinMult == 0 && c.Event.MaxMult == 0 {
		return event.AcceptAll{}
	}
	return &event.MultiplicityFilter{Min: c.Event.MinMult, Max: c.Event.MaxMult}
}
