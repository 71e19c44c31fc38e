package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/nudyn/internal/event"
)

func newRunFlags() *cobra.Command {
	cmd := &cobra.Command{Use: "run"}
	cmd.Flags().BoolVar(&pairOnly, "pair-only", false, "")
	cmd.Flags().IntVar(&rapidityBins, "rapidity-bins", 10, "")
	cmd.Flags().Float64Var(&rapidityMax, "rapidity-max", 1.0, "")
	cmd.Flags().IntVar(&activityBins, "activity-bins", 10, "")
	cmd.Flags().StringVar(&estimator, "estimator", "xsect", "")
	cmd.Flags().Int64Var(&minEntries, "min-entries", 0, "")
	return cmd
}

func TestResolveConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	data := []byte("name: file\nrapidity:\n  bins: 4\n  max: 0.8\nactivity:\n  estimator: mult\n  bins: 3\n  max: 300\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	configFile, preset, runName = path, "", ""
	t.Cleanup(func() { configFile = "" })

	cmd := newRunFlags()
	if err := cmd.Flags().Parse([]string{"--rapidity-bins", "6", "--pair-only"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if cfg.Rapidity.Bins != 6 {
		t.Errorf("flag should override file: bins %d", cfg.Rapidity.Bins)
	}
	if cfg.Rapidity.Max != 0.8 {
		t.Errorf("unset flag should keep file value: max %g", cfg.Rapidity.Max)
	}
	if !cfg.PairOnly {
		t.Error("expected pair-only from flag")
	}
	if cfg.Activity.Estimator != event.EstimatorMult || cfg.Activity.Bins != 3 {
		t.Errorf("unexpected activity config %+v", cfg.Activity)
	}
}

func TestResolveConfigErrors(t *testing.T) {
	configFile, preset, runName = "", "missing", ""
	t.Cleanup(func() { preset = "" })
	if _, err := resolveConfig(newRunFlags()); err == nil {
		t.Error("expected error for unknown preset")
	}

	preset = ""
	cmd := newRunFlags()
	if err := cmd.Flags().Parse([]string{"--estimator", "npart"}); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd); err == nil {
		t.Error("expected validation error for unknown estimator")
	}
}
