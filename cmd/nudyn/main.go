package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/nudyn/internal/config"
	"github.com/san-kum/nudyn/internal/event"
	"github.com/san-kum/nudyn/internal/logging"
	"github.com/san-kum/nudyn/internal/nudyn"
	"github.com/san-kum/nudyn/internal/report"
	"github.com/san-kum/nudyn/internal/storage"
)

var (
	dataDir  string
	logLevel string
	logDev   bool
	logger   *zap.Logger

	configFile   string
	preset       string
	runName      string
	pairOnly     bool
	rapidityBins int
	rapidityMax  float64
	activityBins int
	estimator    string
	minEntries   int64
	mergeRun     string

	activityBin int
	showBin     int
	observables []string
	outFile     string
)

// main registers the CLI commands and exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "nudyn",
		Short:        "particle multiplicity correlation analysis",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, logDev)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nudyn", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logDev, "log-dev", false, "human readable console logs")

	runCmd := &cobra.Command{
		Use:   "run [events.jsonl...]",
		Short: "analyze event files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAnalysis,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to config name)")
	runCmd.Flags().BoolVar(&pairOnly, "pair-only", false, "restrict to order 2")
	runCmd.Flags().IntVar(&rapidityBins, "rapidity-bins", config.DefaultRapidityBins, "number of rapidity windows")
	runCmd.Flags().Float64Var(&rapidityMax, "rapidity-max", config.DefaultRapidityMax, "outermost rapidity window")
	runCmd.Flags().IntVar(&activityBins, "activity-bins", config.DefaultActivityBins, "number of activity bins")
	runCmd.Flags().StringVar(&estimator, "estimator", string(config.DefaultEstimator), "activity estimator (xsect, mult)")
	runCmd.Flags().Int64Var(&minEntries, "min-entries", 0, "minimum events per bin for derivation")
	runCmd.Flags().StringVar(&mergeRun, "merge", "", "merge the moments of an earlier run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print derived observables per rapidity window",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&showBin, "activity-bin", -1, "activity bin (-1 for all)")
	showCmd.Flags().StringSliceVar(&observables, "obs", nil, "observables, e.g. R2:pi,K or nudyn:pi,K")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot an observable against the rapidity window",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&activityBin, "activity-bin", 0, "activity bin")
	plotCmd.Flags().StringSliceVar(&observables, "obs", nil, "observables, e.g. nudyn:pi,K")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export derived observables to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			return st.Delete(cmd.Context(), args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-18s %s\n", name, strings.Join(p.SpeciesNames(), ", "))
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportJSONCmd, deleteCmd, presetsCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir, logger)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

// resolveConfig applies preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("pair-only") {
		cfg.PairOnly = pairOnly
	}
	if cmd.Flags().Changed("rapidity-bins") {
		cfg.Rapidity.Bins = rapidityBins
	}
	if cmd.Flags().Changed("rapidity-max") {
		cfg.Rapidity.Max = rapidityMax
	}
	if cmd.Flags().Changed("activity-bins") {
		cfg.Activity.Bins = activityBins
	}
	if cmd.Flags().Changed("estimator") {
		cfg.Activity.Estimator = event.Estimator(estimator)
	}
	if cmd.Flags().Changed("min-entries") {
		cfg.MinEntries = minEntries
	}
	if runName != "" {
		cfg.Name = runName
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	layout := cfg.Layout()
	logger.Info("analysis configured",
		zap.String("name", cfg.Name),
		zap.Strings("species", cfg.SpeciesNames()),
		zap.Bool("pair_only", cfg.PairOnly),
		zap.Int("rapidity_bins", layout.Rapidity.Bins),
		zap.Int("activity_bins", layout.Activity.Bins),
		zap.String("estimator", string(layout.Estimator)))

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	files := make([]*os.File, 0, len(args))
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	sources := make([]event.Source, 0, len(args))
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		files = append(files, f)
		sources = append(sources, event.NewJSONSource(f))
	}

	fmt.Printf("analyzing %d file(s)...\n", len(args))
	start := time.Now()

	an, err := nudyn.RunEnsemble(ctx, layout, cfg.SpeciesFilters(), cfg.EventFilter(), sources, logger)
	if err != nil {
		return err
	}

	inputs := args
	if mergeRun != "" {
		prevMeta, err := st.Load(ctx, mergeRun)
		if err != nil {
			return fmt.Errorf("merge %s: %w", mergeRun, err)
		}
		prev, rep, err := st.LoadAccumulator(ctx, mergeRun)
		if err != nil {
			return fmt.Errorf("merge %s: %w", mergeRun, err)
		}
		if err := an.MergeAccumulator(prev, prevMeta.Stats); err != nil {
			return fmt.Errorf("merge %s: %w", mergeRun, err)
		}
		inputs = append(slices.Clone(args), prevMeta.Inputs...)
		fmt.Printf("merged run %s (%d groups, %d skipped)\n", mergeRun, rep.Groups, len(rep.Skipped))
	}

	derived := an.Finalize(cfg.MinEntries)
	elapsed := time.Since(start)

	raw, err := cfg.Marshal()
	if err != nil {
		return err
	}
	meta := storage.RunMetadata{
		Name:       cfg.Name,
		Config:     string(raw),
		Layout:     layout,
		Species:    cfg.SpeciesNames(),
		Stats:      an.Stats(),
		Inputs:     inputs,
		MinEntries: cfg.MinEntries,
	}
	runID, err := st.Save(ctx, meta, an.Accumulator(), derived)
	if err != nil {
		return err
	}

	stats := an.Stats()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("events: %d seen, %d accepted, %d rejected, %d outside activity range\n",
		stats.Seen, stats.Accepted, stats.Rejected, stats.Skipped)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSPECIES\tORDER\tEVENTS\tBINS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%dx%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			strings.Join(run.Species, ","),
			run.Layout.MaxOrder(),
			run.Stats.Accepted,
			run.Layout.Activity.Bins,
			run.Layout.Rapidity.Bins,
		)
	}

	return w.Flush()
}

func loadDerived(cmd *cobra.Command, runID string) (*storage.RunMetadata, *nudyn.Derived, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(cmd.Context(), runID)
	if err != nil {
		return nil, nil, err
	}
	d, rep, err := st.LoadDerived(cmd.Context(), runID)
	if err != nil {
		return nil, nil, err
	}
	for _, skipped := range rep.Skipped {
		fmt.Fprintln(os.Stderr, report.Subtle.Render("skipped "+skipped.Error()))
	}
	return meta, d, nil
}

func parseObservables(d *nudyn.Derived, species []string) ([]report.Observable, error) {
	if len(observables) == 0 {
		return report.DefaultObservables(d, species), nil
	}
	out := make([]report.Observable, 0, len(observables))
	for _, expr := range observables {
		o, err := report.ParseObservable(expr, species)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, d, err := loadDerived(cmd, args[0])
	if err != nil {
		return err
	}
	obs, err := parseObservables(d, meta.Species)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Name)
	fmt.Printf("species: %s\n\n", strings.Join(meta.Species, ", "))

	bins := []int{showBin}
	if showBin < 0 {
		bins = bins[:0]
		for ab := 0; ab < meta.Layout.Activity.Bins; ab++ {
			bins = append(bins, ab)
		}
	}
	for _, ab := range bins {
		if err := report.Table(os.Stdout, d, obs, ab); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, d, err := loadDerived(cmd, args[0])
	if err != nil {
		return err
	}
	obs, err := parseObservables(d, meta.Species)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("windows: %d\n\n", meta.Layout.Rapidity.Bins)

	for _, o := range obs {
		graph, err := report.PlotRapidityScan(d, o, activityBin)
		if err != nil {
			return err
		}
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, d, err := loadDerived(cmd, args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		return storage.ExportJSON(outFile, meta, d)
	}
	return storage.WriteJSON(os.Stdout, meta, d)
}
