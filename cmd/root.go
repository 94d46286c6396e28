package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/jammed-packing/sim"
	"github.com/inference-sim/jammed-packing/sim/store"
	"github.com/inference-sim/jammed-packing/sim/trace"
)

var (
	// CLI flags shared by every engine-driving command
	seed             int64   // Seed for the placement stream
	logLevel         string  // Log verbosity level
	configPath       string  // Generator config YAML
	presetName       string  // Preset from defaults.yaml
	defaultsFilePath string  // Path to defaults.yaml
	poolSize         int     // Pending candidates
	historySize      int     // History window capacity
	selectionPolicy  string  // draw-scan or threshold
	softnessExponent float64 // Global softness exponent
	asymmetricNorm   bool    // Normalize both compression shares by the candidate's give
	candidateUpdates string  // live or stale

	// CLI flags for `run`
	numTicks       int64  // Ticks to run
	traceLevel     string // none, placements, candidates
	metricsOutPath string // JSON metrics output
	varianceWindow int64  // Window (ticks) for number variance
	storePath      string // SQLite run store; empty disables persistence
	printReport    bool   // Print the final engine snapshot
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "jampack",
	Short: "Stochastic rhythm generator based on the jammed packing of soft spheres",
}

// runCmd runs the engine for a fixed number of ticks and reports placement statistics
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the generator for a number of ticks",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveGeneratorConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q. Valid: none, placements, candidates", traceLevel)
		}
		if numTicks <= 0 {
			logrus.Fatalf("--ticks must be positive, got %d", numTicks)
		}

		result, err := executeRun(cfg, runOptions{
			Seed:           seed,
			Ticks:          numTicks,
			TraceLevel:     trace.TraceLevel(traceLevel),
			VarianceWindow: varianceWindow,
			Report:         printReport,
		}, os.Stdout)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		if err := result.Metrics.SaveResults(result.RunID, varianceWindow, metricsOutPath); err != nil {
			logrus.Fatalf("%v", err)
		}
		if storePath != "" {
			if err := persistRun(cmd.Context(), storePath, cfg, result); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		logrus.Info("Generation complete.")
	},
}

// setupLogging applies --log.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveGeneratorConfig layers the generator configuration: built-in defaults,
// then --preset, then --config, then any flag the user set explicitly.
func resolveGeneratorConfig(cmd *cobra.Command) (*sim.GeneratorConfig, error) {
	cfg := &sim.GeneratorConfig{}
	if presetName != "" {
		preset, err := GetPreset(presetName, defaultsFilePath)
		if err != nil {
			return nil, err
		}
		cfg = preset
		logrus.Infof("Using preset %q from %s", presetName, defaultsFilePath)
	}
	if configPath != "" {
		fileCfg, err := sim.LoadGeneratorConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if len(cfg.Species) == 0 {
		cfg.Species = sim.DefaultSpecies()
	}

	// Flags override presets and files only when set explicitly
	flags := cmd.Flags()
	if flags.Changed("pool-size") {
		cfg.PoolSize = poolSize
	}
	if flags.Changed("history") {
		cfg.HistorySize = historySize
	}
	if flags.Changed("selection") {
		cfg.Selection = selectionPolicy
	}
	if flags.Changed("exp") {
		v := softnessExponent
		cfg.SoftnessExponent = &v
	}
	if flags.Changed("asymmetric-normalization") {
		v := asymmetricNorm
		cfg.AsymmetricNormalization = &v
	}
	if flags.Changed("candidate-updates") {
		cfg.CandidateUpdates = candidateUpdates
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	return cfg, nil
}

// newEngine builds an engine on the placement stream of seed.
func newEngine(cfg *sim.GeneratorConfig, seed int64) (*sim.Engine, error) {
	rng := sim.NewPartitionedRNG(sim.NewGeneratorKey(seed)).ForSubsystem(sim.SubsystemPlacement)
	return sim.NewEngine(cfg.EngineConfig(), rng)
}

type runOptions struct {
	Seed           int64
	Ticks          int64
	TraceLevel     trace.TraceLevel
	VarianceWindow int64
	Report         bool
}

type runResult struct {
	RunID      string
	Seed       int64
	Metrics    *sim.Metrics
	Placements []store.Placement
	Trace      *trace.GeneratorTrace
	Snapshot   sim.Snapshot
}

// executeRun ticks a fresh engine and writes the metrics summary to w.
func executeRun(cfg *sim.GeneratorConfig, opts runOptions, w io.Writer) (*runResult, error) {
	engine, err := newEngine(cfg, opts.Seed)
	if err != nil {
		return nil, err
	}
	var gt *trace.GeneratorTrace
	if opts.TraceLevel != "" && opts.TraceLevel != trace.TraceLevelNone {
		gt = trace.NewGeneratorTrace(trace.TraceConfig{Level: opts.TraceLevel})
		engine.SetTrace(gt)
	}

	logrus.Infof("Starting generation: seed=%d, ticks=%d", opts.Seed, opts.Ticks)
	startTime := time.Now()

	metrics := sim.NewMetrics()
	placements := make([]store.Placement, 0, min(opts.Ticks, 1<<16))
	for i := int64(0); i < opts.Ticks; i++ {
		out := engine.Tick()
		metrics.Observe(out)
		if out.Placed {
			placements = append(placements, store.Placement{Tick: out.Tick, SpeciesID: out.SpeciesID, Forced: out.Forced})
		}
	}
	logrus.Infof("Generated %d ticks in %v", opts.Ticks, time.Since(startTime))

	result := &runResult{
		RunID:      store.NewRunID(),
		Seed:       opts.Seed,
		Metrics:    metrics,
		Placements: placements,
		Trace:      gt,
		Snapshot:   engine.Snapshot(),
	}

	fmt.Fprintf(w, "Run %s\n", result.RunID)
	metrics.Print(w, opts.VarianceWindow)
	if gt != nil {
		printTraceSummary(w, trace.Summarize(gt))
	}
	if opts.Report {
		fmt.Fprintln(w, "=== Final State ===")
		result.Snapshot.Report(w)
	}
	return result, nil
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Steps recorded       : %d\n", s.TotalSteps)
	fmt.Fprintf(w, "Placed / empty       : %d / %d\n", s.PlacedCount, s.EmptyCount)
	fmt.Fprintf(w, "Unique species       : %d\n", s.UniqueSpecies)
	fmt.Fprintf(w, "Mean / max gap       : %.2f / %d ticks\n", s.MeanGap, s.MaxGap)
	if s.RejectedEdits > 0 {
		fmt.Fprintf(w, "Rejected edits       : %d\n", s.RejectedEdits)
	}
}

// persistRun saves a finished run and its placements to the SQLite store at path.
func persistRun(ctx context.Context, path string, cfg *sim.GeneratorConfig, result *runResult) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := store.NewStore("sqlite", path)
	if err != nil {
		return err
	}
	if err := s.Init(ctx); err != nil {
		return fmt.Errorf("opening run store: %w", err)
	}
	defer store.CloseIfSupported(s)

	cfgYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding generator config: %w", err)
	}
	ecfg := cfg.EngineConfig()
	run := store.Run{
		ID:         result.RunID,
		CreatedAt:  time.Now().UTC(),
		Seed:       result.Seed,
		Selection:  ecfg.Selection,
		Ticks:      result.Metrics.Ticks,
		Placements: result.Metrics.Placements,
		Config:     string(cfgYAML),
	}
	if err := s.SaveRun(ctx, run, result.Placements); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	logrus.Infof("Run %s stored in %s", run.ID, path)
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerGeneratorFlags binds the engine configuration flags to cmd.
func registerGeneratorFlags(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the placement stream")
	cmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.Flags().StringVar(&configPath, "config", "", "Generator config YAML (overrides --preset)")
	cmd.Flags().StringVar(&presetName, "preset", "", "Preset name from the defaults file")
	cmd.Flags().StringVar(&defaultsFilePath, "defaults", "defaults.yaml", "Path to the defaults file holding presets")
	cmd.Flags().IntVar(&poolSize, "pool-size", sim.DefaultPoolSize, "Number of pending candidates")
	cmd.Flags().IntVar(&historySize, "history", sim.DefaultHistorySize, "History window capacity")
	cmd.Flags().StringVar(&selectionPolicy, "selection", sim.SelectionDrawScan, "Selection policy (draw-scan, threshold)")
	cmd.Flags().Float64Var(&softnessExponent, "exp", sim.DefaultSoftnessExponent, "Global softness exponent, clamped to [0,1]")
	cmd.Flags().BoolVar(&asymmetricNorm, "asymmetric-normalization", true, "Normalize both compression shares by the candidate's give")
	cmd.Flags().StringVar(&candidateUpdates, "candidate-updates", sim.CandidateUpdatesLive, "How edits reach pending candidates (live, stale)")
}

// init sets up CLI flags and subcommands
func init() {
	registerGeneratorFlags(runCmd)
	runCmd.Flags().Int64Var(&numTicks, "ticks", 1000, "Number of ticks to run")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Trace level (none, placements, candidates)")
	runCmd.Flags().StringVar(&metricsOutPath, "metrics-out", "", "Write metrics JSON to this path")
	runCmd.Flags().Int64Var(&varianceWindow, "variance-window", 32, "Window length in ticks for number variance")
	runCmd.Flags().StringVar(&storePath, "store", "", "SQLite file to store the run in")
	runCmd.Flags().BoolVar(&printReport, "report", false, "Print the final species, pool, and history")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
