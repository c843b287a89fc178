package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/replisim/internal/analysis"
	"github.com/san-kum/replisim/internal/config"
	"github.com/san-kum/replisim/internal/dynamo"
	"github.com/san-kum/replisim/internal/experiment"
	"github.com/san-kum/replisim/internal/fitness"
	"github.com/san-kum/replisim/internal/logging"
	"github.com/san-kum/replisim/internal/noise"
	"github.com/san-kum/replisim/internal/storage"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	seed       int64
	dt         float64
	cutoff     float64
	integrator string
	epochs     int
	epochLen   int
	saveEvery  int
	noiseType  string
	sigma      float64
	tau        float64
	withTable  bool

	epoch     int
	fromTable bool

	lyapunovSteps int
)

const runConfigFile = "config.yaml"

func main() {
	rootCmd := &cobra.Command{
		Use:           "replisim",
		Short:         "stochastic replicator dynamics on the simplex",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".replisim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "noise seed")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&cutoff, "cutoff", config.DefaultCutoff, "extinction threshold")
	runCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, heun, rk4)")
	runCmd.Flags().IntVar(&epochs, "epochs", config.DefaultEpochs, "number of epochs")
	runCmd.Flags().IntVar(&epochLen, "epoch-len", config.DefaultEpochLen, "steps per epoch")
	runCmd.Flags().IntVar(&saveEvery, "save-every", config.DefaultSaveEvery, "record every n-th step")
	runCmd.Flags().StringVar(&noiseType, "noise", "none", "noise type (none, white, proportional, demographic, ou)")
	runCmd.Flags().Float64Var(&sigma, "sigma", 0, "noise amplitude")
	runCmd.Flags().Float64Var(&tau, "tau", 0, "correlation time (ou)")
	runCmd.Flags().BoolVar(&withTable, "sqlite", false, "also write trajectory.db")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and final metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export one epoch to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().IntVar(&epoch, "epoch", 1, "epoch to export")
	exportCSVCmd.Flags().BoolVar(&fromTable, "sqlite", false, "read the epoch from trajectory.db")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "time averages, settling and Lyapunov exponent of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&lyapunovSteps, "lyapunov-steps", 10000, "steps for the Lyapunov estimate (0 to skip)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFITNESS\tINTEG\tNOISE\tEPOCHS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dx%d\n", name, fitnessLabel(p.Fitness), p.Integrator, p.Noise.Type, p.Epochs, p.EpochLen)
			}
			return w.Flush()
		},
	}

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "list noise kinds, games and integrators",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			reg := experiment.NewRegistry()
			fmt.Println("noise:")
			for _, n := range noise.TypeNames() {
				fmt.Printf("  %s\n", n)
			}
			fmt.Println("fitness models:")
			for _, n := range reg.ListModels() {
				fmt.Printf("  %s\n", n)
			}
			fmt.Println("games:")
			for _, n := range fitness.ListGames() {
				fmt.Printf("  %s\n", n)
			}
			fmt.Println("integrators:")
			for _, n := range reg.ListIntegrators() {
				fmt.Printf("  %s\n", n)
			}
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, presetsCmd, kindsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig resolves the run configuration: preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
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

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("cutoff") {
		cfg.Cutoff = cutoff
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("epochs") {
		cfg.Epochs = epochs
	}
	if flags.Changed("epoch-len") {
		cfg.EpochLen = epochLen
	}
	if flags.Changed("save-every") {
		cfg.SaveEvery = saveEvery
	}
	if flags.Changed("noise") {
		cfg.Noise = config.NoiseConfig{Type: noiseType, Params: map[string]any{}}
	}
	if flags.Changed("sigma") {
		if cfg.Noise.Params == nil {
			cfg.Noise.Params = map[string]any{}
		}
		cfg.Noise.Params["sigma"] = sigma
	}
	if flags.Changed("tau") {
		if cfg.Noise.Params == nil {
			cfg.Noise.Params = map[string]any{}
		}
		cfg.Noise.Params["tau"] = tau
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logLevel, os.Stderr)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	kind, err := cfg.NoiseKind()
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	model, err := reg.GetModel(cfg.Fitness)
	if err != nil {
		return err
	}

	run, err := st.Create(storage.RunMetadata{
		Name:       cfg.Name,
		Dim:        model.Dim,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Cutoff:     cfg.Cutoff,
		Integrator: cfg.Integrator,
		Fitness:    fitnessLabel(cfg.Fitness),
		Noise:      kind.String(),
		EpochLen:   cfg.EpochLen,
		SaveEvery:  cfg.SaveEvery,
	}, withTable)
	if err != nil {
		return err
	}
	logger = logger.With(slog.String("run", run.ID()))

	if err := config.Save(filepath.Join(run.Dir(), runConfigFile), cfg); err != nil {
		_ = run.Finish(nil, err)
		return err
	}

	exp, err := experiment.New(cfg, reg,
		experiment.WithSink(run),
		experiment.WithLogger(logger),
	)
	if err != nil {
		_ = run.Finish(nil, err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("run started", "dim", exp.Dim(), "epochs", cfg.Epochs, "epoch_len", cfg.EpochLen, "noise", kind.String())
	start := time.Now()

	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)

	if err := run.Finish(result.Metrics, runErr); err != nil {
		return err
	}
	if runErr != nil {
		logger.Error("run aborted", "error", runErr, "steps", result.Steps)
		return runErr
	}
	logger.Info("run completed", "elapsed", elapsed, "steps", result.Steps)

	fmt.Printf("run id: %s\n", run.ID())
	fmt.Printf("steps: %d (t=%.4f)\n", result.Steps, result.Time)
	fmt.Printf("final state: %s\n", formatState(result.Final))
	printMetrics(result.Metrics)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFITNESS\tTIME\tDT\tINTEG\tNOISE\tEPOCHS\tSTATUS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%s\t%s\t%d\t%s\n",
			run.ID,
			run.Fitness,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dt,
			run.Integrator,
			run.Noise,
			run.Epochs,
			run.Status,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("id:         %s\n", meta.ID)
	fmt.Printf("created:    %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("status:     %s\n", meta.Status)
	if meta.Error != "" {
		fmt.Printf("error:      %s\n", meta.Error)
	}
	fmt.Printf("fitness:    %s (dim %d)\n", meta.Fitness, meta.Dim)
	fmt.Printf("integrator: %s dt=%g cutoff=%g\n", meta.Integrator, meta.Dt, meta.Cutoff)
	fmt.Printf("noise:      %s seed=%d\n", meta.Noise, meta.Seed)
	fmt.Printf("epochs:     %d x %d steps (save every %d)\n", meta.Epochs, meta.EpochLen, meta.SaveEvery)

	if meta.Epochs > 0 {
		traj, err := st.LoadEpoch(meta.ID, meta.Epochs)
		if err != nil {
			return err
		}
		if last, ok := traj.Final(); ok {
			fmt.Printf("final:      t=%.4f %s\n", last.Time, formatState(last.State))
		}
	}
	if table, err := st.OpenTable(meta.ID); err == nil {
		defer table.Close()
		stored, err := table.Epochs(meta.ID)
		if err != nil {
			return err
		}
		fmt.Printf("table:      %d epochs %v\n", len(stored), stored)
	}
	printMetrics(meta.Metrics)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	if meta.Epochs == 0 {
		return fmt.Errorf("run %s has no stored epochs", meta.ID)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EPOCH\tSAMPLES\tSETTLED\tSURVIVORS\tTIME AVERAGE")

	var final dynamo.State
	for k := 1; k <= meta.Epochs; k++ {
		traj, err := st.LoadEpoch(meta.ID, k)
		if err != nil {
			return err
		}
		window := max(traj.Len()/10, 1)
		fmt.Fprintf(w, "%d\t%d\t%t\t%v\t%s\n",
			k,
			traj.Len(),
			analysis.Settled(traj, window, 1e-6),
			analysis.Survivors(traj),
			formatState(analysis.TimeAverage(traj)),
		)
		if last, ok := traj.Final(); ok {
			final = last.State
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if lyapunovSteps <= 0 || final == nil {
		return nil
	}

	cfg, err := config.Load(filepath.Join(st.RunDir(meta.ID), runConfigFile))
	if err != nil {
		return fmt.Errorf("failed to load run config: %w", err)
	}
	reg := experiment.NewRegistry()
	model, err := reg.GetModel(cfg.Fitness)
	if err != nil {
		return err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	lambda, err := analysis.LyapunovExponent(dynamo.Replicator(model.Fitness, model.Dim), integ, final, cfg.Dt, lyapunovSteps, 1e-8, cfg.Cutoff)
	if err != nil {
		return err
	}
	fmt.Printf("\nlargest lyapunov exponent (deterministic, from final state): %.6f\n", lambda)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	load := st.LoadEpoch
	if fromTable {
		table, err := st.OpenTable(args[0])
		if err != nil {
			return err
		}
		defer table.Close()
		load = table.LoadEpoch
	}
	traj, err := load(args[0], epoch)
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.ExportCSV(os.Stdout, traj)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.LoadAll(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, data)
}

func fitnessLabel(fc config.FitnessConfig) string {
	switch fc.Model {
	case "game":
		return fc.Game
	case "random":
		return fmt.Sprintf("random(%d)", fc.Dim)
	default:
		return fc.Model
	}
}

func formatState(x []float64) string {
	s := "["
	for i, v := range x {
		if i > 0 {
			s += " "
		}
		s += strconv.FormatFloat(v, 'f', 6, 64)
	}
	return s + "]"
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}
