package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/drape/internal/config"
	"github.com/san-kum/drape/internal/experiment"
	"github.com/san-kum/drape/internal/logger"
	"github.com/san-kum/drape/internal/storage"
)

var (
	dataDir    string
	logLevel   string
	logFile    string
	logJSON    bool
	configFile string

	preset    string
	duration  float64
	seed      int64
	fps       int
	motion    string
	overrides []string
	noSave    bool
)

// main registers the drape commands. With no subcommand it opens the
// scenario picker and the live viewer.
func main() {
	rootCmd := &cobra.Command{
		Use:               "drape",
		Short:             "real-time cloth try-on lab",
		SilenceUsage:      true,
		PersistentPreRunE: initLogging,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { logger.Sync() },
		RunE:              runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "also log to this file, rotated")
	pf.BoolVar(&logJSON, "log-json", false, "write the log file as JSON lines")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "watch a scenario in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "time frames across solver settings",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}
	addRunFlags(benchCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "grid search over parameters",
		Long:  "grid search over parameters, each given as --param name=lo:hi:n",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScenario,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "parameter range name=lo:hi:n (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "max_strain", "metric to optimise")
	sweepCmd.Flags().BoolVar(&sweepMaximize, "maximize", false, "maximise instead of minimise")
	sweepCmd.Flags().IntVar(&sweepTop, "top", 5, "trials to print")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scenario]",
		Short: "run one scenario over many seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ensembleScenario,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&ensembleRuns, "runs", 8, "number of seeds")
	ensembleCmd.Flags().IntVar(&ensembleWorkers, "workers", 0, "concurrent runs (0 for one per CPU)")

	mcCmd := &cobra.Command{
		Use:   "montecarlo [scenario]",
		Short: "perturb parameters and count unstable trials",
		Args:  cobra.MaximumNArgs(1),
		RunE:  monteCarloScenario,
	}
	addRunFlags(mcCmd)
	mcCmd.Flags().StringSliceVar(&mcParams, "params", []string{"stretch_stiffness", "damping"}, "parameters to perturb")
	mcCmd.Flags().Float64Var(&mcPerturb, "perturb", 0.1, "relative perturbation")
	mcCmd.Flags().IntVar(&mcTrials, "trials", 20, "number of trials")
	mcCmd.Flags().Float64Var(&mcMaxStrain, "max-strain", 0.5, "strain above which a trial is unstable")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a try-on automation script",
		Args:  cobra.ExactArgs(1),
		RunE:  runScriptFile,
	}
	scriptCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [scenario]",
		Short: "render a frame of a scenario to SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshotScenario,
	}
	addRunFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&snapshotOut, "output", "o", "drape.svg", "output file")
	snapshotCmd.Flags().IntVar(&snapshotFrames, "frames", 60, "frames to simulate before the snapshot")
	snapshotCmd.Flags().BoolVar(&snapshotDots, "dots", false, "braille dot rendering instead of vector lines")
	snapshotCmd.Flags().Float64Var(&snapshotYaw, "yaw", 0, "camera yaw in degrees")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios",
		Args:  cobra.NoArgs,
		RunE:  listScenarios,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list presets usable with a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotSeries, "series", []string{"strain", "penetration", "kinetic", "centroid_y"}, "columns to plot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "swing frequency, settle time and a phase portrait of a stored run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&settleFraction, "settle", 0.05, "fraction of peak kinetic energy counted as at rest")
	analyzeCmd.Flags().StringVar(&portraitX, "x", "strain", "portrait x series")
	analyzeCmd.Flags().StringVar(&portraitY, "y", "kinetic", "portrait y series")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and frames as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "output", "o", "", "output file (stdout if empty)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&csvOut, "output", "o", "", "output file (stdout if empty)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "plot one series of a stored run as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "output", "o", "series.svg", "output file")
	exportSVGCmd.Flags().StringVar(&svgSeries, "series", "strain", "column to plot")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.New(dataDir).Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [scenario]",
		Short: "write a scenario's defaults as a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVarP(&configOut, "output", "o", "drape.yaml", "output file")
	initCmd.Flags().StringVar(&preset, "preset", "", "apply a preset first")

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, sweepCmd, ensembleCmd, mcCmd, scriptCmd, snapshotCmd,
		listCmd, scenariosCmd, presetsCmd, plotCmd, analyzeCmd, exportCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd,
		deleteCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "apply a named preset")
	f.Float64Var(&duration, "time", 0, "simulated seconds (scenario default if 0)")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.IntVar(&fps, "fps", 0, "target frames per second")
	f.StringVar(&motion, "motion", "", "body motion (static, sway, bob, turn, walk)")
	f.StringArrayVar(&overrides, "set", nil, "parameter override name=value (repeatable)")
}

// initLogging sets up the global logger from flags, falling back to the
// logging section of the config file for flags left unset.
func initLogging(cmd *cobra.Command, args []string) error {
	opts := logger.Options{Level: logLevel, Console: os.Stderr, JSON: logJSON}
	path := logFile
	if configFile != "" {
		if cfg, err := config.Load(configFile); err == nil {
			if !cmd.Flags().Changed("log-level") && cfg.Logging.Level != "" && cfg.Logging.Level != "info" {
				opts.Level = cfg.Logging.Level
			}
			if !cmd.Flags().Changed("log-file") && cfg.Logging.LogFile != "" {
				path = cfg.Logging.LogFile
			}
			if !cmd.Flags().Changed("log-json") && cfg.Logging.JSON {
				opts.JSON = true
			}
		}
	}
	if path != "" {
		opts.File = logger.DefaultFileConfig(path)
	}
	return logger.InitWithOptions(opts)
}

// resolveConfig builds the run config in priority order: scenario
// defaults, then preset, then config file, then flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	reg := experiment.NewRegistry()
	scenario := config.DefaultScenario
	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		scenario = fileCfg.Scenario
	}
	if len(args) > 0 {
		scenario = args[0]
	}

	cfg, err := config.ForScenario(reg, scenario)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(reg.ListScenarios(), ", "))
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets(scenario))
		}
	}
	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, err
		}
		cfg.Scenario = scenario
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("fps") {
		cfg.Session.TargetFPS = fps
	}
	if flags.Changed("motion") {
		cfg.Body.Motion = motion
	}
	for _, kv := range overrides {
		name, v, err := parseAssignment(kv)
		if err != nil {
			return nil, err
		}
		if err := cfg.SetParam(name, v); err != nil {
			return nil, fmt.Errorf("%w (known: %s)", err, strings.Join(config.ParamNames(), ", "))
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("config resolved",
		zap.String("scenario", cfg.Scenario),
		zap.String("preset", preset),
		zap.String("file", configFile),
		zap.Float64("duration", cfg.Duration),
	)
	return cfg, nil
}

func parseAssignment(kv string) (string, float64, error) {
	name, raw, ok := strings.Cut(kv, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("expected name=value, got %q", kv)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", name, err)
	}
	return strings.TrimSpace(name), v, nil
}

func runTags() map[string]string {
	tags := make(map[string]string)
	if preset != "" {
		tags["preset"] = preset
	}
	if configFile != "" {
		tags["config"] = configFile
	}
	for _, kv := range overrides {
		if name, raw, ok := strings.Cut(kv, "="); ok {
			tags["set."+name] = raw
		}
	}
	return tags
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %-18s %.6f\n", name+":", m[name])
	}
}
