package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/drape/internal/analysis"
	"github.com/san-kum/drape/internal/automation"
	"github.com/san-kum/drape/internal/cloth"
	"github.com/san-kum/drape/internal/config"
	"github.com/san-kum/drape/internal/experiment"
	"github.com/san-kum/drape/internal/export"
	"github.com/san-kum/drape/internal/logger"
	"github.com/san-kum/drape/internal/optim"
	"github.com/san-kum/drape/internal/session"
	"github.com/san-kum/drape/internal/storage"
	"github.com/san-kum/drape/internal/viz"
)

var (
	sweepParams   []string
	sweepMetric   string
	sweepMaximize bool
	sweepTop      int

	ensembleRuns    int
	ensembleWorkers int

	mcParams    []string
	mcPerturb   float64
	mcTrials    int
	mcMaxStrain float64

	snapshotOut    string
	snapshotFrames int
	snapshotDots   bool
	snapshotYaw    float64

	plotSeries []string

	settleFraction float64
	portraitX      string
	portraitY      string

	jsonOut    string
	csvOut     string
	svgOut     string
	svgSeries  string
	configOut  string
)

var benchIterations = []int{4, 10, 20}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func experimentConfig(cmd *cobra.Command, args []string) (experiment.Config, error) {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return experiment.Config{}, err
	}
	return cfg.ToExperiment()
}

func runScenario(cmd *cobra.Command, args []string) error {
	expCfg, err := experimentConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("running %s for %.2fs (%d frames at %d fps)\n",
		expCfg.Scenario, expCfg.Duration, expCfg.Frames(), expCfg.Session.TargetFPS)
	exp := experiment.New(expCfg, experiment.NewRegistry(), experiment.WithLogger(logger.Named("experiment")))
	exp.AddObserver(progress(os.Stderr, expCfg.Frames()))
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("garments: %d  particles: %d  constraints: %d\n", res.Garments, res.Particles, res.Constraints)
	fmt.Printf("wall: %v  avg frame: %v  over budget: %d/%d\n",
		res.Wall, res.Session.AvgFrameTime(), res.Session.OverBudget, res.Session.Frames)
	if res.Recovered > 0 {
		fmt.Printf("recovered particles: %d\n", res.Recovered)
	}
	printMetrics(res.Metrics)

	if noSave {
		return nil
	}
	runID, err := storage.New(dataDir).Save(res, expCfg, runTags())
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	fmt.Printf("\nsaved run %s\n", runID)
	return nil
}

// progress reports each completed tenth of a run of total frames.
func progress(w io.Writer, total int) experiment.Observer {
	seen, last := 0, 0
	return func(f experiment.Frame) {
		seen++
		if total <= 0 {
			return
		}
		if step := seen * 10 / total; step > last {
			last = step
			fmt.Fprintf(w, "  %3d%%  t=%.2fs\n", min(step*10, 100), f.Time)
		}
	}
}

// runLive opens the viewer. Without a scenario or config file the picker
// chooses one first.
func runLive(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	chosenMotion := ""
	if len(args) == 0 && configFile == "" {
		final, err := tea.NewProgram(viz.NewPicker(reg), tea.WithAltScreen()).Run()
		if err != nil {
			return err
		}
		p, ok := final.(viz.Picker)
		if !ok {
			return nil
		}
		scenario, m, done := p.Chosen()
		if !done {
			return nil
		}
		args = []string{scenario}
		chosenMotion = m
	}

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if chosenMotion != "" {
		cfg.Body.Motion = chosenMotion
	}
	expCfg, err := cfg.ToExperiment()
	if err != nil {
		return err
	}

	m, err := viz.NewModel(expCfg, reg, logger.Named("live"))
	if err != nil {
		return err
	}
	defer m.Close()
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func benchScenario(cmd *cobra.Command, args []string) error {
	expCfg, err := experimentConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := interruptContext()
	defer cancel()
	reg := experiment.NewRegistry()

	fmt.Printf("benchmarking %s over %d frames at %d fps\n\n", expCfg.Scenario, expCfg.Frames(), expCfg.Session.TargetFPS)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITERATIONS\tPARTICLES\tAVG MS\tMAX MS\tFPS\tOVER BUDGET\tMAX STRAIN")
	for _, n := range benchIterations {
		cfg := expCfg
		if err := cfg.SetParam("iterations", float64(n)); err != nil {
			return err
		}
		res, err := experiment.New(cfg, reg, experiment.WithLogger(logger.Named("bench"))).Run(ctx)
		if err != nil {
			return err
		}
		avg := float64(res.Session.AvgFrameTime().Microseconds()) / 1000
		fmt.Fprintf(w, "%d\t%d\t%.3f\t%.3f\t%.0f\t%d/%d\t%.4f\n",
			n,
			res.Particles,
			avg,
			float64(res.Session.MaxFrameTime.Microseconds())/1000,
			res.Session.FPS,
			res.Session.OverBudget,
			res.Session.Frames,
			res.Metrics["max_strain"],
		)
	}
	return w.Flush()
}

// parseRange reads name=lo:hi:n.
func parseRange(s string) (string, []float64, error) {
	name, bounds, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("expected name=lo:hi:n, got %q", s)
	}
	parts := strings.Split(bounds, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("%s: expected lo:hi:n, got %q", name, bounds)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", name, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", name, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("%s: point count must be a positive integer, got %q", name, parts[2])
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param name=lo:hi:n is required")
	}
	expCfg, err := experimentConfig(cmd, args)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, p := range sweepParams {
		name, r, err := parseRange(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, r)
	}
	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	gs.Maximize = sweepMaximize

	ctx, cancel := interruptContext()
	defer cancel()
	reg := experiment.NewRegistry()
	log := logger.Named("sweep")
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := expCfg
		if err := cfg.SetParams(params); err != nil {
			return nil, err
		}
		return experiment.New(cfg, reg, experiment.WithLogger(log)), nil
	}

	fmt.Printf("sweeping %s over %d points\n\n", expCfg.Scenario, gs.Size())
	best, val, trials, err := gs.Search(ctx, build, sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\t%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(sweepMetric))
	for i, t := range gs.Ranked(trials) {
		if i >= sweepTop {
			break
		}
		vals := make([]string, len(names))
		for j, n := range names {
			vals[j] = fmt.Sprintf("%.4g", t.Params[n])
		}
		fmt.Fprintf(w, "%d\t%s\t%.6f\n", i+1, strings.Join(vals, "\t"), t.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	failed := 0
	for _, t := range trials {
		if t.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		fmt.Printf("\n%d of %d points failed\n", failed, len(trials))
	}
	fmt.Printf("\nbest %s = %.6f at %s\n", sweepMetric, val, formatParams(best))
	return nil
}

func formatParams(p map[string]float64) string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%.4g", n, p[n])
	}
	return strings.Join(parts, " ")
}

func ensembleScenario(cmd *cobra.Command, args []string) error {
	if ensembleRuns < 1 {
		return fmt.Errorf("--runs must be at least 1")
	}
	expCfg, err := experimentConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := interruptContext()
	defer cancel()

	ens := experiment.NewEnsemble(expCfg, experiment.NewRegistry(), ensembleRuns, expCfg.Seed,
		experiment.WithLogger(logger.Named("ensemble")))
	if ensembleWorkers > 0 {
		ens.Workers = ensembleWorkers
	}
	fmt.Printf("running %s over %d seeds from %d\n\n", expCfg.Scenario, ensembleRuns, expCfg.Seed)
	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}

	summary := experiment.Summarize(results)
	names := make([]string, 0, len(summary))
	for k := range summary {
		names = append(names, k)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tMIN\tMAX")
	for _, n := range names {
		s := summary[n]
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\n", n, s.Mean, s.Min, s.Max)
	}
	return w.Flush()
}

func monteCarloScenario(cmd *cobra.Command, args []string) error {
	expCfg, err := experimentConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := interruptContext()
	defer cancel()

	mc := &automation.MonteCarloConfig{
		Base:         expCfg,
		Params:       mcParams,
		Perturbation: mcPerturb,
		NumTrials:    mcTrials,
		Seed:         expCfg.Seed,
		MaxStrain:    mcMaxStrain,
	}
	log := logger.Named("montecarlo")
	results, err := automation.RunMonteCarlo(ctx, mc, experiment.NewRegistry(), func(done, total int) {
		log.Debug("trial done", zap.Int("done", done), zap.Int("total", total))
		fmt.Printf("\rtrial %d/%d", done, total)
	})
	fmt.Println()
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("\nstable: %d  unstable: %d  (max strain %.3f, perturbation ±%.0f%%)\n\n",
		stable, unstable, mcMaxStrain, mcPerturb*100)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSTRAIN\tSTABLE\tPARAMS")
	for _, r := range automation.WorstTrials(results, 5) {
		status := strconv.FormatBool(r.Stable)
		if r.Err != nil {
			status = "error: " + r.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%.6f\t%s\t%s\n", r.TrialID, r.Strain, status, formatParams(r.Params))
	}
	return w.Flush()
}

func runScriptFile(cmd *cobra.Command, args []string) error {
	script, err := automation.LoadScript(args[0])
	if err != nil {
		return err
	}
	base := config.DefaultConfig()
	if configFile != "" {
		if err := config.LoadInto(configFile, base); err != nil {
			return err
		}
	}
	physics, err := base.ToEngineConfig()
	if err != nil {
		return err
	}
	ctx, cancel := interruptContext()
	defer cancel()

	res, runErr := automation.RunScript(ctx, script, physics, logger.Named("script"))
	if res != nil {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FRAME\tACTION\tGARMENT\tRESULT")
		for _, ev := range res.Events {
			result := "ok"
			if ev.Err != nil {
				result = ev.Err.Error()
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", ev.Frame, ev.Action, ev.Garment, result)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	printMetrics(res.Run.Metrics)

	if noSave {
		return nil
	}
	expCfg := experiment.Config{Scenario: res.Run.Scenario, Duration: res.Run.Duration, Seed: script.Seed, Physics: physics}
	if err := expCfg.SetParams(script.Params); err != nil {
		return err
	}
	runID, err := storage.New(dataDir).Save(res.Run, expCfg, map[string]string{"script": args[0]})
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	fmt.Printf("\nsaved run %s\n", runID)
	return nil
}

// lastView keeps a private copy of the most recent view.
type lastView struct {
	view session.View
}

func (l *lastView) Render(v session.View) error {
	l.view = session.View{
		Frame: v.Frame,
		Time:  v.Time,
		Body:  append([]cloth.Vec3(nil), v.Body...),
	}
	for _, g := range v.Garments {
		g.Positions = append([]cloth.Vec3(nil), g.Positions...)
		l.view.Garments = append(l.view.Garments, g)
	}
	return nil
}

func snapshotScenario(cmd *cobra.Command, args []string) error {
	expCfg, err := experimentConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := interruptContext()
	defer cancel()

	scene := viz.NewScene(100, 50)
	scene.ShowFloor = expCfg.Physics.Floor
	scene.FloorHeight = expCfg.Physics.FloorHeight
	scene.Camera.Yaw = mgl64.DegToRad(snapshotYaw)
	capture := &lastView{}

	var r session.Renderer = capture
	if snapshotDots {
		r = scene
	}
	s, anim, err := experiment.New(expCfg, experiment.NewRegistry(),
		experiment.WithLogger(logger.Named("snapshot")), experiment.WithRenderer(r)).Prepare()
	if err != nil {
		return err
	}
	defer s.Stop()
	if err := s.Run(ctx, snapshotFrames, anim, false); err != nil {
		return err
	}

	var doc string
	if snapshotDots {
		doc = export.CanvasToSVG(scene.Canvas, 4, export.DefaultViewStyle.Garment)
	} else {
		doc = export.ViewToSVG(capture.view, scene.Camera, 800, 800, export.DefaultViewStyle)
	}
	if err := os.WriteFile(snapshotOut, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s after %d frames\n", snapshotOut, snapshotFrames)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Printf("no runs found in %s\n", st.Dir())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tDURATION\tGARMENTS\tPARTICLES\tMAX STRAIN")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%d\t%.4f\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Garments,
			run.Particles,
			run.Metrics["max_strain"],
		)
	}
	return w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDURATION\tMOTION\tDESCRIPTION")
	for _, name := range reg.ListScenarios() {
		sc, err := reg.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.1fs\t%s\t%s\n", sc.Name, sc.Duration, sc.Motion, sc.Description)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	scenario := config.DefaultScenario
	if len(args) > 0 {
		scenario = args[0]
	}
	if _, err := experiment.NewRegistry().Get(scenario); err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDESCRIPTION")
	for _, name := range config.ListPresets(scenario) {
		p, _ := config.GetPreset(scenario, name)
		fmt.Fprintf(w, "%s\t%s\n", name, p.Description)
	}
	return w.Flush()
}

// loadRun reads a stored run, the latest when no id is given.
func loadRun(args []string) (*storage.RunMetadata, []experiment.Frame, error) {
	st := storage.New(dataDir)
	var (
		meta *storage.RunMetadata
		err  error
	)
	if len(args) > 0 {
		meta, err = st.Load(args[0])
	} else {
		meta, err = st.Latest()
	}
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) && len(args) == 0 {
			return nil, nil, fmt.Errorf("no stored runs in %s", dataDir)
		}
		return nil, nil, err
	}
	frames, err := st.LoadFrames(meta.ID)
	if err != nil {
		return nil, nil, err
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("frames: %d\n\n", len(frames))

	res := &experiment.Result{Frames: frames}
	for _, name := range plotSeries {
		data, err := res.Series(name)
		if err != nil {
			return err
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		))
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args)
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return fmt.Errorf("run %s has too few frames to analyze", meta.ID)
	}
	res := &experiment.Result{Frames: frames}
	dt := meta.Dt
	if dt <= 0 {
		dt = frames[1].Time - frames[0].Time
	}

	fmt.Printf("run: %s (%s, %d frames)\n\n", meta.ID, meta.Scenario, len(frames))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES	MIN	MAX	MEAN	FINAL	DOMINANT HZ")
	for _, name := range []string{"strain", "penetration", "kinetic", "centroid_y"} {
		data, err := res.Series(name)
		if err != nil {
			return err
		}
		s := analysis.Summarize(data)
		hz, _ := analysis.DominantFrequency(data, dt)
		fmt.Fprintf(w, "%s\t%.5f\t%.5f\t%.5f\t%.5f\t%.3f\n", name, s.Min, s.Max, s.Mean, s.Final, hz)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	kinetic, _ := res.Series("kinetic")
	if settle := analysis.SettleTime(kinetic, dt, settleFraction); settle < 0 {
		fmt.Printf("\ncloth still moving at the end of the run\n")
	} else {
		fmt.Printf("\nsettled after %.2fs\n", settle)
	}

	xs, err := res.Series(portraitX)
	if err != nil {
		return err
	}
	ys, err := res.Series(portraitY)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s (y) against %s (x)\n", portraitY, portraitX)
	fmt.Print(analysis.PortraitASCII(analysis.Portrait(xs, ys), 72, 18))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, _, err := loadRun(args)
	if err != nil {
		return err
	}
	return storage.WriteJSON(os.Stdout, *meta, nil)
}

// output opens path for writing, or stdout when path is empty.
func output(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args)
	if err != nil {
		return err
	}
	if jsonOut == "" {
		return storage.WriteJSON(os.Stdout, *meta, frames)
	}
	if err := storage.ExportJSON(jsonOut, *meta, frames); err != nil {
		return err
	}
	fmt.Printf("exported %d frames to %s\n", len(frames), jsonOut)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, frames, err := loadRun(args)
	if err != nil {
		return err
	}
	w, err := output(csvOut)
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, frames); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	if csvOut != "" {
		fmt.Printf("exported %d frames to %s\n", len(frames), csvOut)
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args)
	if err != nil {
		return err
	}
	data, err := (&experiment.Result{Frames: frames}).Series(svgSeries)
	if err != nil {
		return err
	}
	doc := export.SeriesToSVG(data, 800, 300, export.DefaultViewStyle.Garment)
	if doc == "" {
		return fmt.Errorf("run %s has too few %s values to plot", meta.ID, svgSeries)
	}
	if err := os.WriteFile(svgOut, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	scenario := config.DefaultScenario
	if len(args) > 0 {
		scenario = args[0]
	}
	cfg, err := config.ForScenario(experiment.NewRegistry(), scenario)
	if err != nil {
		return err
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return err
		}
	}
	if err := config.Save(configOut, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", configOut)
	return nil
}
