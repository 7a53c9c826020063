package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/cpsafe/internal/analysis"
	"github.com/san-kum/cpsafe/internal/automation"
	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/engine/cpengine"
	"github.com/san-kum/cpsafe/internal/experiment"
	"github.com/san-kum/cpsafe/internal/export"
	"github.com/san-kum/cpsafe/internal/optim"
	"github.com/san-kum/cpsafe/internal/physics"
	"github.com/san-kum/cpsafe/internal/scene"
	"github.com/san-kum/cpsafe/internal/sim"
	"github.com/san-kum/cpsafe/internal/storage"
	"github.com/san-kum/cpsafe/internal/tui"
)

var (
	dataDir    string
	verbose    bool
	preset     string
	configFile string
	dt         float64
	steps      int
	gravityY   float64
	metrics    []string
	frameRate  int
	watch      bool
	runs       int
	limit      int
	outFile    string
	xAxis      int
	yAxis      int
	params     []string
	sweepBy    string
	maximize   bool

	logger *slog.Logger
	eng    *cpengine.Engine
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cpsafe",
		Short:         "rigid body scenes on a handle-safe physics layer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			eng = cpengine.New(cpengine.WithLogger(logger))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cpsafe", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().StringSliceVar(&metrics, "metrics", nil, "metrics to record (default all)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the tracked body of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				return fmt.Errorf("%w: %s (available: %v)", config.ErrUnknownScene, args[0], config.ListScenes())
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list built-in scenes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, s := range config.ListScenes() {
				fmt.Printf("%s\t%s\n", s, strings.Join(config.ListPresets(s), ", "))
			}
		},
	}

	defaultsCmd := &cobra.Command{
		Use:   "defaults",
		Short: "print the space defaults",
		Args:  cobra.NoArgs,
		RunE:  printDefaults,
	}

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().BoolVar(&watch, "watch", false, "reload --config when the file changes")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "run a scene many times in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	sceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&runs, "runs", 8, "number of runs")
	benchCmd.Flags().IntVar(&limit, "limit", 0, "max concurrent runs (0 means no limit)")

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "drop a ball on a floor and print its height each step",
		Args:  cobra.NoArgs,
		RunE:  traceBall,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", -1, "state index for x-axis (default tracked y)")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", -1, "state index for y-axis (default tracked vy)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "bounce analysis of the tracked body",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export body paths to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "grid search scene parameters by metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScene,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVarP(&params, "param", "p", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepBy, "metric", "bounces", "metric to optimize")
	sweepCmd.Flags().BoolVar(&maximize, "max", false, "prefer the largest value")
	sweepCmd.Flags().IntVar(&limit, "limit", 0, "max concurrent runs (0 means no limit)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of scenes",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(scenarioCmd, runCmd, listCmd, plotCmd, exportJSONCmd, presetsCmd, scenesCmd, defaultsCmd, liveCmd, benchCmd, traceCmd,
		phaseCmd, analyzeCmd, exportSVGCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "scene preset")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "scene file (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Float64Var(&gravityY, "gravity-y", config.DefaultGravityY, "vertical gravity")
}

func physicsOptions() []physics.Option {
	return []physics.Option{physics.WithEngine(eng), physics.WithLogger(logger)}
}

// loadConfig resolves the scene file, or the named scene and preset, then
// applies any flags the user set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		name := config.DefaultScene
		if len(args) > 0 {
			name = args[0]
		}
		cfg, err = config.Lookup(name, preset)
		if err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("gravity-y") {
		cfg.Space.Gravity.Y = gravityY
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkLeaks logs any Engine record still alive once a command is done.
func checkLeaks() {
	if s := eng.Stats(); s.Total() != 0 {
		logger.Warn("records still alive", "bodies", s.Bodies, "shapes", s.Shapes, "spaces", s.Spaces)
	}
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(metrics, physicsOptions()...); err != nil {
		return err
	}
	defer checkLeaks()
	defer exp.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s simulation...\n", cfg.Scene)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil && !errors.Is(err, sim.ErrUnbounded) {
		return err
	}
	if err != nil {
		logger.Warn("run stopped early", "err", err, "steps", result.StepsTaken)
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("contacts: %d\n", result.Contacts)
	fmt.Println("\nmetrics:")
	for _, name := range experiment.DefaultRegistry.ListMetrics() {
		if val, ok := result.Metrics[name]; ok {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}

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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tSTEPS\tDT\tBODIES\tCONTACTS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.StepsTaken,
			run.Dt,
			len(run.Bodies),
			run.Contacts,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	meta, result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	if len(result.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	track := cfg.TrackedIndex()
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("tracked: %s\n", meta.Bodies[track])
	fmt.Printf("samples: %d\n\n", len(result.States))

	series := []struct {
		caption string
		value   func(sim.State) float64
	}{
		{"x position", func(s sim.State) float64 { return s.X(track) }},
		{"y position", func(s sim.State) float64 { return s.Y(track) }},
		{"vertical velocity", func(s sim.State) float64 { return s.VY(track) }},
	}

	for _, sr := range series {
		data := make([]float64, len(result.States))
		for i, s := range result.States {
			data[i] = sr.value(s)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	cfg, err := st.LoadConfig(args[0])
	if err != nil {
		return err
	}
	_, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	if outFile != "" {
		if err := storage.ExportJSON(outFile, cfg, result); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", outFile)
		return nil
	}
	return storage.ExportJSONWriter(os.Stdout, cfg, result)
}

func printDefaults(cmd *cobra.Command, args []string) error {
	space := physics.NewSpace(physicsOptions()...)
	defer checkLeaks()
	defer space.Release()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "gravity\t%v\n", space.Gravity())
	fmt.Fprintf(w, "damping\t%g\n", space.Damping())
	fmt.Fprintf(w, "iterations\t%d\n", space.Iterations())
	fmt.Fprintf(w, "idle speed threshold\t%g\n", space.IdleSpeedThreshold())
	fmt.Fprintf(w, "sleep time threshold\t%g\n", space.SleepTimeThreshold())
	fmt.Fprintf(w, "collision slop\t%g\n", space.CollisionSlop())
	fmt.Fprintf(w, "collision bias\t%g\n", space.CollisionBias())
	fmt.Fprintf(w, "collision persistence\t%d\n", space.CollisionPersistence())
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	opts := []tui.Option{tui.WithFPS(frameRate), tui.WithLogger(logger)}
	if watch {
		if configFile == "" {
			return fmt.Errorf("--watch needs --config")
		}
		w, err := config.NewWatcher(configFile, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		opts = append(opts, tui.WithWatcher(w))
	}

	m, err := tui.NewModel(cfg, opts...)
	if err != nil {
		return err
	}
	defer m.Close()

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if runs < 1 {
		return fmt.Errorf("--runs must be at least 1")
	}

	configs := make([]*config.Config, runs)
	for i := range configs {
		configs[i] = cfg.Clone()
	}

	ens := sim.NewEnsemble(configs, experiment.DefaultRegistry.DefaultMetrics, physicsOptions()...)
	ens.SetLimit(limit)
	defer checkLeaks()

	fmt.Printf("benchmarking %s: %d runs of %d steps\n\n", cfg.Scene, runs, cfg.Steps)
	start := time.Now()
	results, err := ens.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	total := 0
	for _, r := range results {
		total += r.StepsTaken
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUNS\tSTEPS\tTIME\tSTEPS/SEC\tCONTACTS")
	fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%d\n",
		runs, total, elapsed, float64(total)/elapsed.Seconds(), results[0].Contacts)
	return w.Flush()
}

// traceBall is the smallest useful program: a floor, a ball, one second of
// steps.
func traceBall(cmd *cobra.Command, args []string) error {
	opts := physicsOptions()
	defer checkLeaks()

	space := physics.NewSpace(opts...)
	defer space.Release()
	space.SetGravity(physics.Vector{Y: config.DefaultGravityY})

	ground := physics.NewStaticBody(opts...)
	defer ground.Release()
	floor := physics.NewSegment(ground, physics.Vector{X: -config.DefaultFloorHalf}, physics.Vector{X: config.DefaultFloorHalf}, 0)
	defer floor.Release()
	floor.SetFriction(1)
	space.AddBody(ground)
	space.AddShape(floor)

	spec := config.ShapeConfig{Type: "circle", Radius: config.DefaultRadius}
	moment, err := scene.Moment(config.DefaultMass, spec)
	if err != nil {
		return err
	}
	ball := physics.NewBody(config.DefaultMass, moment, opts...)
	defer ball.Release()
	ball.SetPosition(physics.Vector{Y: config.DefaultStartY})
	circle := physics.NewCircle(ball, config.DefaultRadius, physics.Vector{})
	defer circle.Release()
	circle.SetFriction(config.DefaultFriction)
	space.AddBody(ball)
	space.AddShape(circle)

	heights := make([]float64, 0, config.DefaultSteps)
	for i := 0; i < config.DefaultSteps; i++ {
		pos, vel := ball.Position(), ball.Velocity()
		fmt.Printf("t=%5.2f  pos=(%5.2f, %5.2f)  vel=(%5.2f, %5.2f)\n",
			float64(i)*config.DefaultDt, pos.X, pos.Y, vel.X, vel.Y)
		heights = append(heights, pos.Y)
		space.Step(config.DefaultDt)
	}

	fmt.Println()
	fmt.Println(asciigraph.Plot(heights,
		asciigraph.Height(10),
		asciigraph.Width(config.DefaultSteps),
		asciigraph.Caption("ball height")))
	return nil
}


// loadRun reads a stored run with the config that produced it.
func loadRun(runID string) (*config.Config, *storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	meta, result, err := st.LoadResult(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(result.States) == 0 {
		return nil, nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return cfg, meta, result, nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	cfg, meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	base := cfg.TrackedIndex() * sim.StateWidth
	if xAxis < 0 {
		xAxis = base + 1
	}
	if yAxis < 0 {
		yAxis = base + 4
	}

	portrait := analysis.PhasePortrait(result.States, xAxis, yAxis)
	if portrait == nil {
		return fmt.Errorf("axis out of range: state has %d values", len(result.States[0]))
	}

	fmt.Printf("phase portrait: %s\n", meta.ID)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", column(meta, xAxis), column(meta, yAxis))
	fmt.Print(analysis.ToASCII(portrait.Points, 70, 24))
	return nil
}

// column names flat state index i as body.field.
func column(meta *storage.RunMetadata, i int) string {
	fields := []string{"x", "y", "angle", "vx", "vy", "w"}
	body := i / sim.StateWidth
	if body < len(meta.Bodies) {
		return meta.Bodies[body] + "." + fields[i%sim.StateWidth]
	}
	return fmt.Sprintf("x%d", i)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	cfg, meta, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	track := cfg.TrackedIndex()
	ys := analysis.Column(result.States, track*sim.StateWidth+1)
	rest := slices.Min(ys)
	apexes := analysis.Apexes(ys)

	fmt.Printf("bounce analysis: %s\n", meta.ID)
	fmt.Printf("tracked: %s\n", meta.Bodies[track])
	fmt.Printf("start height: %.3f\n", ys[0])
	fmt.Printf("lowest height: %.3f\n", rest)
	fmt.Printf("apexes: %d\n", len(apexes))
	for i, a := range apexes {
		fmt.Printf("  %d: %.3f\n", i+1, a)
	}
	if e, ok := analysis.Restitution(append([]float64{ys[0]}, apexes...), rest); ok {
		fmt.Printf("estimated restitution: %.3f\n", e)
	}

	if len(cfg.Floors) > 0 {
		gate := cfg.Floors[0].A.Y + (ys[0]-cfg.Floors[0].A.Y)/2
		ups := analysis.Crossings(result.States, track*sim.StateWidth+1, gate, track*sim.StateWidth, track*sim.StateWidth+4)
		fmt.Printf("upward passes through y=%.2f: %d\n", gate, len(ups))
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	cfg, _, result, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return export.TrajectorySVG(os.Stdout, cfg, result.States, 800, 600)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.TrajectorySVG(f, cfg, result.States, 800, 600); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func sweepScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(params) == 0 {
		return fmt.Errorf("at least one --param is needed (available: %v)", optim.ListParams())
	}

	grid := make([]optim.Param, 0, len(params))
	for _, p := range params {
		param, err := optim.ParseParam(p)
		if err != nil {
			return err
		}
		grid = append(grid, param)
	}

	g := optim.NewGridSearch(grid).SetLimit(limit)
	if maximize {
		g.Maximize()
	}
	defer checkLeaks()

	best, trials, err := g.Search(cmd.Context(), cfg, sweepBy, physicsOptions()...)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(grid)+1)
	for _, p := range grid {
		header = append(header, strings.ToUpper(p.Name))
	}
	fmt.Fprintln(w, strings.Join(append(header, strings.ToUpper(sweepBy)), "\t"))
	for _, tr := range trials {
		row := make([]string, 0, len(grid)+1)
		for _, p := range grid {
			row = append(row, fmt.Sprintf("%g", tr.Params[p.Name]))
		}
		fmt.Fprintln(w, strings.Join(append(row, fmt.Sprintf("%.6g", tr.Value)), "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6g at %v\n", sweepBy, best.Value, best.Params)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	defer checkLeaks()

	results, err := automation.RunScenario(cmd.Context(), scenario, st, logger, physicsOptions()...)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCENE\tSTEPS\tCONTACTS\tRUN")
	for i, r := range results {
		run := r.RunID
		if run == "" {
			run = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n", i+1, r.Config.Scene, r.Result.StepsTaken, r.Result.Contacts, run)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
