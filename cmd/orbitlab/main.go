package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kirolan/orbitlab/internal/config"
	"github.com/kirolan/orbitlab/internal/metrics"
	"github.com/kirolan/orbitlab/internal/sim"
	"github.com/kirolan/orbitlab/internal/storage"
	"github.com/kirolan/orbitlab/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string
	dt         float64
	duration   float64
	speed      float64
	mode       string
	engine     string
	plotBody   string
	routeFrom  string
	routeTo    string
	frameRate  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orbitlab",
		Short: "2D orbital-mechanics sandbox: gravity engines and star-route solving",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbitlab", "data directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "scenario preset (family/name)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (overrides scenario)")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration (overrides scenario)")
	runCmd.Flags().Float64Var(&speed, "speed", 0, "speed multiplier (overrides scenario)")
	runCmd.Flags().StringVar(&mode, "mode", "", "orbit or physics (overrides scenario)")
	runCmd.Flags().StringVar(&engine, "engine", "", "leapfrog or euler (overrides scenario)")

	routeCmd := &cobra.Command{
		Use:   "route [start] [goal]",
		Short: "compute the shortest route between two stars",
		Args:  cobra.ExactArgs(2),
		RunE:  runRoute,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the sandbox with a live terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().StringVar(&mode, "mode", "", "orbit or physics (overrides scenario)")
	liveCmd.Flags().StringVar(&routeFrom, "from", "", "route overlay start id")
	liveCmd.Flags().StringVar(&routeTo, "to", "", "route overlay goal id")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a body's trajectory from a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotBody, "body", "", "body id to plot (default: first recorded)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run positions to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and positions to JSON on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, family := range config.ListFamilies() {
				fmt.Println(family)
				for _, name := range config.ListPresets(family) {
					fmt.Printf("  %s/%s\n", family, name)
				}
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, routeCmd, liveCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadScenario resolves the scenario: preset, then config file, then the
// built-in default. CLI flags are applied on top by the callers.
func loadScenario() (*config.Config, string, error) {
	name := "default"

	var cfg *config.Config
	switch {
	case preset != "":
		family, presetName, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, "", fmt.Errorf("preset must be family/name, got %q", preset)
		}
		cfg = config.GetPreset(family, presetName)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset %q (try the presets command)", preset)
		}
		name = family + "-" + presetName
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("load scenario: %w", err)
		}
		cfg = loaded
		name = strings.TrimSuffix(strings.TrimSuffix(configFile, ".yaml"), ".yml")
	default:
		cfg = config.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid scenario: %w", err)
	}
	return cfg, name, nil
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// buildLoop assembles a sim loop from a scenario, applying any CLI
// overrides that were set.
func buildLoop(cfg *config.Config, log *zap.Logger) (*sim.Loop, error) {
	if dt > 0 {
		cfg.Dt = dt
	}
	if duration > 0 {
		cfg.Duration = duration
	}
	if speed > 0 {
		cfg.Speed = speed
	}
	if mode != "" {
		cfg.Mode = mode
	}
	if engine != "" {
		cfg.Engine = engine
	}

	loop := sim.New(cfg.ToBodies(), cfg.ToLinks(), cfg.PhysicsParams(), cfg.Gravity.Damping, log)
	loop.SetSpeed(cfg.Speed)

	m, err := sim.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	e, err := sim.ParseEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	loop.SetEngine(e)
	loop.SetMode(m)
	return loop, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadScenario()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		name = args[0]
	}

	log := newLogger()
	defer log.Sync()

	loop, err := buildLoop(cfg, log)
	if err != nil {
		return err
	}
	loop.AddMetric(metrics.NewEnergy(cfg.Gravity.G, cfg.Gravity.Softening))
	loop.AddMetric(metrics.NewMomentum())
	loop.AddMetric(metrics.NewBodyCount())

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s (%s mode, %.1fs at %.2gx)...\n", name, cfg.Mode, cfg.Duration, cfg.Speed)
	start := time.Now()

	result, err := loop.Run(context.Background(), sim.Config{Dt: cfg.Dt, Duration: cfg.Duration})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(name, cfg.Mode, cfg.Engine, cfg.Dt, cfg.Duration, cfg.Speed, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if cfg.Mode == "physics" {
		fmt.Printf("energy drift: %.2e\n", result.EnergyDrift)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadScenario()
	if err != nil {
		return err
	}

	log := newLogger()
	defer log.Sync()

	loop, err := buildLoop(cfg, log)
	if err != nil {
		return err
	}

	route := loop.Route(args[0], args[1], cfg.RouteOptions())
	if !route.Reachable() {
		fmt.Printf("no route from %s to %s\n", args[0], args[1])
		return nil
	}

	fmt.Printf("route: %s\n", strings.Join(route.Path, " -> "))
	fmt.Printf("cost:  %.2f\n", route.Cost)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadScenario()
	if err != nil {
		return err
	}

	log := newLogger()
	defer log.Sync()

	loop, err := buildLoop(cfg, log)
	if err != nil {
		return err
	}

	m := viz.NewModel(loop, cfg.RouteOptions(), routeFrom, routeTo, frameRate)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tMODE\tENGINE\tDURATION\tDT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2fs\t%.4fs\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Engine,
			run.Duration,
			run.Dt,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	times, positions, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		return fmt.Errorf("no data to plot")
	}

	id := plotBody
	if id == "" {
		if len(meta.BodyIDs) == 0 {
			return fmt.Errorf("run has no recorded bodies")
		}
		id = meta.BodyIDs[0]
	}

	xs := make([]float64, 0, len(positions))
	ys := make([]float64, 0, len(positions))
	for _, pos := range positions {
		p, ok := pos[id]
		if !ok {
			break // body merged away; plot up to that point
		}
		xs = append(xs, p.X())
		ys = append(ys, p.Y())
	}
	if len(xs) == 0 {
		return fmt.Errorf("body %s has no recorded positions", id)
	}

	fmt.Printf("run: %s\nbody: %s\nsamples: %d\n\n", meta.ID, id, len(xs))

	fmt.Println(asciigraph.Plot(xs,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s x vs time", id)),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(ys,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s y vs time", id)),
	))

	_ = times
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, positions, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for _, id := range meta.BodyIDs {
		header = append(header, id+"_x", id+"_y")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range times {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, id := range meta.BodyIDs {
			if p, ok := positions[i][id]; ok {
				row = append(row,
					strconv.FormatFloat(p.X(), 'f', 6, 64),
					strconv.FormatFloat(p.Y(), 'f', 6, 64))
			} else {
				row = append(row, "", "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	times, positions, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, times, positions)
}
