package main

import (
	"fmt"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/san-kum/hexgait/internal/config"
	"github.com/san-kum/hexgait/internal/gait"
	"github.com/san-kum/hexgait/internal/plant"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var logger = log.WithFields(log.Fields{
	"pkg": "main",
})

var (
	dataDir  string
	logLevel string
	logJSON  bool
	logFile  string

	configFile string
	preset     string

	dt         float64
	duration   float64
	hold       float64
	async      bool
	integrator string
	commandDim int

	period float64
	offset float64
	sweep  float64
	duty   float64

	// sweep command
	periods []float64
	duties  []float64
	metric  string
	workers int

	// plot and export
	columns []string
	outFile string
)

func main() {
	atexit.Register(func() {
		logger.Debug("exiting")
	})

	if err := newRootCmd().Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hexgait",
		Short:         "tripod gait controller lab",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory (env "+config.EnvDataDir+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (env "+config.EnvLogLevel+")")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a rotated file instead of stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the gait against the simulated hexapod and save the run",
		Args:  cobra.NoArgs,
		RunE:  runGait,
	}
	addLoopFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the gait in real time with a terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addLoopFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over period and duty factor",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addLoopFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&periods, "periods", []float64{1.0, 1.2, 1.4, 1.6}, "periods to try")
	sweepCmd.Flags().Float64SliceVar(&duties, "duties", []float64{0.55, 0.625, 0.685, 0.75}, "duty factors to try")
	sweepCmd.Flags().StringVar(&metric, "metric", "tracking_error", "metric to minimise")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "parallel runs")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run columns",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "columns", []string{"cmd_angle0", "cmd_angle1", "theta1"}, "columns to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and ticks as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the gait diagram of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "compare a run's cadence with the gait parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run and save every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run from randomly perturbed starting poses",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addLoopFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.5, "max initial angle offset (rad)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 for time based)")
	monteCarloCmd.Flags().Float64Var(&maxTracking, "max-tracking-error", 0.2, "final tracking error of a settled trial")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				mode := "sync"
				if !cfg.Loop.Synchronous {
					mode = "async"
				}
				fmt.Printf("  %-12s %s dt=%.3f %s\n", name, cfg.Gait, cfg.Loop.Dt, mode)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, listCmd, plotCmd, exportCmd, svgCmd, analyzeCmd, scenarioCmd, monteCarloCmd, presetsCmd)
	return rootCmd
}

func addLoopFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", def.Loop.Dt, "control period")
	cmd.Flags().Float64Var(&duration, "time", def.Loop.Duration, "duration")
	cmd.Flags().Float64Var(&hold, "hold", def.Loop.HoldDuration, "startup hold")
	cmd.Flags().BoolVar(&async, "async", false, "tick on the wall clock")
	cmd.Flags().StringVar(&integrator, "integrator", def.Plant.Integrator, "plant integrator")
	cmd.Flags().IntVar(&commandDim, "command-dim", def.Plant.CommandDim, "plant command slots")
	cmd.Flags().Float64Var(&period, "period", gait.DefaultPeriod, "gait period")
	cmd.Flags().Float64Var(&offset, "offset", gait.DefaultOffset, "stance centre angle")
	cmd.Flags().Float64Var(&sweep, "sweep-angle", gait.DefaultSweepAngle, "stance sector width")
	cmd.Flags().Float64Var(&duty, "duty", gait.DefaultDutyFactor, "duty factor")
}

// setup applies the environment and configures logging before any command.
func setup(cmd *cobra.Command) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("data") {
		dataDir = env.DataDir
	}
	if !flags.Changed("log-level") {
		logLevel = env.LogLevel
	}

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if logFile != "" {
		log.SetOutput(rotatingLog(logFile))
	} else {
		log.SetOutput(os.Stderr)
	}
	if logJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// loadConfig builds the run configuration: defaults, then preset, then
// config file, then any flag set on the command line.
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
	if flags.Changed("dt") {
		cfg.Loop.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Loop.Duration = duration
	}
	if flags.Changed("hold") {
		cfg.Loop.HoldDuration = hold
	}
	if flags.Changed("async") {
		cfg.Loop.Synchronous = !async
	}
	if flags.Changed("integrator") {
		cfg.Plant.Integrator = integrator
	}
	if flags.Changed("command-dim") {
		cfg.Plant.CommandDim = commandDim
	}
	if flags.Changed("period") {
		cfg.Gait.Period = period
	}
	if flags.Changed("offset") {
		cfg.Gait.Offset = offset
	}
	if flags.Changed("sweep-angle") {
		cfg.Gait.SweepAngle = sweep
	}
	if flags.Changed("duty") {
		cfg.Gait.DutyFactor = duty
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func rotatingLog(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

func newPlant(cfg *config.Config) (*plant.Hexapod, error) {
	return plant.New(cfg.Plant)
}
