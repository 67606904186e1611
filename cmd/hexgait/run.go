package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/hexgait/internal/config"
	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/gait"
	"github.com/san-kum/hexgait/internal/metrics"
	"github.com/san-kum/hexgait/internal/optim"
	"github.com/san-kum/hexgait/internal/plant"
	"github.com/san-kum/hexgait/internal/sim"
	"github.com/san-kum/hexgait/internal/storage"
	"github.com/san-kum/hexgait/internal/viz"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

func loopConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Dt:           cfg.Loop.Dt,
		Duration:     cfg.Loop.Duration,
		HoldDuration: cfg.Loop.HoldDuration,
	}
}

func clockFor(cfg *config.Config) sim.Clock {
	if cfg.Loop.Synchronous {
		return sim.NewSimClock()
	}
	return sim.NewWallClock()
}

func metadataFor(cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Name:         cfg.Name,
		Gait:         cfg.Gait,
		Dt:           cfg.Loop.Dt,
		Duration:     cfg.Loop.Duration,
		HoldDuration: cfg.Loop.HoldDuration,
		Synchronous:  cfg.Loop.Synchronous,
		Integrator:   cfg.Plant.Integrator,
	}
}

// buildLoop wires the plant, the gait controller and the default metrics.
func buildLoop(cfg *config.Config, clock sim.Clock) (*sim.Loop, *plant.Hexapod, error) {
	hex, err := newPlant(cfg)
	if err != nil {
		return nil, nil, err
	}
	ctrl, err := gait.New(cfg.Gait)
	if err != nil {
		return nil, nil, err
	}
	loop := sim.New(hex, ctrl, clock)
	for _, m := range metrics.Default() {
		loop.AddMetric(m)
	}
	return loop, hex, nil
}

// stopOnExit sends the last angle command with zero velocity to the plant
// when the process exits.
func stopOnExit(hex *plant.Hexapod, result **sim.Result) {
	atexit.Register(func() {
		res := *result
		if res == nil || len(res.Commands) == 0 {
			return
		}
		final := res.Commands[len(res.Commands)-1].Clone()
		for i := 0; i < dynamo.NumLegs; i++ {
			final[dynamo.VelocitySlot+i] = 0
		}
		if _, err := hex.Step(final, 0); err != nil {
			logger.WithError(err).Debug("plant refused the final command")
			return
		}
		logger.WithField("angles", []float64(final[:dynamo.NumLegs])).Info("legs stopped")
	})
}

// finishRun saves result, tolerating an interrupted loop.
func finishRun(st *storage.Store, cfg *config.Config, result *sim.Result, runErr error) (string, error) {
	if runErr != nil {
		if result == nil || !errors.Is(runErr, context.Canceled) {
			return "", runErr
		}
		logger.WithField("ticks", result.Ticks).Warn("interrupted, saving partial run")
	}
	return st.Save(metadataFor(cfg), result)
}

func printSummary(runID string, result *sim.Result) {
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.Ticks)
	if result.ReleasedAt >= 0 {
		fmt.Printf("walking from: %.3fs\n", result.ReleasedAt)
	} else {
		fmt.Println("walking from: never")
	}
	fmt.Println("\nmetrics:")
	for _, m := range metrics.Default() {
		if v, ok := result.Metrics[m.Name()]; ok {
			fmt.Printf("  %s: %.6f\n", m.Name(), v)
		}
	}
}

func runGait(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	loop, hex, err := buildLoop(cfg, clockFor(cfg))
	if err != nil {
		return err
	}

	var result *sim.Result
	stopOnExit(hex, &result)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s gait (%s)...\n", cfg.Name, cfg.Gait)
	start := time.Now()

	result, err = loop.Run(ctx, loopConfig(cfg))
	runID, err := finishRun(st, cfg, result, err)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	printSummary(runID, result)
	return nil
}

type loopOutcome struct {
	result *sim.Result
	err    error
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	// the view owns the terminal, so logs go to a file for the duration
	if logFile == "" {
		w := rotatingLog(filepath.Join(dataDir, "live.log"))
		defer w.Close()
		log.SetOutput(w)
		defer log.SetOutput(os.Stderr)
	}

	// a simulated clock would finish before the first frame is drawn
	loop, hex, err := buildLoop(cfg, sim.NewWallClock())
	if err != nil {
		return err
	}
	feed := viz.NewFeed(64)
	loop.AddObserver(feed)

	var result *sim.Result
	stopOnExit(hex, &result)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan loopOutcome, 1)
	go func() {
		res, err := loop.Run(ctx, loopConfig(cfg))
		feed.Close()
		done <- loopOutcome{result: res, err: err}
	}()

	p := tea.NewProgram(viz.NewModel(cfg.Gait, cfg.Loop.Duration, feed.Frames()))
	_, uiErr := p.Run()
	cancel()
	out := <-done

	if uiErr != nil {
		return uiErr
	}
	logger.WithField("dropped_frames", feed.Dropped()).Debug("live view closed")

	result = out.result
	runID, err := finishRun(st, cfg, result, out.err)
	if err != nil {
		return err
	}
	printSummary(runID, result)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Loop.Synchronous {
		logger.Warn("sweep always runs on simulated time")
	}

	ens := sim.NewEnsemble(func() (dynamo.Plant, error) {
		hex, err := newPlant(cfg)
		if err != nil {
			return nil, err
		}
		return hex, nil
	}, metrics.Default, workers)
	grid := optim.NewGridSearch(cfg.Gait, periods, duties)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %d gaits, minimising %s...\n", len(grid.Candidates()), metric)
	start := time.Now()

	best, all, err := grid.Search(ctx, ens, loopConfig(cfg), metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PERIOD\tDUTY\tSLOW\tFAST\tWALKING FROM\t"+metric)
	for _, c := range all {
		slow, fast := c.Params.Speeds()
		fmt.Fprintf(w, "%.3f\t%.3f\t%.3f\t%.3f\t%.2fs\t%.6f\n",
			c.Params.Period, c.Params.DutyFactor, slow, fast, c.Result.ReleasedAt, c.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ncompleted in %v\n", time.Since(start))
	fmt.Printf("best: %s (%s=%.6f)\n", best.Params, metric, best.Value)
	return nil
}
