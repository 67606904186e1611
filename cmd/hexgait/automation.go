package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/san-kum/hexgait/internal/automation"
	"github.com/san-kum/hexgait/internal/storage"
	"github.com/spf13/cobra"
)

var (
	trials       int
	perturbation float64
	seed         int64
	maxTracking  float64
)

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, runErr := automation.RunScenario(ctx, sc)

	for _, r := range results {
		runID, err := st.Save(metadataFor(r.Config), r.Result)
		if err != nil {
			return err
		}
		fmt.Printf("  %s  ticks=%d  tracking_error=%.6f\n", runID, r.Result.Ticks, r.Result.Metrics["tracking_error"])
	}
	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:             cfg,
		Perturbation:     perturbation,
		NumTrials:        trials,
		Seed:             seed,
		MaxTrackingError: maxTracking,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tWALKING FROM\tTRACKING ERROR\tSETTLED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.2fs\t%.6f\t%v\n", r.TrialID, r.ReleasedAt, r.TrackingError, r.Settled)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	settled, unsettled := automation.MonteCarloStats(results)
	fmt.Printf("\nsettled: %d, unsettled: %d\n", settled, unsettled)
	return nil
}
