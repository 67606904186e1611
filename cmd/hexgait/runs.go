package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/hexgait/internal/analysis"
	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/export"
	"github.com/san-kum/hexgait/internal/storage"
	"github.com/spf13/cobra"
)

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
	fmt.Fprintln(w, "ID\tTIME\tPERIOD\tDUTY\tDURATION\tDT\tMODE\tTICKS")

	for _, run := range runs {
		mode := "sync"
		if !run.Synchronous {
			mode = "async"
		}
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Gait.Period,
			run.Gait.DutyFactor,
			run.Duration,
			run.Dt,
			mode,
			run.Ticks,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}
	if len(ticks.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("gait: %s\n", meta.Gait)
	fmt.Printf("samples: %d\n\n", len(ticks.Times))

	for _, name := range columns {
		data := ticks.Column(name)
		if data == nil {
			return fmt.Errorf("unknown column %q (available: %v)", name, storage.Columns())
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return storage.New(dataDir).ExportJSON(w, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	var angles [dynamo.NumLegs][]float64
	for leg := range angles {
		angles[leg] = ticks.Column(fmt.Sprintf("cmd_angle%d", leg))
	}

	svg := export.GaitDiagramSVG(ticks.Times, angles, meta.Gait, 960, 24)
	if svg == "" {
		return fmt.Errorf("not enough ticks to draw run %s", runID)
	}

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	// skip the standing hold, even legs are pinned until it ends
	start := 0
	if meta.ReleasedAt >= 0 {
		for start < len(ticks.Times) && ticks.Times[start] <= meta.ReleasedAt {
			start++
		}
	}
	times := ticks.Times[start:]
	if len(times) < 4 {
		return fmt.Errorf("not enough walking ticks in run %s", runID)
	}

	stance, swing := analysis.PredictedCycle(meta.Gait)
	cycle := stance + swing
	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("gait: %s\n", meta.Gait)
	fmt.Printf("predicted: cycle %.3fs (%.3f Hz), stance %.3f\n\n", cycle, 1/cycle, stance/cycle)

	var angles [dynamo.NumLegs][]float64
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEG\tCYCLE HZ\tPEAK HZ\tSTANCE\tLAG TO LEG 0")
	for leg := range angles {
		angles[leg] = ticks.Column(fmt.Sprintf("cmd_angle%d", leg))[start:]
	}
	for leg, a := range angles {
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%.3f\t%.3f\n",
			leg,
			analysis.CycleFrequency(times, a),
			analysis.DominantFrequency(times, a),
			analysis.StanceFraction(a, meta.Gait),
			analysis.PhaseLag(a, angles[0]),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	signal := make([]float64, len(angles[0]))
	for i, a := range angles[0] {
		signal[i] = math.Sin(a)
	}
	ps := analysis.PowerSpectrum(signal)
	if len(ps) > 80 {
		ps = ps[:80]
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(ps,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (sin cmd_angle0)"),
	))
	return nil
}
