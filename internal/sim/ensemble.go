package sim

import (
	"context"
	"sync"

	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/gait"
)

// PlantFactory builds a fresh plant for one run.
type PlantFactory func() (dynamo.Plant, error)

// MetricFactory builds fresh metrics for one run.
type MetricFactory func() []dynamo.Metric

// Ensemble runs the same loop configuration over several gaits in parallel,
// each with its own plant, controller and simulated clock.
type Ensemble struct {
	newPlant   PlantFactory
	newMetrics MetricFactory
	workers    int
}

func NewEnsemble(newPlant PlantFactory, newMetrics MetricFactory, workers int) *Ensemble {
	if workers < 1 {
		workers = 1
	}
	return &Ensemble{newPlant: newPlant, newMetrics: newMetrics, workers: workers}
}

// Run returns one result per gait, in order. The first error wins.
func (e *Ensemble) Run(ctx context.Context, gaits []gait.Params, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(gaits))
	errs := make([]error, len(gaits))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i := range gaits {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx], errs[idx] = e.runOne(ctx, gaits[idx], cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (e *Ensemble) runOne(ctx context.Context, p gait.Params, cfg Config) (*Result, error) {
	ctrl, err := gait.New(p)
	if err != nil {
		return nil, err
	}
	plant, err := e.newPlant()
	if err != nil {
		return nil, err
	}

	loop := New(plant, ctrl, NewSimClock())
	if e.newMetrics != nil {
		for _, m := range e.newMetrics() {
			loop.AddMetric(m)
		}
	}
	return loop.Run(ctx, cfg)
}
