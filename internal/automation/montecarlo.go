package automation

import (
	"context"
	"math/rand"
	"time"

	"github.com/san-kum/hexgait/internal/config"
	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/plant"
	log "github.com/sirupsen/logrus"
)

// MonteCarloConfig perturbs the starting joint angles of a base configuration.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64

	// MaxTrackingError is the final tracking error a trial may end with and
	// still count as settled.
	MaxTrackingError float64
}

type MonteCarloResult struct {
	TrialID       int
	Initial       [dynamo.NumLegs]float64
	ReleasedAt    float64
	TrackingError float64
	Settled       bool
}

// RunMonteCarlo runs NumTrials loops, each from joint angles drawn uniformly
// within Perturbation of the base initial angle. A trial is settled when the
// standing hold released and the joints ended close to their commands.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	for trial := 0; trial < cfg.NumTrials; trial++ {
		var initial [dynamo.NumLegs]float64
		for i := range initial {
			initial[i] = cfg.Base.Plant.InitialAngle + (rng.Float64()-0.5)*2*cfg.Perturbation
		}

		result, err := runConfig(ctx, cfg.Base, plant.WithInitialAngles(initial))
		if err != nil {
			return results, err
		}

		r := MonteCarloResult{TrialID: trial, Initial: initial, ReleasedAt: result.ReleasedAt}
		if n := len(result.States); n > 0 {
			r.TrackingError = plant.TrackingError(result.States[n-1], result.Commands[n-1])
		}
		r.Settled = r.ReleasedAt >= 0 && r.TrackingError <= cfg.MaxTrackingError
		results = append(results, r)

		if (trial+1)%10 == 0 {
			logger.WithFields(log.Fields{"done": trial + 1, "of": cfg.NumTrials}).Info("monte carlo progress")
		}
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (settled int, unsettled int) {
	for _, r := range results {
		if r.Settled {
			settled++
		} else {
			unsettled++
		}
	}
	return
}
