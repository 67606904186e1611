package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/hexgait/internal/gait"
	"github.com/san-kum/hexgait/internal/sim"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithFields(log.Fields{
	"pkg": "optim",
})

// GridSearch evaluates every period and duty factor combination around a
// base gait and keeps the one with the lowest metric value.
type GridSearch struct {
	base    gait.Params
	periods []float64
	duties  []float64
}

func NewGridSearch(base gait.Params, periods, duties []float64) *GridSearch {
	if len(periods) == 0 {
		periods = []float64{base.Period}
	}
	if len(duties) == 0 {
		duties = []float64{base.DutyFactor}
	}
	return &GridSearch{base: base, periods: periods, duties: duties}
}

type Candidate struct {
	Params gait.Params
	Value  float64
	Result *sim.Result
}

// Candidates lists the valid gaits of the grid, period-major. Invalid
// combinations are skipped.
func (g *GridSearch) Candidates() []gait.Params {
	var out []gait.Params
	for _, period := range g.periods {
		for _, duty := range g.duties {
			p := g.base
			p.Period = period
			p.DutyFactor = duty
			if err := p.Validate(); err != nil {
				logger.WithError(err).WithField("gait", p.String()).Warn("skipping grid point")
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// Search runs all candidates on ens and returns the best one along with every
// evaluated candidate in grid order.
func (g *GridSearch) Search(ctx context.Context, ens *sim.Ensemble, cfg sim.Config, metricName string) (Candidate, []Candidate, error) {
	gaits := g.Candidates()
	if len(gaits) == 0 {
		return Candidate{}, nil, fmt.Errorf("optim: no valid grid points")
	}

	results, err := ens.Run(ctx, gaits, cfg)
	if err != nil {
		return Candidate{}, nil, err
	}

	all := make([]Candidate, len(gaits))
	best := Candidate{Value: math.Inf(1)}
	for i, res := range results {
		val, ok := res.Metrics[metricName]
		if !ok {
			return Candidate{}, nil, fmt.Errorf("optim: metric %q not recorded", metricName)
		}
		all[i] = Candidate{Params: gaits[i], Value: val, Result: res}
		if val < best.Value {
			best = all[i]
		}
	}
	return best, all, nil
}
