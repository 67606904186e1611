package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/gait"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithFields(log.Fields{
	"pkg": "sim",
})

type Config struct {
	Dt           float64
	Duration     float64
	HoldDuration float64
}

type Result struct {
	Times    []float64
	States   []dynamo.State
	Commands []dynamo.Control
	Rewards  []float64
	Metrics  map[string]float64

	// ReleasedAt is the loop time the standing hold ended, or -1.
	ReleasedAt float64
	Ticks      int
	Done       bool
}

// Loop drives a plant with the gait controller, one tick at a time.
type Loop struct {
	plant     dynamo.Plant
	ctrl      *gait.Controller
	clock     Clock
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(plant dynamo.Plant, ctrl *gait.Controller, clock Clock) *Loop {
	if clock == nil {
		clock = NewSimClock()
	}
	return &Loop{
		plant:     plant,
		ctrl:      ctrl,
		clock:     clock,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (l *Loop) AddMetric(m dynamo.Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o dynamo.Observer) { l.observers = append(l.observers, o) }

func (l *Loop) Controller() *gait.Controller { return l.ctrl }

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return dynamo.InvalidConfigf("sim: dt must be positive, got %v", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return dynamo.InvalidConfigf("sim: duration must be positive, got %v", cfg.Duration)
	}
	if cfg.HoldDuration < 0 {
		return dynamo.InvalidConfigf("sim: hold duration must be non-negative, got %v", cfg.HoldDuration)
	}
	return nil
}

// InitialCommand is the startup command: every leg at the offset, no
// velocity pulses.
func InitialCommand(dim int, offset float64) dynamo.Control {
	cmd := make(dynamo.Control, dim)
	for i := 0; i < dynamo.NumLegs; i++ {
		cmd[dynamo.AngleSlot+i] = offset
	}
	return cmd
}

// Run resets the plant, holds the startup pose for HoldDuration and then
// ticks the gait until Duration has elapsed, the plant reports done, or ctx
// is cancelled. The partial result is returned alongside any error.
func (l *Loop) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	dim := l.plant.CommandDim()
	if dim < dynamo.MinCommandDim {
		return nil, dynamo.InvalidConfigf("sim: plant wants %d command slots, gait needs %d", dim, dynamo.MinCommandDim)
	}

	steps := int(cfg.Duration/cfg.Dt) + 1
	result := &Result{
		Times:      make([]float64, 0, steps),
		States:     make([]dynamo.State, 0, steps),
		Commands:   make([]dynamo.Control, 0, steps),
		Rewards:    make([]float64, 0, steps),
		Metrics:    make(map[string]float64),
		ReleasedAt: -1,
	}

	for _, m := range l.metrics {
		m.Reset()
	}
	l.ctrl.Reset()

	state, err := l.plant.Reset()
	if err != nil {
		return nil, fmt.Errorf("sim: reset plant: %w", err)
	}

	params := l.ctrl.Params()
	cmd := InitialCommand(dim, params.Offset)

	tr, err := l.plant.Step(cmd, cfg.Dt)
	if err != nil {
		return nil, &dynamo.SimulationError{Step: 0, Time: 0, State: state, Wrapped: err}
	}
	state = tr.State
	if tr.Done {
		result.Done = true
		return result, nil
	}

	if cfg.HoldDuration > 0 {
		if err := l.clock.Wait(ctx, cfg.HoldDuration); err != nil {
			return result, err
		}
		tr, err = l.plant.Step(cmd, cfg.HoldDuration)
		if err != nil {
			return nil, &dynamo.SimulationError{Step: 0, Time: 0, State: state, Wrapped: err}
		}
		state = tr.State
		if tr.Done {
			result.Done = true
			return result, nil
		}
	}

	logger.WithFields(log.Fields{
		"dim":      dim,
		"gait":     params.String(),
		"duration": cfg.Duration,
	}).Info("control loop started")
	started := time.Now()

	elapsed := 0.0
	prev := l.clock.Now()
	for i := 0; elapsed < cfg.Duration; i++ {
		if err := l.clock.Wait(ctx, cfg.Dt); err != nil {
			l.collect(result)
			return result, err
		}
		now := l.clock.Now()
		dt := now - prev
		prev = now
		elapsed += dt

		if cmd, err = l.ctrl.Advance(state, cmd, dt); err != nil {
			return result, &dynamo.SimulationError{Step: i, Time: elapsed, State: state, Wrapped: err}
		}

		step := l.ctrl.Last()
		if step.Released {
			result.ReleasedAt = elapsed
		}

		tr, err = l.plant.Step(cmd, dt)
		if err != nil {
			return result, &dynamo.SimulationError{Step: i, Time: elapsed, State: state, Wrapped: err}
		}
		state = tr.State

		tk := dynamo.Tick{
			Index:    i,
			Time:     elapsed,
			Dt:       dt,
			State:    state,
			Command:  cmd,
			Reward:   tr.Reward,
			Slow:     step.Slow,
			Pulse:    step.Mask,
			Standing: step.Standing,
		}
		for _, m := range l.metrics {
			m.Observe(tk)
		}
		for _, o := range l.observers {
			o.OnTick(tk)
		}

		result.Times = append(result.Times, elapsed)
		result.States = append(result.States, state.Clone())
		result.Commands = append(result.Commands, cmd.Clone())
		result.Rewards = append(result.Rewards, tr.Reward)
		result.Ticks++

		if tr.Done {
			result.Done = true
			logger.WithField("tick", i).Info("plant reported done")
			break
		}
	}

	l.collect(result)

	logger.WithFields(log.Fields{
		"ticks":   result.Ticks,
		"elapsed": time.Since(started).String(),
	}).Info("control loop finished")
	return result, nil
}

func (l *Loop) collect(result *Result) {
	for _, m := range l.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
