package plant

import (
	"fmt"
	"math"

	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/integrators"
	log "github.com/sirupsen/logrus"
)

const (
	numLegs = dynamo.NumLegs

	DefaultStiffness    = 400.0
	DefaultDamping      = 40.0
	DefaultFeedForward  = 0.05
	DefaultCommandDim   = 14
	DefaultMaxSubstep   = 0.005
	DefaultInitialAngle = 1.1
)

var logger = log.WithFields(log.Fields{
	"pkg": "plant",
})

// Config describes the joint servos.
type Config struct {
	Stiffness    float64 `yaml:"stiffness" json:"stiffness"`
	Damping      float64 `yaml:"damping" json:"damping"`
	FeedForward  float64 `yaml:"feed_forward" json:"feed_forward"`
	CommandDim   int     `yaml:"command_dim" json:"command_dim"`
	MaxSubstep   float64 `yaml:"max_substep" json:"max_substep"`
	MaxSteps     int     `yaml:"max_steps" json:"max_steps"`
	InitialAngle float64 `yaml:"initial_angle" json:"initial_angle"`
	Integrator   string  `yaml:"integrator" json:"integrator"`
}

func DefaultConfig() Config {
	return Config{
		Stiffness:    DefaultStiffness,
		Damping:      DefaultDamping,
		FeedForward:  DefaultFeedForward,
		CommandDim:   DefaultCommandDim,
		MaxSubstep:   DefaultMaxSubstep,
		InitialAngle: DefaultInitialAngle,
		Integrator:   "rk4",
	}
}

func (c Config) Validate() error {
	if c.Stiffness <= 0 {
		return dynamo.InvalidConfigf("plant: stiffness must be positive, got %v", c.Stiffness)
	}
	if c.Damping < 0 {
		return dynamo.InvalidConfigf("plant: damping must be non-negative, got %v", c.Damping)
	}
	if c.CommandDim < dynamo.MinCommandDim {
		return dynamo.InvalidConfigf("plant: command dim must be at least %d, got %d", dynamo.MinCommandDim, c.CommandDim)
	}
	if c.MaxSubstep <= 0 {
		return dynamo.InvalidConfigf("plant: max substep must be positive, got %v", c.MaxSubstep)
	}
	if c.MaxSteps < 0 {
		return dynamo.InvalidConfigf("plant: max steps must be non-negative, got %d", c.MaxSteps)
	}
	return nil
}

// RewardFunc scores one transition. The plant reports zero reward without one.
type RewardFunc func(x dynamo.State, u dynamo.Control) float64

// Hexapod is a six-joint servo plant. It implements [dynamo.Plant] and
// [dynamo.System].
type Hexapod struct {
	cfg    Config
	integ  dynamo.Integrator
	reward RewardFunc

	initial [numLegs]float64
	x       dynamo.State
	t       float64
	steps   int
}

type Option func(*Hexapod)

func WithReward(fn RewardFunc) Option {
	return func(h *Hexapod) { h.reward = fn }
}

func WithIntegrator(integ dynamo.Integrator) Option {
	return func(h *Hexapod) { h.integ = integ }
}

// WithInitialAngles starts each joint at its own angle instead of
// Config.InitialAngle.
func WithInitialAngles(angles [numLegs]float64) Option {
	return func(h *Hexapod) { h.initial = angles }
}

func New(cfg Config, opts ...Option) (*Hexapod, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h := &Hexapod{cfg: cfg}
	for i := range h.initial {
		h.initial[i] = cfg.InitialAngle
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.integ == nil {
		integ, err := integrators.ByName(cfg.Integrator)
		if err != nil {
			return nil, err
		}
		h.integ = integ
	}
	h.x = h.initialState()
	return h, nil
}

func (h *Hexapod) initialState() dynamo.State {
	x := make(dynamo.State, 2*numLegs)
	for i := 0; i < numLegs; i++ {
		x[i] = dynamo.WrapAngle(h.initial[i])
	}
	return x
}

func (h *Hexapod) CommandDim() int { return h.cfg.CommandDim }
func (h *Hexapod) StateDim() int   { return 2 * numLegs }
func (h *Hexapod) ControlDim() int { return h.cfg.CommandDim }

func (h *Hexapod) Time() float64 { return h.t }

// State returns a copy of the current joint state.
func (h *Hexapod) State() dynamo.State { return h.x.Clone() }

func (h *Hexapod) Reset() (dynamo.State, error) {
	h.x = h.initialState()
	h.t = 0
	h.steps = 0
	logger.WithField("initial", h.initial).Debug("plant reset")
	return h.x.Clone(), nil
}

// Derive pulls every joint towards its angle command along the shortest arc.
func (h *Hexapod) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	for i := 0; i < numLegs; i++ {
		theta, omega := x[i], x[numLegs+i]
		dx[i] = omega
		dx[numLegs+i] = h.cfg.Stiffness*dynamo.AngleDiff(u.Angle(i), theta) - h.cfg.Damping*omega
	}
	return dx
}

// Step holds cmd for dt. Once the episode is done every further Step fails
// with [dynamo.ErrPlantDone] until Reset.
func (h *Hexapod) Step(cmd dynamo.Control, dt float64) (dynamo.Transition, error) {
	if h.cfg.MaxSteps > 0 && h.steps >= h.cfg.MaxSteps {
		return dynamo.Transition{}, dynamo.ErrPlantDone
	}
	if len(cmd) != h.cfg.CommandDim {
		return dynamo.Transition{}, fmt.Errorf("plant: got %d command slots, want %d: %w",
			len(cmd), h.cfg.CommandDim, dynamo.ErrDimensionMismatch)
	}
	if !(dt >= 0) || math.IsInf(dt, 1) {
		return dynamo.Transition{}, dynamo.InvalidConfigf("plant: dt must be finite and non-negative, got %v", dt)
	}

	x := h.x.Clone()
	for i := 0; i < numLegs; i++ {
		x[numLegs+i] += h.cfg.FeedForward * cmd.Velocity(i)
	}

	if dt > 0 {
		n := int(math.Ceil(dt / h.cfg.MaxSubstep))
		sub := dt / float64(n)
		t := h.t
		for k := 0; k < n; k++ {
			x = h.integ.Step(h, x, cmd, t, sub)
			t += sub
		}
	}
	for i := 0; i < numLegs; i++ {
		x[i] = dynamo.WrapAngle(x[i])
	}

	if !x.IsValid() {
		return dynamo.Transition{}, &dynamo.SimulationError{
			Step: h.steps, Time: h.t, State: x, Wrapped: dynamo.ErrInvalidState,
		}
	}

	h.x = x
	h.t += dt
	h.steps++

	tr := dynamo.Transition{
		State: x.Clone(),
		Info: map[string]float64{
			"time":           h.t,
			"tracking_error": TrackingError(x, cmd),
		},
		Done: h.cfg.MaxSteps > 0 && h.steps >= h.cfg.MaxSteps,
	}
	if h.reward != nil {
		tr.Reward = h.reward(x, cmd)
	}
	return tr, nil
}

// TrackingError is the mean shortest-arc distance between joint angles and
// their commands.
func TrackingError(x dynamo.State, cmd dynamo.Control) float64 {
	sum := 0.0
	for i := 0; i < numLegs; i++ {
		sum += math.Abs(dynamo.AngleDiff(cmd.Angle(i), x[i]))
	}
	return sum / numLegs
}

func (c Config) GetParams() map[string]float64 {
	return map[string]float64{
		"stiffness":    c.Stiffness,
		"damping":      c.Damping,
		"feed_forward": c.FeedForward,
	}
}

// SetParam updates one servo constant by name; c is left untouched on error.
func (c *Config) SetParam(name string, value float64) error {
	next := *c
	switch name {
	case "stiffness":
		next.Stiffness = value
	case "damping":
		next.Damping = value
	case "feed_forward":
		next.FeedForward = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (h *Hexapod) GetParams() map[string]float64 { return h.cfg.GetParams() }

// SetParam retunes the servos between steps.
func (h *Hexapod) SetParam(name string, value float64) error {
	return h.cfg.SetParam(name, value)
}
