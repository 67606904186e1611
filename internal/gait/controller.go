package gait

import (
	"math"

	"github.com/san-kum/hexgait/internal/dynamo"
	log "github.com/sirupsen/logrus"
)

const numLegs = dynamo.NumLegs

// releaseLeg is watched during the standing hold.
const releaseLeg = 1

var logger = log.WithFields(log.Fields{
	"pkg": "gait",
})

// Groups holds one flag per leg.
type Groups [numLegs]bool

// Step describes what a single tick decided.
type Step struct {
	Slow     Groups
	Mask     Groups
	Standing bool

	// Released is true only on the tick the standing hold ended.
	Released bool
}

// Phase is the state carried from one tick to the next: the group each leg
// was in on the previous tick. The zero value is unseeded; the first tick
// seeds it so that no leg sees an edge.
type Phase struct {
	slow   Groups
	seeded bool
	last   Step
}

// Seeded reports whether a tick has run since construction or Reset.
func (ph *Phase) Seeded() bool { return ph.seeded }

// Last returns the decisions of the most recent tick.
func (ph *Phase) Last() Step { return ph.last }

func (ph *Phase) Reset() { *ph = Phase{} }

// Classify returns the group of every leg for the given command vector.
func Classify(cmd dynamo.Control, p Params) Groups {
	var slow Groups
	for i := 0; i < numLegs; i++ {
		slow[i] = p.IsSlow(cmd[dynamo.AngleSlot+i])
	}
	return slow
}

func validateTick(cmd dynamo.Control, dt float64, p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if len(cmd) < dynamo.MinCommandDim {
		return dynamo.InvalidConfigf("gait: command vector needs %d slots, got %d", dynamo.MinCommandDim, len(cmd))
	}
	if !(dt >= 0) || math.IsInf(dt, 1) {
		return dynamo.InvalidConfigf("gait: dt must be finite and non-negative, got %v", dt)
	}
	return nil
}

// Advance runs one tick of the gait on cmd in place and returns the new
// standing flag. Nothing is mutated when an error is returned. state is not
// consulted.
func Advance(ph *Phase, state dynamo.State, cmd dynamo.Control, dt float64, p Params, standing bool) (bool, error) {
	if err := validateTick(cmd, dt, p); err != nil {
		return standing, err
	}

	slow := Classify(cmd, p)
	if !ph.seeded {
		ph.slow = slow
		ph.seeded = true
	}

	var mask Groups
	for i := range mask {
		mask[i] = ph.slow[i] != slow[i]
	}
	ph.slow = slow

	slowSpeed, fastSpeed := p.Speeds()
	for i := 0; i < numLegs; i++ {
		speed := fastSpeed
		if slow[i] {
			speed = slowSpeed
		}

		pulse := 0.0
		if mask[i] {
			pulse = speed
		}
		cmd[dynamo.VelocitySlot+i] = pulse
		cmd[dynamo.AngleSlot+i] = dynamo.WrapAngle(cmd[dynamo.AngleSlot+i] + dt*speed)
	}

	released := false
	if standing {
		if !slow[releaseLeg] && dynamo.WrapAngle(cmd[dynamo.AngleSlot+releaseLeg]-p.Offset) < math.Pi {
			standing = false
			released = true
		} else {
			for i := 0; i < numLegs; i += 2 {
				cmd[dynamo.AngleSlot+i] = p.Offset
			}
		}
	}

	ph.last = Step{Slow: slow, Mask: mask, Standing: standing, Released: released}
	return standing, nil
}

// Controller owns the gait parameters, the phase state and the standing
// flag. It is not safe for concurrent use.
type Controller struct {
	params   Params
	phase    Phase
	standing bool
	ticks    int
}

func New(p Params) (*Controller, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Controller{params: p, standing: true}, nil
}

// Advance moves every leg forward by dt and returns cmd, updated in place.
func (c *Controller) Advance(state dynamo.State, cmd dynamo.Control, dt float64) (dynamo.Control, error) {
	standing, err := Advance(&c.phase, state, cmd, dt, c.params, c.standing)
	if err != nil {
		return cmd, err
	}
	c.standing = standing
	c.ticks++

	last := c.phase.Last()
	if last.Released {
		logger.WithField("tick", c.ticks).Info("standing hold released, walking")
	}
	if last.Mask != (Groups{}) && logger.Logger.IsLevelEnabled(log.DebugLevel) {
		logger.WithFields(log.Fields{
			"tick": c.ticks,
			"mask": last.Mask,
			"slow": last.Slow,
		}).Debug("group change")
	}
	return cmd, nil
}

func (c *Controller) Standing() bool { return c.standing }

func (c *Controller) Params() Params { return c.params }

// Speeds returns the slow and fast angular rates of the current gait.
func (c *Controller) Speeds() (slow, fast float64) { return c.params.Speeds() }

// Last returns the decisions of the most recent tick.
func (c *Controller) Last() Step { return c.phase.Last() }

func (c *Controller) Ticks() int { return c.ticks }

// Reset returns the controller to its freshly built state: standing, with an
// unseeded phase.
func (c *Controller) Reset() {
	c.phase.Reset()
	c.standing = true
	c.ticks = 0
}

// SetParams swaps the gait for subsequent ticks. The phase state is kept so
// legs that stay in their group do not see an edge.
func (c *Controller) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.params = p
	return nil
}
