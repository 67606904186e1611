package metrics

import (
	"math"

	"github.com/san-kum/hexgait/internal/dynamo"
)

// ControlEffort is the mean absolute velocity command per tick, summed over
// the legs. With edge pulses it grows with how often legs change group.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(tk dynamo.Tick) {
	for i := 0; i < dynamo.NumLegs; i++ {
		c.sum += math.Abs(tk.Command.Velocity(i))
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
