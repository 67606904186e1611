package dynamo

import "math"

const (
	NumLegs       = 6
	AngleSlot     = 0
	VelocitySlot  = NumLegs
	MinCommandDim = 2 * NumLegs
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// Control is a command vector. See the package doc for the slot layout.
type Control []float64

func (c Control) Clone() Control {
	out := make(Control, len(c))
	copy(out, c)
	return out
}

// Angle returns the angle command of leg i.
func (c Control) Angle(i int) float64 { return c[AngleSlot+i] }

// Velocity returns the velocity command of leg i.
func (c Control) Velocity(i int) float64 { return c[VelocitySlot+i] }

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Transition is what a plant reports after accepting one command.
type Transition struct {
	State  State
	Reward float64
	Info   map[string]float64
	Done   bool
}

// Plant is the environment driven by the control loop.
type Plant interface {
	// CommandDim reports the length of the command vector the plant expects.
	CommandDim() int
	Reset() (State, error)
	Step(cmd Control, dt float64) (Transition, error)
}

// Tick is one pass of the control loop as seen by metrics and observers.
// State and Command are reused by the loop; clone them to keep them.
type Tick struct {
	Index   int
	Time    float64
	Dt      float64
	State   State
	Command Control
	Reward  float64

	Slow     [NumLegs]bool
	Pulse    [NumLegs]bool
	Standing bool
}

type Metric interface {
	Name() string
	Observe(tk Tick)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(tk Tick)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
