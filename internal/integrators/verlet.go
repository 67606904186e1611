package integrators

import "github.com/san-kum/hexgait/internal/dynamo"

// Verlet and Leapfrog treat the state as [angles, rates] with equal halves,
// the layout of the joint plant.

// probe evaluates the accelerations at a trial state assembled in scratch.
type probe struct {
	scratch dynamo.State
}

func (p *probe) accel(dyn dynamo.System, pos, vel []float64, u dynamo.Control, t float64) []float64 {
	n := len(pos) + len(vel)
	if len(p.scratch) != n {
		p.scratch = make(dynamo.State, n)
	}
	copy(p.scratch, pos)
	copy(p.scratch[len(pos):], vel)
	return dyn.Derive(p.scratch, u, t)[len(pos):]
}

// Verlet is velocity Verlet: a full position step from the current
// acceleration, then the rates from the mean of old and new accelerations.
type Verlet struct {
	probe
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	half := len(x) / 2
	pos, vel := x[:half], x[half:]
	a0 := dyn.Derive(x, u, t)[half:]

	out := make(dynamo.State, len(x))
	nextPos, nextVel := out[:half], out[half:]
	for i := range nextPos {
		nextPos[i] = pos[i] + dt*(vel[i]+0.5*dt*a0[i])
	}

	a1 := v.accel(dyn, nextPos, vel, u, t+dt)
	for i := range nextVel {
		nextVel[i] = vel[i] + 0.5*dt*(a0[i]+a1[i])
	}
	return out
}

// Leapfrog is kick-drift-kick.
type Leapfrog struct {
	probe
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	half := len(x) / 2
	pos, vel := x[:half], x[half:]
	a0 := dyn.Derive(x, u, t)[half:]

	out := make(dynamo.State, len(x))
	nextPos, nextVel := out[:half], out[half:]
	for i := range nextVel {
		nextVel[i] = vel[i] + 0.5*dt*a0[i]
		nextPos[i] = pos[i] + dt*nextVel[i]
	}

	a1 := l.accel(dyn, nextPos, nextVel, u, t+dt)
	for i := range nextVel {
		nextVel[i] += 0.5 * dt * a1[i]
	}
	return out
}
