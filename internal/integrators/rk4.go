package integrators

import "github.com/san-kum/hexgait/internal/dynamo"

type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.scratch = make(dynamo.State, n)
}

// stage evaluates the derivative at x + h*prev into dst.
func (r *RK4) stage(dst dynamo.State, dyn dynamo.System, x, prev dynamo.State, u dynamo.Control, t, h float64) {
	for i := range x {
		r.scratch[i] = x[i] + h*prev[i]
	}
	copy(dst, dyn.Derive(r.scratch, u, t))
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	half := dt * 0.5
	copy(r.k[0], dyn.Derive(x, u, t))
	r.stage(r.k[1], dyn, x, r.k[0], u, t+half, half)
	r.stage(r.k[2], dyn, x, r.k[1], u, t+half, half)
	r.stage(r.k[3], dyn, x, r.k[2], u, t+dt, dt)

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return result
}
