// Package dynamo provides the shared primitives of the gait control loop.
//
// The package defines the vocabulary every other package speaks:
//
//   - [State]: plant state vector
//   - [Control]: command vector written by the gait controller
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper for a [System]
//   - [Plant]: the environment the control loop drives
//   - [Tick]: one pass of the control loop
//   - [Metric] and [Observer]: per-tick hooks
//
// # Command vector layout
//
// Slots [AngleSlot]..[AngleSlot]+[NumLegs]-1 hold leg angle commands,
// slots [VelocitySlot]..[VelocitySlot]+[NumLegs]-1 hold leg velocity
// commands. Anything past [MinCommandDim] belongs to other consumers and
// must be passed through untouched.
//
// # Angles
//
// Leg angles live in [0, 2π). Use [WrapAngle] for the non-negative
// convention and [SignedAngle] for a signed distance in [−π, π).
package dynamo
