// Package plant provides a simulated hexapod joint plant for the gait loop.
//
// Each leg joint is a position servo modelled as a damped second-order
// system pulling the joint angle towards its angle command along the
// shortest arc. A nonzero velocity command is applied once as an impulse on
// the joint rate, matching the one-shot pulses the gait controller emits.
//
// The state vector is [θ0..θ5, ω0..ω5].
package plant
