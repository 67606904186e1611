// Package gait implements the tripod gait phase controller.
//
// Every tick the controller splits the six legs into a slow (stance) group,
// whose angle commands sit inside a sweep window centred on the neutral
// offset, and a fast (swing) group holding the rest. Both groups rotate in
// the same direction; the slow group covers the window in dutyFactor of the
// period and the fast group covers the remainder of the circle in the rest.
//
// Velocity slots carry a one-shot pulse on the tick a leg changes group and
// are zero otherwise. Continuous motion is carried by the angle commands.
//
// A freshly built [Controller] starts standing: legs 0, 2 and 4 are pinned
// to the offset until leg 1 swings past it, after which the controller walks
// for the rest of its life.
//
//	ctrl, err := gait.New(gait.DefaultParams())
//	for {
//	    cmd, err = ctrl.Advance(state, cmd, dt)
//	    ...
//	}
package gait
