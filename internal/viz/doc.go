// Package viz renders a running gait loop in the terminal.
//
// A [Feed] is attached to the loop as an observer and forwards frames to a
// bubbletea [Model]. Frames are dropped, never queued, when the terminal
// falls behind the loop.
package viz
