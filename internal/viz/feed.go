package viz

import (
	"github.com/san-kum/hexgait/internal/dynamo"
)

// Frame is a copy of one loop tick for the terminal.
type Frame struct {
	Index    int
	Time     float64
	Angles   [dynamo.NumLegs]float64
	Joints   [dynamo.NumLegs]float64
	Slow     [dynamo.NumLegs]bool
	Pulse    [dynamo.NumLegs]bool
	Standing bool
}

// Feed is a loop observer that forwards frames without blocking the loop.
type Feed struct {
	frames  chan Frame
	dropped int
}

func NewFeed(buffer int) *Feed {
	if buffer < 1 {
		buffer = 1
	}
	return &Feed{frames: make(chan Frame, buffer)}
}

func (f *Feed) OnTick(tk dynamo.Tick) {
	fr := Frame{
		Index:    tk.Index,
		Time:     tk.Time,
		Slow:     tk.Slow,
		Pulse:    tk.Pulse,
		Standing: tk.Standing,
	}
	for i := 0; i < dynamo.NumLegs; i++ {
		fr.Angles[i] = tk.Command.Angle(i)
		if i < len(tk.State) {
			fr.Joints[i] = tk.State[i]
		}
	}

	select {
	case f.frames <- fr:
	default:
		f.dropped++
	}
}

// Frames is closed by Close once the loop is finished.
func (f *Feed) Frames() <-chan Frame { return f.frames }

// Dropped is only meaningful after Close.
func (f *Feed) Dropped() int { return f.dropped }

func (f *Feed) Close() { close(f.frames) }
