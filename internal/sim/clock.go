package sim

import (
	"context"
	"time"
)

// Clock supplies the loop's notion of time in seconds.
type Clock interface {
	Now() float64
	// Wait blocks for d seconds or until ctx is done.
	Wait(ctx context.Context, d float64) error
}

// SimClock is simulated time: Wait returns at once and moves time forward.
type SimClock struct {
	now float64
}

func NewSimClock() *SimClock { return &SimClock{} }

func (c *SimClock) Now() float64 { return c.now }

func (c *SimClock) Wait(ctx context.Context, d float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d > 0 {
		c.now += d
	}
	return nil
}

// WallClock follows the host clock from the moment it is created.
type WallClock struct {
	start time.Time
}

func NewWallClock() *WallClock { return &WallClock{start: time.Now()} }

func (c *WallClock) Now() float64 { return time.Since(c.start).Seconds() }

func (c *WallClock) Wait(ctx context.Context, d float64) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(d * float64(time.Second)))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
