package metrics

import (
	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/plant"
)

// SyncPulses counts velocity pulses, one per leg per group change.
type SyncPulses struct {
	count int
}

func NewSyncPulses() *SyncPulses { return &SyncPulses{} }

func (s *SyncPulses) Name() string { return "sync_pulses" }

func (s *SyncPulses) Observe(tk dynamo.Tick) {
	for _, p := range tk.Pulse {
		if p {
			s.count++
		}
	}
}

func (s *SyncPulses) Value() float64 { return float64(s.count) }
func (s *SyncPulses) Reset()         { s.count = 0 }

// StandingTime is the loop time spent in the standing hold.
type StandingTime struct {
	seconds float64
}

func NewStandingTime() *StandingTime { return &StandingTime{} }

func (s *StandingTime) Name() string { return "standing_time" }

func (s *StandingTime) Observe(tk dynamo.Tick) {
	if tk.Standing {
		s.seconds += tk.Dt
	}
}

func (s *StandingTime) Value() float64 { return s.seconds }
func (s *StandingTime) Reset()         { s.seconds = 0 }

// TrackingError is the mean shortest-arc distance between the plant's joint
// angles and the angle commands.
type TrackingError struct {
	sum     float64
	samples int
}

func NewTrackingError() *TrackingError { return &TrackingError{} }

func (e *TrackingError) Name() string { return "tracking_error" }

func (e *TrackingError) Observe(tk dynamo.Tick) {
	if len(tk.State) < dynamo.NumLegs {
		return
	}
	e.sum += plant.TrackingError(tk.State, tk.Command)
	e.samples++
}

func (e *TrackingError) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *TrackingError) Reset() {
	e.sum = 0
	e.samples = 0
}

// Default returns a fresh set of the standard gait metrics.
func Default() []dynamo.Metric {
	return []dynamo.Metric{
		NewSyncPulses(),
		NewStandingTime(),
		NewTrackingError(),
		NewControlEffort(),
	}
}
