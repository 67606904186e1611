package gait

import (
	"fmt"
	"math"

	"github.com/san-kum/hexgait/internal/dynamo"
)

const (
	DefaultPeriod     = 1.4
	DefaultOffset     = 1.1
	DefaultSweepAngle = 1.2
	DefaultDutyFactor = 0.685
)

// Params describes one tripod gait.
type Params struct {
	Period     float64 `yaml:"period" json:"period"`
	Offset     float64 `yaml:"offset" json:"offset"`
	SweepAngle float64 `yaml:"sweep_angle" json:"sweep_angle"`
	DutyFactor float64 `yaml:"duty_factor" json:"duty_factor"`
}

func DefaultParams() Params {
	return Params{
		Period:     DefaultPeriod,
		Offset:     DefaultOffset,
		SweepAngle: DefaultSweepAngle,
		DutyFactor: DefaultDutyFactor,
	}
}

// Validate reports parameters that would make the speeds infinite or the
// classification meaningless. Out-of-range values are never clamped.
func (p Params) Validate() error {
	if !(p.Period > 0) || math.IsInf(p.Period, 1) {
		return dynamo.InvalidConfigf("gait: period must be positive and finite, got %v", p.Period)
	}
	if !(p.DutyFactor > 0 && p.DutyFactor < 1) {
		return dynamo.InvalidConfigf("gait: duty factor must be in (0, 1), got %v", p.DutyFactor)
	}
	if !(p.SweepAngle >= 0 && p.SweepAngle < dynamo.TwoPi) {
		return dynamo.InvalidConfigf("gait: sweep angle must be in [0, 2π), got %v", p.SweepAngle)
	}
	if math.IsNaN(p.Offset) || math.IsInf(p.Offset, 0) {
		return dynamo.InvalidConfigf("gait: offset must be finite, got %v", p.Offset)
	}
	return nil
}

// Speeds returns the angular rates of the slow and fast groups. Both are
// negative.
func (p Params) Speeds() (slow, fast float64) {
	slow = -dynamo.TwoPi / (2 * p.Period * p.DutyFactor)
	fast = -dynamo.TwoPi / (2 * p.Period * (1 - p.DutyFactor))
	return slow, fast
}

// IsSlow reports whether an angle command falls strictly inside the sweep
// window. An angle exactly on the edge is fast.
func (p Params) IsSlow(angle float64) bool {
	return math.Abs(dynamo.SignedAngle(angle-p.Offset)) < p.SweepAngle/2
}

func (p Params) String() string {
	return fmt.Sprintf("period=%.3fs offset=%.3f sweep=%.3f duty=%.3f",
		p.Period, p.Offset, p.SweepAngle, p.DutyFactor)
}

func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"period":      p.Period,
		"offset":      p.Offset,
		"sweep_angle": p.SweepAngle,
		"duty_factor": p.DutyFactor,
	}
}

// SetParam updates one field by name. The result is validated as a whole and
// p is left untouched on error.
func (p *Params) SetParam(name string, value float64) error {
	next := *p
	switch name {
	case "period":
		next.Period = value
	case "offset":
		next.Offset = value
	case "sweep_angle":
		next.SweepAngle = value
	case "duty_factor":
		next.DutyFactor = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}
