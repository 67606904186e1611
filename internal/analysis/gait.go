package analysis

import (
	"math"

	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/gait"
)

// Unwrap removes the 2π jumps from a wrapped angle series.
func Unwrap(angles []float64) []float64 {
	out := make([]float64, len(angles))
	if len(angles) == 0 {
		return out
	}
	out[0] = angles[0]
	for i := 1; i < len(angles); i++ {
		out[i] = out[i-1] + dynamo.AngleDiff(angles[i], angles[i-1])
	}
	return out
}

// CycleFrequency is the number of full turns per second. Samples must be
// dense enough that no leg moves more than π between two of them.
func CycleFrequency(times, angles []float64) float64 {
	if len(times) < 2 || len(angles) != len(times) {
		return 0
	}
	span := times[len(times)-1] - times[0]
	if span <= 0 {
		return 0
	}
	u := Unwrap(angles)
	turns := math.Abs(u[len(u)-1]-u[0]) / dynamo.TwoPi
	return turns / span
}

// DominantFrequency returns the strongest non-zero frequency of sin(angle),
// assuming a uniform sample period.
func DominantFrequency(times, angles []float64) float64 {
	if len(times) < 4 || len(angles) != len(times) {
		return 0
	}
	dt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	if dt <= 0 {
		return 0
	}

	signal := make([]float64, len(angles))
	mean := 0.0
	for i, a := range angles {
		signal[i] = math.Sin(a)
		mean += signal[i]
	}
	mean /= float64(len(signal))
	for i := range signal {
		signal[i] -= mean
	}

	ps := PowerSpectrum(signal)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	n := nextPow2(len(signal))
	return float64(peak) / (float64(n) * dt)
}

// StanceFraction is the share of samples classified as stance under p.
func StanceFraction(angles []float64, p gait.Params) float64 {
	if len(angles) == 0 {
		return 0
	}
	n := 0
	for _, a := range angles {
		if p.IsSlow(a) {
			n++
		}
	}
	return float64(n) / float64(len(angles))
}

// PhaseLag is the circular mean of a-b, in [0, 2π).
func PhaseLag(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var s, c float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		s += math.Sin(d)
		c += math.Cos(d)
	}
	return dynamo.WrapAngle(math.Atan2(s, c))
}

// PredictedCycle returns how long a leg spends crossing the stance sector
// and the rest of the circle at the speeds of p.
func PredictedCycle(p gait.Params) (stance, swing float64) {
	slow, fast := p.Speeds()
	stance = p.SweepAngle / math.Abs(slow)
	swing = (dynamo.TwoPi - p.SweepAngle) / math.Abs(fast)
	return stance, swing
}
