package dynamo

import "math"

const TwoPi = 2 * math.Pi

// WrapAngle maps x into [0, 2π).
func WrapAngle(x float64) float64 {
	x = math.Mod(x, TwoPi)
	if x < 0 {
		x += TwoPi
	}
	// x may round up to exactly 2π when a tiny negative value is shifted.
	if x >= TwoPi {
		x = 0
	}
	return x
}

// SignedAngle maps x into [−π, π) as WrapAngle(x+π) − π.
func SignedAngle(x float64) float64 {
	return WrapAngle(x+math.Pi) - math.Pi
}

// AngleDiff returns the shortest signed arc from b to a.
func AngleDiff(a, b float64) float64 {
	return SignedAngle(a - b)
}
