package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for control-loop operations.
var (
	// ErrInvalidConfig indicates gait or loop parameters outside their valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrInvalidState indicates a state vector with NaN or Inf values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates a command vector the plant cannot accept.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between command and plant")

	// ErrPlantDone indicates the plant ended the episode.
	ErrPlantDone = errors.New("dynamo: plant reported done")
)

// SimulationError wraps an error with control-loop context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// InvalidConfigf formats a message and wraps it with ErrInvalidConfig.
func InvalidConfigf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidConfig)
}
