package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a non-positive step, distance or limit.
	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrInvalidState indicates NaN or Inf in the integrated state.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrNoCar indicates a run without a vehicle.
	ErrNoCar = errors.New("sim: no car")
)

// StepError wraps an error with integration context.
type StepError struct {
	Car     string
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %d (t=%.4f): %v", e.Car, e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
