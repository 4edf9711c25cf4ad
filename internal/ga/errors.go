package ga

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrTimeout           = errors.New("fitness evaluation timed out")
	ErrFitnessOutOfRange = errors.New("fitness out of range [0, 1]")

	// errStopRequested aborts an evaluation interrupted by Stop. It never
	// leaves the package.
	errStopRequested = errors.New("stop requested")
)

// FitnessError wraps a failure of the fitness component: either its
// Evaluate returned an error or it produced a value outside [0, 1].
type FitnessError struct {
	Fitness      string
	ChromosomeID string
	Value        float64
	Err          error
}

func (e *FitnessError) Error() string {
	return fmt.Sprintf("fitness %s: chromosome %s: %v", e.Fitness, e.ChromosomeID, e.Err)
}

func (e *FitnessError) Unwrap() error {
	return e.Err
}
