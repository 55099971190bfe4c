package models

import "fmt"

// Supported solver names
const (
	SolverLevenbergMarquardt = "lm"
	SolverBFGS               = "bfgs"
)

// NewSolver returns the named solver configured with the iteration budget, tolerance and
// an optional analytic gradient. Zero values fall back to each solver's defaults.
func NewSolver(name string, iterations int, tolerance float64, grad GradFunc) (Solver, error) {
	switch name {
	case "", SolverLevenbergMarquardt:
		return NewLevenbergMarquardt(&LevMarOptions{
			Iterations: iterations,
			Tolerance:  tolerance,
			Gradient:   grad,
		})
	case SolverBFGS:
		return NewBFGS(&BFGSOptions{
			Iterations: iterations,
			Tolerance:  tolerance,
			Gradient:   grad,
		})
	default:
		return nil, fmt.Errorf("%q, %w", name, ErrUnknownSolver)
	}
}
