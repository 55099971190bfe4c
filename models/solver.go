// Package models is a collection of nonlinear least squares solvers used to fit the forecast
// curve
package models

import "math"

// ModelFunc evaluates a curve at x given the parameter vector p
type ModelFunc func(x float64, p []float64) float64

// GradFunc writes the partial derivatives of a ModelFunc at x with respect to each
// parameter in p into grad
type GradFunc func(grad []float64, x float64, p []float64)

// Solver fits the parameters of a ModelFunc to observed (x, y) pairs by minimizing the
// unweighted sum of squared residuals starting from the initial guess p0.
type Solver interface {
	Solve(fn ModelFunc, x, y, p0 []float64) (*Result, error)
}

// Result is the outcome of a converged solve
type Result struct {
	Params     []float64 `json:"params"`
	SSR        float64   `json:"sum_squared_residuals"`
	InitialSSR float64   `json:"initial_sum_squared_residuals"`
	Iterations int       `json:"iterations"`
	Evals      int       `json:"function_evaluations"`
}

func validateProblem(fn ModelFunc, x, y, p0 []float64) error {
	if fn == nil {
		return ErrNoModelFunc
	}
	if len(x) == 0 {
		return ErrNoTrainingArray
	}
	if len(y) != len(x) {
		return ErrTargetLenMismatch
	}
	if len(p0) == 0 {
		return ErrNoInitialGuess
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(v []float64) bool {
	for _, val := range v {
		if !isFinite(val) {
			return false
		}
	}
	return true
}
