package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const (
	DefaultBFGSIterations = 1000
	DefaultBFGSTolerance  = 1e-10

	bfgsConvergeIterations = 20
)

// BFGSOptions represents input options to minimize the sum of squared residuals with BFGS
type BFGSOptions struct {
	// Iterations is the maximum number of major iterations
	Iterations int `json:"iterations"`

	// Tolerance is the relative improvement of the sum of squared residuals below which the
	// fit is considered converged
	Tolerance float64 `json:"tolerance"`

	// Gradient is an optional analytic gradient of the model function
	Gradient GradFunc `json:"-"`
}

// NewDefaultBFGSOptions returns a default set of BFGS options
func NewDefaultBFGSOptions() *BFGSOptions {
	return &BFGSOptions{
		Iterations: DefaultBFGSIterations,
		Tolerance:  DefaultBFGSTolerance,
	}
}

// Validate runs basic validation on BFGS options
func (b *BFGSOptions) Validate() (*BFGSOptions, error) {
	if b == nil {
		b = NewDefaultBFGSOptions()
	}
	if b.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if b.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	if b.Iterations == 0 {
		b.Iterations = DefaultBFGSIterations
	}
	if b.Tolerance == 0 {
		b.Tolerance = DefaultBFGSTolerance
	}
	return b, nil
}

// BFGS minimizes the unweighted sum of squared residuals with the quasi-Newton BFGS method.
type BFGS struct {
	opt *BFGSOptions
}

// NewBFGS initializes a BFGS solver ready for fitting
func NewBFGS(opt *BFGSOptions) (*BFGS, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &BFGS{opt: opt}, nil
}

// Solve fits the parameters of fn to the observed x and y starting from p0
func (b *BFGS) Solve(fn ModelFunc, x, y, p0 []float64) (*Result, error) {
	if b == nil || b.opt == nil {
		return nil, ErrNoOptions
	}
	if err := validateProblem(fn, x, y, p0); err != nil {
		return nil, err
	}

	initial := SumSquaredResiduals(fn, x, y, p0)
	if !isFinite(initial) {
		return nil, fmt.Errorf("at initial guess %v, %w, %w", p0, ErrNonFiniteResidual, ErrFitDivergence)
	}

	m, n := len(x), len(p0)
	jac := mat.NewDense(m, n, nil)
	r := make([]float64, m)

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			cost := SumSquaredResiduals(fn, x, y, p)
			if !isFinite(cost) {
				return math.Inf(1)
			}
			return cost
		},
		// d/dp sum(r^2) = -2 * J^T r
		Grad: func(grad, p []float64) {
			Residuals(r, fn, x, y, p)
			jacobian(jac, fn, b.opt.Gradient, x, p)
			var g mat.VecDense
			g.MulVec(jac.T(), mat.NewVecDense(m, r))
			floats.ScaleTo(grad, -2.0, g.RawVector().Data)
		},
	}

	settings := &optimize.Settings{
		MajorIterations: b.opt.Iterations,
		Converger: &optimize.FunctionConverge{
			Relative:   b.opt.Tolerance,
			Iterations: bfgsConvergeIterations,
		},
	}

	// limit statuses come back with a nil error, so the status is checked first
	result, err := optimize.Minimize(problem, p0, settings, &optimize.BFGS{})
	if result != nil {
		switch result.Status {
		case optimize.IterationLimit:
			return nil, fmt.Errorf("after %d iterations, %w, %w", b.opt.Iterations, ErrMaxIterations, ErrFitDivergence)
		case optimize.FunctionEvaluationLimit, optimize.GradientEvaluationLimit,
			optimize.HessianEvaluationLimit, optimize.RuntimeLimit:
			return nil, fmt.Errorf("stopped early with status %s, %w, %w", result.Status, ErrMaxIterations, ErrFitDivergence)
		case optimize.FunctionNegativeInfinity, optimize.NotTerminated:
			return nil, fmt.Errorf("stopped with status %s, %w", result.Status, ErrFitDivergence)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err.Error(), ErrFitDivergence)
	}
	if result == nil {
		return nil, fmt.Errorf("no result from minimizer, %w", ErrFitDivergence)
	}
	if !allFinite(result.X) {
		return nil, fmt.Errorf("%v, %w, %w", result.X, ErrNonFiniteParams, ErrFitDivergence)
	}
	if !(result.F <= initial) {
		return nil, fmt.Errorf("objective increased from %.4f to %.4f, %w", initial, result.F, ErrFitDivergence)
	}

	return &Result{
		Params:     result.X,
		SSR:        result.F,
		InitialSSR: initial,
		Iterations: result.MajorIterations,
		Evals:      result.FuncEvaluations,
	}, nil
}
