// Package options contains the solver options for fitting a scaled Weibull curve to a
// univariate count series
package options

import (
	"errors"
	"fmt"
	"io"

	"github.com/aouyang1/go-weibull-forecaster/forecast/util"
	"github.com/aouyang1/go-weibull-forecaster/models"
	"github.com/aouyang1/go-weibull-forecaster/weibull"
)

var (
	ErrNegativeIterations = errors.New("negative iterations")
	ErrNegativeTolerance  = errors.New("negative tolerance")
)

// Options configures the least squares solve of the scaled Weibull parameters. The initial
// guess is not configurable.
type Options struct {
	// Solver names the least squares method, "lm" (default) or "bfgs"
	Solver string `json:"solver" yaml:"solver"`

	// Iterations is the solver iteration budget. Exceeding it fails the fit.
	Iterations int `json:"iterations" yaml:"iterations"`

	// Tolerance is the solver convergence tolerance
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`

	// NumericGradient uses finite differences instead of the analytic partial derivatives
	// of the model
	NumericGradient bool `json:"numeric_gradient" yaml:"numeric_gradient"`
}

// NewDefaultOptions returns a set of default forecast options
func NewDefaultOptions() *Options {
	return &Options{
		Solver:     models.SolverLevenbergMarquardt,
		Iterations: models.DefaultLevMarIterations,
		Tolerance:  models.DefaultLevMarTolerance,
	}
}

// Validate checks the options, returning defaults when nil
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	switch o.Solver {
	case "", models.SolverLevenbergMarquardt, models.SolverBFGS:
	default:
		return nil, fmt.Errorf("%q, %w", o.Solver, models.ErrUnknownSolver)
	}
	if o.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if o.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	return o, nil
}

// NewSolver builds the configured solver wired with the scaled Weibull gradient
func (o *Options) NewSolver() (models.Solver, error) {
	var grad models.GradFunc
	if !o.NumericGradient {
		grad = weibull.Gradient
	}
	return models.NewSolver(o.Solver, o.Iterations, o.Tolerance, grad)
}

// SolverName returns the solver name with the default filled in
func (o *Options) SolverName() string {
	if o == nil || o.Solver == "" {
		return models.SolverLevenbergMarquardt
	}
	return o.Solver
}

func (o *Options) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(w, "%s%sSolver: %s\n", prefix, util.IndentExpand(indent, indentGrowth), o.SolverName()); err != nil {
		return err
	}
	gradient := "analytic"
	if o.NumericGradient {
		gradient = "finite difference"
	}
	if _, err := fmt.Fprintf(w, "%s%sIterations: %d    Tolerance: %.3g    Gradient: %s\n",
		prefix, util.IndentExpand(indent, indentGrowth+1),
		o.Iterations, o.Tolerance, gradient); err != nil {
		return err
	}
	return nil
}
