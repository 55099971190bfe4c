package models

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultLevMarIterations = 200
	DefaultLevMarTolerance  = 1.49012e-8
	DefaultInitialDamping   = 1e-3
	DefaultDampingFactor    = 10.0

	minDamping  = 1e-12
	maxDamping  = 1e16
	minDiagonal = 1e-12
)

var (
	ErrNegativeDamping      = errors.New("negative initial damping")
	ErrInvalidDampingFactor = errors.New("damping factor must be greater than 1")
	ErrNonFiniteJacobian    = errors.New("non-finite jacobian")
	ErrNegativeTolerance    = errors.New("negative tolerance")
	ErrNegativeIterations   = errors.New("negative iterations")
)

// LevMarOptions represents input options to run the Levenberg-Marquardt solver
type LevMarOptions struct {
	// Iterations is the maximum number of jacobian updates before the fit is considered
	// to have diverged.
	Iterations int `json:"iterations"`

	// Tolerance is the relative reduction in the sum of squared residuals, or the relative
	// step size, below which the fit is considered converged.
	Tolerance float64 `json:"tolerance"`

	// InitialDamping is the starting Marquardt damping. Larger values start closer to
	// gradient descent, smaller values closer to Gauss-Newton.
	InitialDamping float64 `json:"initial_damping"`

	// DampingFactor multiplies or divides the damping after a rejected or accepted step.
	DampingFactor float64 `json:"damping_factor"`

	// Gradient is an optional analytic gradient of the model function. Finite differences
	// are used when nil.
	Gradient GradFunc `json:"-"`
}

// NewDefaultLevMarOptions returns a default set of Levenberg-Marquardt options
func NewDefaultLevMarOptions() *LevMarOptions {
	return &LevMarOptions{
		Iterations:     DefaultLevMarIterations,
		Tolerance:      DefaultLevMarTolerance,
		InitialDamping: DefaultInitialDamping,
		DampingFactor:  DefaultDampingFactor,
	}
}

// Validate runs basic validation on Levenberg-Marquardt options and fills in defaults for
// unset values
func (l *LevMarOptions) Validate() (*LevMarOptions, error) {
	if l == nil {
		l = NewDefaultLevMarOptions()
	}

	if l.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if l.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	if l.InitialDamping < 0 {
		return nil, ErrNegativeDamping
	}
	if l.DampingFactor != 0 && l.DampingFactor <= 1 {
		return nil, ErrInvalidDampingFactor
	}

	if l.Iterations == 0 {
		l.Iterations = DefaultLevMarIterations
	}
	if l.Tolerance == 0 {
		l.Tolerance = DefaultLevMarTolerance
	}
	if l.InitialDamping == 0 {
		l.InitialDamping = DefaultInitialDamping
	}
	if l.DampingFactor == 0 {
		l.DampingFactor = DefaultDampingFactor
	}
	return l, nil
}

// LevenbergMarquardt solves unweighted nonlinear least squares problems by damping the
// Gauss-Newton normal equations with a scaled diagonal. Only steps which reduce the sum of
// squared residuals are accepted.
type LevenbergMarquardt struct {
	opt *LevMarOptions
}

// NewLevenbergMarquardt initializes a solver ready for fitting
func NewLevenbergMarquardt(opt *LevMarOptions) (*LevenbergMarquardt, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &LevenbergMarquardt{
		opt: opt,
	}, nil
}

// Solve fits the parameters of fn to the observed x and y starting from p0. When no damped
// step reduces the residuals the current parameters are returned as a stationary point, so a
// result with SSR equal to InitialSSR means p0 came back unchanged.
func (l *LevenbergMarquardt) Solve(fn ModelFunc, x, y, p0 []float64) (*Result, error) {
	if l == nil || l.opt == nil {
		return nil, ErrNoOptions
	}
	if err := validateProblem(fn, x, y, p0); err != nil {
		return nil, err
	}

	m, n := len(x), len(p0)

	p := make([]float64, n)
	copy(p, p0)

	r := Residuals(nil, fn, x, y, p)
	cost := floats.Dot(r, r)
	res := &Result{
		InitialSSR: cost,
		Evals:      1,
	}
	if !isFinite(cost) {
		return nil, fmt.Errorf("at initial guess %v, %w, %w", p0, ErrNonFiniteResidual, ErrFitDivergence)
	}

	jac := mat.NewDense(m, n, nil)
	jtr := mat.NewVecDense(n, nil)
	var jtj mat.Dense

	trial := make([]float64, n)
	rTrial := make([]float64, m)
	damping := l.opt.InitialDamping
	tol := l.opt.Tolerance

	for iter := 1; iter <= l.opt.Iterations; iter++ {
		res.Iterations = iter

		// exact fit, nothing left to reduce
		if cost == 0 {
			return l.finish(res, p, cost)
		}

		jacobian(jac, fn, l.opt.Gradient, x, p)
		if !allFinite(jac.RawMatrix().Data) {
			return nil, fmt.Errorf("at iteration %d, %w, %w", iter, ErrNonFiniteJacobian, ErrFitDivergence)
		}
		jtj.Mul(jac.T(), jac)
		jtr.MulVec(jac.T(), mat.NewVecDense(m, r))

		if floats.Norm(jtr.RawVector().Data, math.Inf(1)) <= tol*tol {
			return l.finish(res, p, cost)
		}

		accepted := false
		for damping <= maxDamping {
			step, ok := dampedStep(&jtj, jtr, damping)
			if !ok {
				damping *= l.opt.DampingFactor
				continue
			}

			floats.AddTo(trial, p, step)
			Residuals(rTrial, fn, x, y, trial)
			res.Evals++

			trialCost := floats.Dot(rTrial, rTrial)
			if !isFinite(trialCost) || trialCost >= cost {
				damping *= l.opt.DampingFactor
				continue
			}

			accepted = true
			reduction := cost - trialCost
			stepNorm := floats.Norm(step, 2)
			paramNorm := floats.Norm(p, 2)

			copy(p, trial)
			copy(r, rTrial)
			prevCost := cost
			cost = trialCost
			damping = math.Max(damping/l.opt.DampingFactor, minDamping)

			if reduction <= tol*prevCost || stepNorm <= tol*(paramNorm+tol) {
				return l.finish(res, p, cost)
			}
			break
		}

		// no damping produces a reduction so p is a local minimum to working precision
		if !accepted {
			return l.finish(res, p, cost)
		}
	}

	return nil, fmt.Errorf("after %d iterations, %w, %w", l.opt.Iterations, ErrMaxIterations, ErrFitDivergence)
}

func (l *LevenbergMarquardt) finish(res *Result, p []float64, cost float64) (*Result, error) {
	if !allFinite(p) {
		return nil, fmt.Errorf("%v, %w, %w", p, ErrNonFiniteParams, ErrFitDivergence)
	}
	res.Params = p
	res.SSR = cost
	return res, nil
}

// dampedStep solves (JtJ + damping*diag(JtJ)) step = Jtr
func dampedStep(jtj *mat.Dense, jtr *mat.VecDense, damping float64) ([]float64, bool) {
	n, _ := jtj.Dims()
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := jtj.At(i, j)
			if i == j {
				v += damping * math.Max(v, minDiagonal)
			}
			a.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, false
	}

	var step mat.VecDense
	if err := chol.SolveVecTo(&step, jtr); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, false
		}
	}

	out := step.RawVector().Data
	if !allFinite(out) {
		return nil, false
	}
	return out, true
}
