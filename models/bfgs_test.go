package models

import (
	"math"
	"testing"

	"github.com/aouyang1/go-weibull-forecaster/weibull"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBFGSOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *BFGSOptions
		err      error
		expected *BFGSOptions
	}{
		"nil":                 {nil, nil, NewDefaultBFGSOptions()},
		"empty":               {&BFGSOptions{}, nil, NewDefaultBFGSOptions()},
		"valid":               {&BFGSOptions{Iterations: 5, Tolerance: 1e-4}, nil, &BFGSOptions{Iterations: 5, Tolerance: 1e-4}},
		"negative iterations": {&BFGSOptions{Iterations: -5}, ErrNegativeIterations, nil},
		"negative tolerance":  {&BFGSOptions{Tolerance: -1e-4}, ErrNegativeTolerance, nil},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestBFGSExpDecay(t *testing.T) {
	x, y := generateExpDecay(10, 2.0, 0.5)

	b, err := NewBFGS(nil)
	require.Nil(t, err)

	res, err := b.Solve(expDecay, x, y, []float64{1.5, 0.3})
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{2.0, 0.5}, res.Params, 1e-2)
	assert.LessOrEqual(t, res.SSR, res.InitialSSR)
}

func TestBFGSWeibullNoWorseThanGuess(t *testing.T) {
	truth := weibull.Params{A: 150.0, Beta: 2.0, Eta: 12.0}
	x, y := generateWeibull(36, truth, 0.3)
	p0 := weibullGuess(x, y)

	b, err := NewBFGS(&BFGSOptions{Gradient: weibull.Gradient})
	require.Nil(t, err)

	res, err := b.Solve(weibull.Model, x, y, p0)
	if err != nil {
		assert.ErrorIs(t, err, ErrFitDivergence)
		return
	}
	assert.LessOrEqual(t, res.SSR, SumSquaredResiduals(weibull.Model, x, y, p0))
}

func TestBFGSFailures(t *testing.T) {
	x, y := generateExpDecay(10, 3.0, 0.4)
	nanModel := func(x float64, p []float64) float64 { return math.NaN() }

	testData := map[string]struct {
		opt  *BFGSOptions
		fn   ModelFunc
		x    []float64
		y    []float64
		p0   []float64
		errs []error
	}{
		"no model":         {nil, nil, x, y, []float64{1, 1}, []error{ErrNoModelFunc}},
		"no data":          {nil, expDecay, nil, nil, []float64{1, 1}, []error{ErrNoTrainingArray}},
		"length mismatch":  {nil, expDecay, x, y[:3], []float64{1, 1}, []error{ErrTargetLenMismatch}},
		"no initial guess": {nil, expDecay, x, y, nil, []error{ErrNoInitialGuess}},
		"non-finite start": {nil, nanModel, x, y, []float64{1, 1}, []error{ErrNonFiniteResidual, ErrFitDivergence}},
		"iteration budget": {
			&BFGSOptions{Iterations: 1},
			expDecay, x, y, []float64{0.1, 3.0},
			[]error{ErrMaxIterations, ErrFitDivergence},
		},
		"weibull iteration budget": {
			&BFGSOptions{Iterations: 5, Gradient: weibull.Gradient},
			weibull.Model,
			[]float64{1, 2, 3, 4, 5},
			[]float64{1, 2, 4, 8, 16},
			weibullGuess([]float64{1, 2, 3, 4, 5}, []float64{1, 2, 4, 8, 16}),
			[]error{ErrMaxIterations, ErrFitDivergence},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			b, err := NewBFGS(td.opt)
			require.Nil(t, err)

			res, err := b.Solve(td.fn, td.x, td.y, td.p0)
			assert.Nil(t, res)
			for _, expected := range td.errs {
				assert.ErrorIs(t, err, expected)
			}
		})
	}
}

func TestNewSolver(t *testing.T) {
	testData := map[string]struct {
		name string
		err  error
	}{
		"default":             {"", nil},
		"levenberg-marquardt": {SolverLevenbergMarquardt, nil},
		"bfgs":                {SolverBFGS, nil},
		"unknown":             {"simplex", ErrUnknownSolver},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s, err := NewSolver(td.name, 0, 0, nil)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.NotNil(t, s)
		})
	}
}
