package options

import (
	"bytes"
	"testing"

	"github.com/aouyang1/go-weibull-forecaster/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *Options
		expected *Options
		err      error
	}{
		"nil":                 {nil, NewDefaultOptions(), nil},
		"bfgs":                {&Options{Solver: models.SolverBFGS}, &Options{Solver: models.SolverBFGS}, nil},
		"unknown solver":      {&Options{Solver: "newton"}, nil, models.ErrUnknownSolver},
		"negative iterations": {&Options{Iterations: -1}, nil, ErrNegativeIterations},
		"negative tolerance":  {&Options{Tolerance: -1}, nil, ErrNegativeTolerance},
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

func TestNewSolver(t *testing.T) {
	testData := map[string]struct {
		opt      *Options
		expected models.Solver
	}{
		"default":      {NewDefaultOptions(), &models.LevenbergMarquardt{}},
		"numeric bfgs": {&Options{Solver: models.SolverBFGS, NumericGradient: true}, &models.BFGS{}},
		"empty is lm":  {&Options{}, &models.LevenbergMarquardt{}},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			s, err := td.opt.NewSolver()
			require.Nil(t, err)
			assert.IsType(t, td.expected, s)
		})
	}
}

func TestTablePrint(t *testing.T) {
	var buf bytes.Buffer
	opt := &Options{Solver: models.SolverBFGS, Iterations: 10, Tolerance: 1e-4, NumericGradient: true}
	require.Nil(t, opt.TablePrint(&buf, "", "  ", 0))
	assert.Equal(t, "Solver: bfgs\n  Iterations: 10    Tolerance: 0.0001    Gradient: finite difference\n", buf.String())
}
