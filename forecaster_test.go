package forecaster

import (
	"bytes"
	"math"
	"testing"

	"github.com/aouyang1/go-weibull-forecaster/forecast/options"
	"github.com/aouyang1/go-weibull-forecaster/models"
	"github.com/aouyang1/go-weibull-forecaster/timedataset"
	"github.com/aouyang1/go-weibull-forecaster/weibull"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toObservations(t, y []float64) []timedataset.Observation {
	obs := make([]timedataset.Observation, 0, len(t))
	for i := range t {
		obs = append(obs, timedataset.Observation{Time: t[i], Measure: y[i]})
	}
	return obs
}

func setupWithZeros() []timedataset.Observation {
	t := timedataset.GenerateT(60)
	y := timedataset.GenerateWeibullY(t, weibull.Params{A: 1200.0, Beta: 2.2, Eta: 25.0}).
		SetZero(t, 10, 13).
		SetZero(t, 40, 42)
	return toObservations(t, y)
}

func TestRunScenario(t *testing.T) {
	obs := []timedataset.Observation{
		{Time: 1, Measure: 0},
		{Time: 2, Measure: 5},
		{Time: 3, Measure: 8},
		{Time: 4, Measure: 3},
		{Time: 5, Measure: 0},
	}

	res, err := Run(obs, nil)
	require.Nil(t, err)

	records := res.Records()
	require.Len(t, records, 6)
	for i, r := range records {
		assert.Equal(t, float64(i+1), r.Time)
		assert.False(t, math.IsNaN(r.Forecast))
		assert.False(t, math.IsInf(r.Forecast, 0))
		assert.Nil(t, r.CDF)
		assert.Nil(t, r.PDF)
	}
}

func TestFitHorizon(t *testing.T) {
	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(setupWithZeros()))

	horizon, err := f.Horizon()
	require.Nil(t, err)
	assert.Equal(t, timedataset.GenerateT(65), horizon)

	assert.Equal(t, 60, f.TrainingData().Len())
	assert.Equal(t, 55, f.FilteredData().Len())
	assert.Len(t, f.Residuals(), 55)

	res, err := f.Forecast()
	require.Nil(t, err)
	assert.Equal(t, 65, res.Len())

	p, err := f.Params()
	require.Nil(t, err)
	for i, ti := range res.T {
		assert.Equal(t, weibull.ScaledPDF(ti, p.A, p.Beta, p.Eta), res.Forecast[i])
	}
}

func TestFitErrors(t *testing.T) {
	testData := map[string]struct {
		obs []timedataset.Observation
		err error
	}{
		"no observations": {
			nil,
			ErrEmptyInput,
		},
		"all zero": {
			[]timedataset.Observation{{Time: 1, Measure: 0}, {Time: 2, Measure: 0}},
			ErrEmptyInput,
		},
		"negative measure": {
			[]timedataset.Observation{{Time: 1, Measure: 3}, {Time: 2, Measure: -1}},
			ErrMalformedRecord,
		},
		"zero time": {
			[]timedataset.Observation{{Time: 0, Measure: 3}},
			ErrMalformedRecord,
		},
		"nan measure": {
			[]timedataset.Observation{{Time: 1, Measure: math.NaN()}},
			ErrMalformedRecord,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := New(nil)
			require.Nil(t, err)
			assert.ErrorIs(t, f.Fit(td.obs), td.err)

			_, err = f.Forecast()
			assert.ErrorIs(t, err, ErrUntrainedForecaster)

			_, err = Run(td.obs, nil)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestFitIterationBudget(t *testing.T) {
	rising := []timedataset.Observation{
		{Time: 1, Measure: 1},
		{Time: 2, Measure: 2},
		{Time: 3, Measure: 4},
		{Time: 4, Measure: 8},
		{Time: 5, Measure: 16},
	}

	testData := map[string]struct {
		obs        []timedataset.Observation
		solver     string
		iterations int
	}{
		"levenberg-marquardt": {setupWithZeros(), models.SolverLevenbergMarquardt, 1},
		"bfgs":                {setupWithZeros(), models.SolverBFGS, 1},
		"bfgs rising":         {rising, models.SolverBFGS, 5},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt := &Options{
				ForecastOptions: &options.Options{Solver: td.solver, Iterations: td.iterations},
			}
			f, err := New(opt)
			require.Nil(t, err)

			err = f.Fit(td.obs)
			assert.ErrorIs(t, err, ErrFitDivergence)
			assert.ErrorIs(t, err, models.ErrMaxIterations)

			_, err = f.Forecast()
			assert.ErrorIs(t, err, ErrUntrainedForecaster)
		})
	}
}

func TestFitSingleObservation(t *testing.T) {
	obs := []timedataset.Observation{{Time: 3, Measure: 7}}

	res, err := Run(obs, nil)
	if err != nil {
		assert.ErrorIs(t, err, ErrFitDivergence)
		return
	}
	require.Equal(t, 3, res.Len())
	for _, v := range res.Forecast {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
}

func TestFitNoWorseThanInitialGuess(t *testing.T) {
	tSeries := timedataset.GenerateT(48)
	y := timedataset.GenerateWeibullY(tSeries, weibull.Params{A: 300.0, Beta: 1.6, Eta: 18.0}).
		Add(timedataset.GenerateNoise(tSeries, 0.8, 7)).
		Round()
	obs := toObservations(tSeries, y)

	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(obs))

	m, err := f.Model()
	require.Nil(t, err)
	assert.LessOrEqual(t, m.Forecast.SSR, m.Forecast.InitialSSR)

	filtered := f.FilteredData()
	var initialSSR, fitSSR float64
	for i, ti := range filtered.T {
		initialSSR += math.Pow(filtered.Y[i]-m.Forecast.Initial.Eval(ti), 2)
		fitSSR += math.Pow(filtered.Y[i]-m.Forecast.Params.Eval(ti), 2)
	}
	assert.LessOrEqual(t, fitSSR, initialSSR)
}

func TestFitDeterministic(t *testing.T) {
	obs := setupWithZeros()

	first, err := Run(obs, nil)
	require.Nil(t, err)
	second, err := Run(obs, nil)
	require.Nil(t, err)

	assert.Equal(t, first, second)
}

func TestPredictDistribution(t *testing.T) {
	f, err := New(&Options{IncludeDistribution: true})
	require.Nil(t, err)
	require.Nil(t, f.Fit(setupWithZeros()))

	res, err := f.Predict([]float64{5, 25, 70})
	require.Nil(t, err)
	require.Len(t, res.CDF, 3)
	require.Len(t, res.PDF, 3)

	p, err := f.Params()
	require.Nil(t, err)
	for i, ti := range res.T {
		assert.InDelta(t, weibull.CDF(ti, p.Beta, p.Eta), res.CDF[i], 1e-12)
		assert.InDelta(t, res.Forecast[i], p.A*res.PDF[i], 1e-9)
	}

	records := res.Records()
	require.Len(t, records, 3)
	require.NotNil(t, records[1].CDF)
	assert.Equal(t, res.CDF[1], *records[1].CDF)
}

func TestUninitializedForecaster(t *testing.T) {
	var f *Forecaster
	assert.ErrorIs(t, f.Fit(setupWithZeros()), ErrUninitializedForecaster)

	_, err := f.Horizon()
	assert.ErrorIs(t, err, ErrUninitializedForecaster)
	_, err = f.Model()
	assert.ErrorIs(t, err, ErrUninitializedForecaster)
	assert.Nil(t, f.TrainingData())
	assert.Nil(t, f.Residuals())
}

func TestNewInvalidOptions(t *testing.T) {
	_, err := New(&Options{ForecastOptions: &options.Options{Solver: "simplex"}})
	assert.ErrorIs(t, err, models.ErrUnknownSolver)
}

func TestPlotFit(t *testing.T) {
	f, err := New(nil)
	require.Nil(t, err)

	var buf bytes.Buffer
	assert.ErrorIs(t, f.PlotFit(&buf), ErrUntrainedForecaster)

	require.Nil(t, f.Fit(setupWithZeros()))
	require.Nil(t, f.PlotFit(&buf))

	html := buf.String()
	assert.Contains(t, html, "Forecast Fit")
	assert.Contains(t, html, "Reference Distribution")
	assert.Contains(t, html, "Forecast Residual")
}

func TestResidualOutliers(t *testing.T) {
	obs := setupWithZeros()
	obs[29].Measure += 400

	f, err := New(nil)
	require.Nil(t, err)
	require.Nil(t, f.Fit(obs))

	outliers := f.ResidualOutliers()
	assert.Contains(t, outliers, 30.0)

	m, err := f.Model()
	require.Nil(t, err)
	assert.Equal(t, outliers, m.ResidualOutliers)

	noOutliers, err := New(&Options{})
	require.Nil(t, err)
	require.Nil(t, noOutliers.Fit(obs))
	assert.Nil(t, noOutliers.ResidualOutliers())
}
