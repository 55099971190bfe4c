package forecast

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-weibull-forecaster/forecast/options"
	"github.com/aouyang1/go-weibull-forecaster/models"
	"github.com/aouyang1/go-weibull-forecaster/timedataset"
	"github.com/aouyang1/go-weibull-forecaster/weibull"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Initial guess shape, a Rayleigh curve
const InitialBeta = 2.0

var (
	ErrUninitializedForecast = errors.New("uninitialized forecast")
	ErrUntrainedForecast     = errors.New("forecast has not been trained yet")
	ErrNonFiniteForecast     = errors.New("non-finite forecast value")
)

// Forecast represents a scaled Weibull fit of a count series. The amplitude, shape and scale
// are recovered with an unweighted nonlinear least squares solve.
type Forecast struct {
	opt    *options.Options
	scores *Scores // score calculations after training

	initial weibull.Params
	params  weibull.Params
	result  *models.Result

	residual []float64
	trained  bool
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *options.Options) (*Forecast, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	return &Forecast{opt: opt}, nil
}

// InitialGuess seeds the solver with the total observed count as the amplitude, a shape
// of 2 and the mean observed time as the scale.
func InitialGuess(t, y []float64) weibull.Params {
	return weibull.Params{
		A:    floats.Sum(y),
		Beta: InitialBeta,
		Eta:  stat.Mean(t, nil),
	}
}

// Fit takes the observed times and measures and solves for the scaled Weibull parameters.
// Zero measures are expected to have been dropped by the caller.
func (f *Forecast) Fit(t, y []float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}

	trainingData, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return err
	}

	solver, err := f.opt.NewSolver()
	if err != nil {
		return err
	}

	f.trained = false
	f.initial = InitialGuess(trainingData.T, trainingData.Y)

	res, err := solver.Solve(weibull.Model, trainingData.T, trainingData.Y, f.initial.Vec())
	if err != nil {
		return fmt.Errorf("unable to fit scaled weibull from %s, %w", f.initial, err)
	}

	params, err := weibull.NewParamsFromVec(res.Params)
	if err != nil {
		return err
	}
	if !params.IsFinite() {
		return fmt.Errorf("%s, %w, %w", params, models.ErrNonFiniteParams, models.ErrFitDivergence)
	}
	f.params = params
	f.result = res
	f.trained = true

	predicted, err := f.Predict(trainingData.T)
	if err != nil {
		f.trained = false
		return err
	}

	scores, err := NewScores(predicted, trainingData.Y)
	if err != nil {
		return err
	}
	f.scores = scores

	residual := make([]float64, len(trainingData.T))
	floats.SubTo(residual, trainingData.Y, predicted)
	f.residual = residual

	return nil
}

// Predict evaluates the fitted scaled Weibull density at every time in t
func (f *Forecast) Predict(t []float64) ([]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, ErrUntrainedForecast
	}

	res := make([]float64, len(t))
	for i, ti := range t {
		val := f.params.Eval(ti)
		if !isFinite(val) {
			return nil, fmt.Errorf("at time %v with %s, %w, %w", ti, f.params, ErrNonFiniteForecast, models.ErrFitDivergence)
		}
		res[i] = val
	}
	return res, nil
}

// Distribution evaluates the reference unscaled Weibull CDF and PDF with the fitted shape and
// scale at every time in t. These describe the failure distribution, not forecast counts.
func (f *Forecast) Distribution(t []float64) ([]float64, []float64, error) {
	if f == nil {
		return nil, nil, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, nil, ErrUntrainedForecast
	}

	cdf := make([]float64, len(t))
	pdf := make([]float64, len(t))
	for i, ti := range t {
		cdf[i] = weibull.CDF(ti, f.params.Beta, f.params.Eta)
		pdf[i] = weibull.PDF(ti, f.params.Beta, f.params.Eta)
	}
	return cdf, pdf, nil
}

// Params returns the fitted parameters
func (f *Forecast) Params() weibull.Params {
	if f == nil {
		return weibull.Params{}
	}
	return f.params
}

// InitialParams returns the initial guess used for the last fit
func (f *Forecast) InitialParams() weibull.Params {
	if f == nil {
		return weibull.Params{}
	}
	return f.initial
}

// Iterations is the number of solver iterations used by the last fit
func (f *Forecast) Iterations() int {
	if f == nil || f.result == nil {
		return 0
	}
	return f.result.Iterations
}

// Scores returns the fit scores for evaluating how well the resulting model
// fit the training data
func (f *Forecast) Scores() Scores {
	if f == nil {
		return Scores{}
	}
	if f.scores == nil {
		return Scores{}
	}
	return *f.scores
}

// Residuals returns a slice of values representing the difference between the
// training data and the fit data
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}

// Model returns a reporting snapshot of the fit with the options, initial guess, fitted
// parameters and scores
func (f *Forecast) Model() (Model, error) {
	if f == nil {
		return Model{}, ErrUninitializedForecast
	}
	if !f.trained {
		return Model{}, ErrUntrainedForecast
	}

	m := Model{
		Options:    f.opt,
		Initial:    f.initial,
		Params:     f.params,
		Iterations: f.result.Iterations,
		Evals:      f.result.Evals,
		InitialSSR: f.result.InitialSSR,
		SSR:        f.result.SSR,
		Scores:     f.scores,
	}
	return m, nil
}

// ModelEq returns a string representation of the fitted model equation in the format of
// y ~ A*(beta/eta)*(t/eta)^(beta-1)*exp(-(t/eta)^beta)
func (f *Forecast) ModelEq() (string, error) {
	if f == nil {
		return "", ErrUninitializedForecast
	}
	if !f.trained {
		return "", ErrUntrainedForecast
	}

	p := f.params
	return fmt.Sprintf("y ~ %.2f*(%.2f/%.2f)*(t/%.2f)^%.2f*exp(-(t/%.2f)^%.2f)",
		p.A, p.Beta, p.Eta, p.Eta, p.Beta-1, p.Eta, p.Beta), nil
}
