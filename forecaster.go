// Package forecaster fits a scaled Weibull curve to a series of period counts and projects
// it over a horizon that covers the observed periods plus one step per dropped zero count.
package forecaster

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aouyang1/go-weibull-forecaster/forecast"
	"github.com/aouyang1/go-weibull-forecaster/models"
	"github.com/aouyang1/go-weibull-forecaster/stats"
	"github.com/aouyang1/go-weibull-forecaster/timedataset"
	"github.com/aouyang1/go-weibull-forecaster/weibull"
	"github.com/go-echarts/go-echarts/v2/components"
)

var (
	ErrEmptyInput      = timedataset.ErrEmptyInput
	ErrMalformedRecord = timedataset.ErrMalformedRecord
	ErrFitDivergence   = models.ErrFitDivergence

	ErrUninitializedForecaster = errors.New("uninitialized forecaster")
	ErrUntrainedForecaster     = errors.New("forecaster has not been fit yet")
)

// Forecaster fits a scaled Weibull forecast model and can be used to generate forecasts
type Forecaster struct {
	opt *Options

	seriesForecast *forecast.Forecast

	fitTrainingData *timedataset.TimeDataset
	filteredData    *timedataset.TimeDataset
	horizon         []float64
	trained         bool
}

// New creates a new instance of a Forecaster using the provided options. If no options are
// provided a default is used.
func New(opt *Options) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	seriesForecast, err := forecast.New(opt.ForecastOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast series, %w", err)
	}

	return &Forecaster{
		opt:            opt,
		seriesForecast: seriesForecast,
	}, nil
}

// Fit drops the zero count observations, fits the scaled Weibull curve to the rest and
// derives the forecast horizon from the observation counts and the last non-zero period.
func (f *Forecaster) Fit(obs []timedataset.Observation) error {
	if f == nil {
		return ErrUninitializedForecaster
	}
	f.trained = false

	if len(obs) == 0 {
		return ErrEmptyInput
	}
	if err := timedataset.ValidateObservations(obs); err != nil {
		return err
	}

	trainingData, err := timedataset.FromObservations(obs)
	if err != nil {
		return err
	}

	filteredData, err := trainingData.DropZeros()
	if err != nil {
		return err
	}

	if err := f.seriesForecast.Fit(filteredData.T, filteredData.Y); err != nil {
		slog.Warn("unable to fit forecast series",
			"observations", trainingData.Len(),
			"filtered", filteredData.Len(),
			"error", err,
		)
		return fmt.Errorf("unable to forecast series, %w", err)
	}

	f.fitTrainingData = trainingData
	f.filteredData = filteredData
	f.horizon = timedataset.Horizon(trainingData.Len(), filteredData.Len(), filteredData.MaxT())
	f.trained = true

	slog.Debug("fit scaled weibull",
		"observations", trainingData.Len(),
		"filtered", filteredData.Len(),
		"horizon", len(f.horizon),
		"params", f.seriesForecast.Params().String(),
		"iterations", f.seriesForecast.Iterations(),
	)
	if outliers := f.ResidualOutliers(); len(outliers) > 0 {
		slog.Debug("residual outliers", "times", outliers)
	}
	return nil
}

// Horizon returns the time points the forecast covers, 1 through the last non-zero period
// extended by the number of dropped zero observations.
func (f *Forecaster) Horizon() ([]float64, error) {
	if err := f.checkTrained(); err != nil {
		return nil, err
	}
	horizon := make([]float64, len(f.horizon))
	copy(horizon, f.horizon)
	return horizon, nil
}

// Predict evaluates the fitted curve at each of the input times. The reference distribution
// is included if requested in the options.
func (f *Forecaster) Predict(t []float64) (*Results, error) {
	if err := f.checkTrained(); err != nil {
		return nil, err
	}

	forecastRes, err := f.seriesForecast.Predict(t)
	if err != nil {
		return nil, fmt.Errorf("unable to predict series forecasts, %w", err)
	}

	tCopy := make([]float64, len(t))
	copy(tCopy, t)
	res := &Results{
		T:        tCopy,
		Forecast: forecastRes,
	}

	if f.opt.IncludeDistribution {
		cdf, pdf, err := f.seriesForecast.Distribution(t)
		if err != nil {
			return nil, fmt.Errorf("unable to compute reference distribution, %w", err)
		}
		res.CDF = cdf
		res.PDF = pdf
	}
	return res, nil
}

// Forecast predicts over the full forecast horizon
func (f *Forecaster) Forecast() (*Results, error) {
	if err := f.checkTrained(); err != nil {
		return nil, err
	}
	return f.Predict(f.horizon)
}

// Params returns the fitted scaled Weibull parameters
func (f *Forecaster) Params() (weibull.Params, error) {
	if err := f.checkTrained(); err != nil {
		return weibull.Params{}, err
	}
	return f.seriesForecast.Params(), nil
}

// TrainingData returns the observations given to Fit including zero counts
func (f *Forecaster) TrainingData() *timedataset.TimeDataset {
	if f == nil || f.fitTrainingData == nil {
		return nil
	}
	return f.fitTrainingData.Copy()
}

// FilteredData returns the observations the curve was fit to
func (f *Forecaster) FilteredData() *timedataset.TimeDataset {
	if f == nil || f.filteredData == nil {
		return nil
	}
	return f.filteredData.Copy()
}

// Residuals returns the difference between the filtered observations and the fit
func (f *Forecaster) Residuals() []float64 {
	if f == nil || !f.trained {
		return nil
	}
	return f.seriesForecast.Residuals()
}

// Model returns a reporting snapshot of the fit
func (f *Forecaster) Model() (Model, error) {
	if err := f.checkTrained(); err != nil {
		return Model{}, err
	}

	seriesModel, err := f.seriesForecast.Model()
	if err != nil {
		return Model{}, err
	}

	return Model{
		Options:          f.opt,
		Observations:     f.fitTrainingData.Len(),
		Filtered:         f.filteredData.Len(),
		ForecastGap:      timedataset.ForecastGap(f.fitTrainingData.Len(), f.filteredData.Len()),
		Horizon:          len(f.horizon),
		Forecast:         seriesModel,
		ResidualOutliers: f.ResidualOutliers(),
	}, nil
}

// ResidualOutliers returns the observed times whose fit residual falls outside the Tukey
// fences of the outlier options. Nil when outlier detection is not configured.
func (f *Forecaster) ResidualOutliers() []float64 {
	if f == nil || !f.trained || f.opt.OutlierOptions == nil {
		return nil
	}
	outlierOpt := f.opt.OutlierOptions
	idxs := stats.DetectOutliers(
		f.seriesForecast.Residuals(),
		outlierOpt.LowerPercentile,
		outlierOpt.UpperPercentile,
		outlierOpt.TukeyFactor,
	)
	if len(idxs) == 0 {
		return nil
	}
	outliers := make([]float64, 0, len(idxs))
	for _, idx := range idxs {
		outliers = append(outliers, f.filteredData.T[idx])
	}
	return outliers
}

// ModelEq returns the fitted curve as a printable equation
func (f *Forecaster) ModelEq() (string, error) {
	if err := f.checkTrained(); err != nil {
		return "", err
	}
	return f.seriesForecast.ModelEq()
}

// PlotFit uses the Apache Echarts library to render an html page showing the observations
// against the forecast, the reference distribution and the fit residual
func (f *Forecaster) PlotFit(w io.Writer) error {
	res, err := f.Forecast()
	if err != nil {
		return err
	}

	params := f.seriesForecast.Params()
	cdf := make([]float64, len(res.T))
	pdf := make([]float64, len(res.T))
	for i, t := range res.T {
		cdf[i] = weibull.CDF(t, params.Beta, params.Eta)
		pdf[i] = weibull.PDF(t, params.Beta, params.Eta)
	}

	page := components.NewPage()
	page.AddCharts(
		LineForecaster(f.fitTrainingData, res),
		LineTSeries(
			"Reference Distribution",
			[]string{"CDF", "PDF"},
			res.T,
			[][]float64{cdf, pdf},
		),
		LineTSeries(
			"Forecast Residual",
			[]string{"Residual"},
			f.filteredData.T,
			[][]float64{f.seriesForecast.Residuals()},
		),
	)
	return page.Render(w)
}

func (f *Forecaster) checkTrained() error {
	if f == nil {
		return ErrUninitializedForecaster
	}
	if !f.trained {
		return ErrUntrainedForecaster
	}
	return nil
}

// Run fits the observations and returns the forecast over the derived horizon
func Run(obs []timedataset.Observation, opt *Options) (*Results, error) {
	f, err := New(opt)
	if err != nil {
		return nil, err
	}
	if err := f.Fit(obs); err != nil {
		return nil, err
	}
	return f.Forecast()
}
