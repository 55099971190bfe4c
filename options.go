package forecaster

import (
	"errors"

	"github.com/aouyang1/go-weibull-forecaster/forecast/options"
)

var (
	ErrInvalidPercentile   = errors.New("outlier percentiles must satisfy 0 <= lower <= upper <= 1")
	ErrNegativeTukeyFactor = errors.New("negative tukey factor")
)

// OutlierOptions sets the Tukey fences used to flag fit residuals as outliers. Outliers are
// reported on the model and never refit.
type OutlierOptions struct {
	UpperPercentile float64 `json:"upper_percentile" yaml:"upper_percentile"`
	LowerPercentile float64 `json:"lower_percentile" yaml:"lower_percentile"`
	TukeyFactor     float64 `json:"tukey_factor" yaml:"tukey_factor"`
}

func NewOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     1.0,
	}
}

// Validate checks the fence percentiles, returning nil when no outlier detection is set
func (o *OutlierOptions) Validate() (*OutlierOptions, error) {
	if o == nil {
		return nil, nil
	}
	if o.LowerPercentile < 0 || o.UpperPercentile > 1 || o.LowerPercentile > o.UpperPercentile {
		return nil, ErrInvalidPercentile
	}
	if o.TukeyFactor < 0 {
		return nil, ErrNegativeTukeyFactor
	}
	return o, nil
}

// Options configures the forecaster. ForecastOptions controls the least squares solve and
// IncludeDistribution adds the reference Weibull CDF and PDF to the results.
type Options struct {
	ForecastOptions     *options.Options `json:"forecast_options" yaml:"forecast_options"`
	OutlierOptions      *OutlierOptions  `json:"outlier_options" yaml:"outlier_options"`
	IncludeDistribution bool             `json:"include_distribution" yaml:"include_distribution"`
}

// NewDefaultOptions returns default forecaster options
func NewDefaultOptions() *Options {
	return &Options{
		ForecastOptions: options.NewDefaultOptions(),
		OutlierOptions:  NewOutlierOptions(),
	}
}

// Validate checks the options, filling in defaults where unset
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	forecastOpt, err := o.ForecastOptions.Validate()
	if err != nil {
		return nil, err
	}
	outlierOpt, err := o.OutlierOptions.Validate()
	if err != nil {
		return nil, err
	}
	return &Options{
		ForecastOptions:     forecastOpt,
		OutlierOptions:      outlierOpt,
		IncludeDistribution: o.IncludeDistribution,
	}, nil
}
