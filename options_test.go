package forecaster

import (
	"testing"

	"github.com/aouyang1/go-weibull-forecaster/forecast/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *Options
		expected *Options
		err      error
	}{
		"nil": {
			nil,
			NewDefaultOptions(),
			nil,
		},
		"empty forecast options": {
			&Options{IncludeDistribution: true},
			&Options{ForecastOptions: options.NewDefaultOptions(), IncludeDistribution: true},
			nil,
		},
		"with outliers": {
			&Options{OutlierOptions: &OutlierOptions{LowerPercentile: 0.25, UpperPercentile: 0.75, TukeyFactor: 1.5}},
			&Options{
				ForecastOptions: options.NewDefaultOptions(),
				OutlierOptions:  &OutlierOptions{LowerPercentile: 0.25, UpperPercentile: 0.75, TukeyFactor: 1.5},
			},
			nil,
		},
		"inverted percentiles": {
			&Options{OutlierOptions: &OutlierOptions{LowerPercentile: 0.9, UpperPercentile: 0.1}},
			nil,
			ErrInvalidPercentile,
		},
		"negative tukey": {
			&Options{OutlierOptions: &OutlierOptions{LowerPercentile: 0.1, UpperPercentile: 0.9, TukeyFactor: -1}},
			nil,
			ErrNegativeTukeyFactor,
		},
		"negative iterations": {
			&Options{ForecastOptions: &options.Options{Iterations: -1}},
			nil,
			options.ErrNegativeIterations,
		},
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
