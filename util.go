package forecaster

import (
	"math"

	"github.com/aouyang1/go-weibull-forecaster/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that much have the same length as the input time slice. NaN values are left
// as gaps.
func LineTSeries(title string, seriesName []string, t []float64, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	lineData := make([][]opts.LineData, len(y))
	for i := 0; i < len(y); i++ {
		lineData[i] = make([]opts.LineData, 0, len(y[i]))
		for j := 0; j < len(y[i]); j++ {
			if math.IsNaN(y[i][j]) {
				lineData[i] = append(lineData[i], opts.LineData{Value: "-"})
				continue
			}
			lineData[i] = append(lineData[i], opts.LineData{Value: y[i][j]})
		}
	}

	line = line.SetXAxis(t)
	for i, series := range seriesName {
		if i >= len(lineData) {
			break
		}
		line = line.AddSeries(series, lineData[i])
	}

	return line
}

// LineForecaster generates an echart line chart of the observations alongside the forecast over
// its horizon. Horizon periods without an observation are left as gaps in the actual series.
func LineForecaster(trainingData *timedataset.TimeDataset, res *Results) *charts.Line {
	actual := make([]float64, len(res.T))
	observed := make(map[float64]float64, trainingData.Len())
	if trainingData != nil {
		for i, t := range trainingData.T {
			observed[t] = trainingData.Y[i]
		}
	}
	for i, t := range res.T {
		y, exists := observed[t]
		if !exists {
			y = math.NaN()
		}
		actual[i] = y
	}

	return LineTSeries(
		"Forecast Fit",
		[]string{"Actual", "Forecast"},
		res.T,
		[][]float64{actual, res.Forecast},
	)
}
