package timedataset

import "math"

// ForecastGap is the number of zero-measure periods dropped before fitting. The forecast
// extends one period past the last observation for each of them.
func ForecastGap(nRaw, nFiltered int) int {
	gap := nRaw - nFiltered
	if gap < 0 {
		return 0
	}
	return gap
}

// Horizon returns the contiguous integer periods 1 through floor(maxT + gap) where gap is
// the ForecastGap. The horizon always starts at 1 regardless of the first observed time.
func Horizon(nRaw, nFiltered int, maxT float64) []float64 {
	end := int(math.Floor(maxT + float64(ForecastGap(nRaw, nFiltered))))
	if end < 1 {
		return []float64{}
	}

	t := make([]float64, 0, end)
	for i := 1; i <= end; i++ {
		t = append(t, float64(i))
	}
	return t
}
