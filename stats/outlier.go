// Package stats holds robust statistics over fit residuals
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DetectOutliers returns the indices of y lying on or outside the Tukey fences built from the
// lower and upper percentiles. The fences are widened by tukeyFactor times the range between
// the percentiles.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, len(y))
	copy(yCopy, y)
	sort.Float64s(yCopy)

	lower := stat.Quantile(lowerPerc, stat.Empirical, yCopy, nil)
	upper := stat.Quantile(upperPerc, stat.Empirical, yCopy, nil)
	innerRange := upper - lower
	// a flat interior has no spread to measure against
	if innerRange == 0 {
		return nil
	}
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] >= upper || y[i] <= lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}
