package forecaster

// Results holds the forecast for every time point in column form. CDF and PDF are only
// populated when the reference distribution is requested.
type Results struct {
	T        []float64 `json:"time"`
	Forecast []float64 `json:"forecast"`
	CDF      []float64 `json:"cdf,omitempty"`
	PDF      []float64 `json:"pdf,omitempty"`
}

// Record is a single forecast time point
type Record struct {
	Time     float64  `json:"time"`
	Forecast float64  `json:"forecast"`
	CDF      *float64 `json:"cdf,omitempty"`
	PDF      *float64 `json:"pdf,omitempty"`
}

// Len is the number of forecast time points
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return len(r.T)
}

// Records converts the results into one record per time point in order
func (r *Results) Records() []Record {
	records := make([]Record, 0, r.Len())
	for i := 0; i < r.Len(); i++ {
		rec := Record{
			Time:     r.T[i],
			Forecast: r.Forecast[i],
		}
		if len(r.CDF) == len(r.T) {
			cdf := r.CDF[i]
			rec.CDF = &cdf
		}
		if len(r.PDF) == len(r.T) {
			pdf := r.PDF[i]
			rec.PDF = &pdf
		}
		records = append(records, rec)
	}
	return records
}
