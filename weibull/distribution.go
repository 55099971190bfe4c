package weibull

import "gonum.org/v1/gonum/stat/distuv"

// reference returns the unscaled two parameter Weibull distribution with loc = 0
func reference(beta, eta float64) distuv.Weibull {
	return distuv.Weibull{K: beta, Lambda: eta}
}

// CDF is the reference Weibull cumulative distribution at t
func CDF(t, beta, eta float64) float64 {
	return reference(beta, eta).CDF(t)
}

// PDF is the reference Weibull probability density at t. This matches ScaledPDF with A = 1.
func PDF(t, beta, eta float64) float64 {
	return reference(beta, eta).Prob(t)
}
