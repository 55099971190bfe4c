package models

import "gonum.org/v1/gonum/floats"

// Residuals writes y - fn(x, p) into dst and returns it. dst is allocated if nil.
func Residuals(dst []float64, fn ModelFunc, x, y, p []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(x))
	}
	for i, xi := range x {
		dst[i] = y[i] - fn(xi, p)
	}
	return dst
}

// SumSquaredResiduals is the unweighted least squares objective sum((y - fn(x, p))^2)
func SumSquaredResiduals(fn ModelFunc, x, y, p []float64) float64 {
	r := Residuals(nil, fn, x, y, p)
	return floats.Dot(r, r)
}
