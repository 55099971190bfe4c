package models

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// jacobian fills dst (len(x) by len(p)) with the partial derivatives of fn at every x. An
// analytic gradient is used when provided, otherwise central finite differences.
func jacobian(dst *mat.Dense, fn ModelFunc, grad GradFunc, x, p []float64) {
	if grad != nil {
		row := make([]float64, len(p))
		for i, xi := range x {
			grad(row, xi, p)
			dst.SetRow(i, row)
		}
		return
	}

	predict := func(yhat, params []float64) {
		for i, xi := range x {
			yhat[i] = fn(xi, params)
		}
	}
	fd.Jacobian(dst, predict, p, &fd.JacobianSettings{Formula: fd.Central})
}
