// Package weibull defines the scaled Weibull density used as both the fit target and the
// forecast evaluator, along with the reference unscaled Weibull distribution.
//
// All evaluations assume t >= 1. At t = 0 with a shape below 1 the density is infinite.
package weibull

import (
	"fmt"
	"math"
)

// Parameter vector positions used by the solvers
const (
	IdxA = iota
	IdxBeta
	IdxEta

	NumParams
)

// Params are the three free parameters of the scaled Weibull density
type Params struct {
	A    float64 `json:"a"`
	Beta float64 `json:"beta"`
	Eta  float64 `json:"eta"`
}

// NewParamsFromVec converts a solver parameter vector in [A, beta, eta] order
func NewParamsFromVec(p []float64) (Params, error) {
	if len(p) != NumParams {
		return Params{}, fmt.Errorf("expected %d parameters, but got %d, %w", NumParams, len(p), ErrParamLen)
	}
	return Params{A: p[IdxA], Beta: p[IdxBeta], Eta: p[IdxEta]}, nil
}

// Vec returns the parameters in the [A, beta, eta] order expected by the solvers
func (p Params) Vec() []float64 {
	return []float64{p.A, p.Beta, p.Eta}
}

// IsFinite is true when none of the parameters are NaN or infinite
func (p Params) IsFinite() bool {
	for _, v := range p.Vec() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p Params) String() string {
	return fmt.Sprintf("A=%.4f beta=%.4f eta=%.4f", p.A, p.Beta, p.Eta)
}

// ScaledPDF evaluates A * (beta/eta) * (t/eta)^(beta-1) * exp(-(t/eta)^beta).
func ScaledPDF(t, a, beta, eta float64) float64 {
	z := t / eta
	return a * (beta / eta) * math.Pow(z, beta-1) * math.Exp(-math.Pow(z, beta))
}

// Eval evaluates the scaled density at t with these parameters
func (p Params) Eval(t float64) float64 {
	return ScaledPDF(t, p.A, p.Beta, p.Eta)
}

// Model is ScaledPDF in solver form where p is [A, beta, eta]
func Model(t float64, p []float64) float64 {
	return ScaledPDF(t, p[IdxA], p[IdxBeta], p[IdxEta])
}

// Gradient writes the partial derivatives of the scaled density with respect to
// A, beta and eta at t into grad.
func Gradient(grad []float64, t float64, p []float64) {
	a, beta, eta := p[IdxA], p[IdxBeta], p[IdxEta]
	z := t / eta
	u := math.Pow(z, beta)
	unit := (beta / eta) * math.Pow(z, beta-1) * math.Exp(-u)
	f := a * unit
	logZ := math.Log(z)

	grad[IdxA] = unit
	grad[IdxBeta] = f * (1/beta + logZ*(1-u))
	grad[IdxEta] = f * beta * (u - 1) / eta
}
