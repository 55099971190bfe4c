// Package timedataset holds the observed period counts, the zero-measure filter applied
// before fitting and the forecast horizon derived from them.
package timedataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrEmptyInput         = errors.New("no non-zero observations to fit")
	ErrMalformedRecord    = errors.New("malformed observation record")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
)

// TimeDataset represents a series of observed periods and their measures. Both must be of
// the same length.
type TimeDataset struct {
	T []float64
	Y []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
func NewUnivariateDataset(t []float64, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrEmptyInput
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 0; i < len(t); i++ {
		if err := (Observation{Time: t[i], Measure: y[i]}).Validate(); err != nil {
			return nil, fmt.Errorf("record %d, %w", i, err)
		}
	}

	tSeries := make([]float64, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	td := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}

	return td, nil
}

// FromObservations splits the observations into a TimeDataset preserving their order
func FromObservations(obs []Observation) (*TimeDataset, error) {
	t := make([]float64, 0, len(obs))
	y := make([]float64, 0, len(obs))
	for _, o := range obs {
		t = append(t, o.Time)
		y = append(y, o.Measure)
	}
	return NewUnivariateDataset(t, y)
}

// DropZeros returns the ordered subsequence of points whose measure is not exactly zero.
// ErrEmptyInput is returned if every measure is zero.
func (td *TimeDataset) DropZeros() (*TimeDataset, error) {
	if td == nil {
		return nil, ErrEmptyInput
	}

	t := make([]float64, 0, len(td.T))
	y := make([]float64, 0, len(td.Y))
	for i := 0; i < len(td.T); i++ {
		if td.Y[i] == 0 {
			continue
		}
		t = append(t, td.T[i])
		y = append(y, td.Y[i])
	}
	if len(y) == 0 {
		return nil, fmt.Errorf("all %d measures are zero, %w", td.Len(), ErrEmptyInput)
	}
	return &TimeDataset{T: t, Y: y}, nil
}

// Len is the number of observed points
func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.T)
}

// MaxT is the largest observed time or 0 for an empty dataset
func (td *TimeDataset) MaxT() float64 {
	if td.Len() == 0 {
		return 0
	}
	return floats.Max(td.T)
}

// Observations converts the dataset back into its records
func (td *TimeDataset) Observations() []Observation {
	obs := make([]Observation, 0, td.Len())
	for i := 0; i < td.Len(); i++ {
		obs = append(obs, Observation{Time: td.T[i], Measure: td.Y[i]})
	}
	return obs
}

func (td *TimeDataset) Copy() *TimeDataset {
	tSeries := make([]float64, len(td.T))
	ySeries := make([]float64, len(td.T))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}
