package timedataset

import (
	"fmt"
	"math"
)

// Observation is one period's observed event count
type Observation struct {
	Time    float64 `json:"time"`
	Measure float64 `json:"measure"`
}

// Validate checks that the time is a finite positive period and the measure a finite
// non-negative count.
func (o Observation) Validate() error {
	if math.IsNaN(o.Time) || math.IsInf(o.Time, 0) || o.Time <= 0 {
		return fmt.Errorf("time %v must be a finite positive number, %w", o.Time, ErrMalformedRecord)
	}
	if math.IsNaN(o.Measure) || math.IsInf(o.Measure, 0) || o.Measure < 0 {
		return fmt.Errorf("measure %v must be a finite non-negative number, %w", o.Measure, ErrMalformedRecord)
	}
	return nil
}

// ValidateObservations validates every observation, reporting the index of the first
// malformed record.
func ValidateObservations(obs []Observation) error {
	for i, o := range obs {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("record %d, %w", i, err)
		}
	}
	return nil
}
