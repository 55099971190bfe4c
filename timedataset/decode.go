package timedataset

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// observationRecord is the wire form of an Observation. Both fields are pointers so a
// missing field can be told apart from a zero.
type observationRecord struct {
	Time    *float64 `json:"time"`
	Measure *float64 `json:"measure"`
}

// DecodeObservations reads a JSON array of {"time": n, "measure": n} records. Undecodable
// input, missing fields and invalid values are all reported as ErrMalformedRecord.
func DecodeObservations(r io.Reader) ([]Observation, error) {
	var records []observationRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("unable to decode observations, %w, %w", err, ErrMalformedRecord)
	}

	obs := make([]Observation, 0, len(records))
	for i, rec := range records {
		if rec.Time == nil {
			return nil, fmt.Errorf("record %d, missing time, %w", i, ErrMalformedRecord)
		}
		if rec.Measure == nil {
			return nil, fmt.Errorf("record %d, missing measure, %w", i, ErrMalformedRecord)
		}
		o := Observation{Time: *rec.Time, Measure: *rec.Measure}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("record %d, %w", i, err)
		}
		obs = append(obs, o)
	}
	return obs, nil
}
