package forecaster

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords(t *testing.T) {
	testData := map[string]struct {
		res      *Results
		expected string
	}{
		"nil": {
			nil,
			`[]`,
		},
		"forecast only": {
			&Results{T: []float64{1, 2}, Forecast: []float64{0.5, 1.5}},
			`[{"time":1,"forecast":0.5},{"time":2,"forecast":1.5}]`,
		},
		"with distribution": {
			&Results{T: []float64{1}, Forecast: []float64{0.5}, CDF: []float64{0.25}, PDF: []float64{0.125}},
			`[{"time":1,"forecast":0.5,"cdf":0.25,"pdf":0.125}]`,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			b, err := json.Marshal(td.res.Records())
			require.Nil(t, err)
			assert.JSONEq(t, td.expected, string(b))
		})
	}
}
