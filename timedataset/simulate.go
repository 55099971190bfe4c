package timedataset

import (
	"math"
	"math/rand/v2"

	"github.com/aouyang1/go-weibull-forecaster/weibull"
	"gonum.org/v1/gonum/floats"
)

// GenerateT returns the periods 1 through n
func GenerateT(n int) []float64 {
	t := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		t = append(t, float64(i))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// SetZero zeroes every period in [start, end)
func (s Series) SetZero(t []float64, start, end float64) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		if t[i] >= start && t[i] < end {
			s[i] = 0.0
		}
	}
	return s
}

// Round rounds each value to the nearest whole count, clipping negatives to 0
func (s Series) Round() Series {
	for i, v := range s {
		s[i] = math.Max(math.Round(v), 0.0)
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateWeibullY evaluates the scaled Weibull density with the given parameters at t
func GenerateWeibullY(t []float64, p weibull.Params) Series {
	y := make([]float64, 0, len(t))
	for _, ti := range t {
		y = append(y, p.Eval(ti))
	}
	return Series(y)
}

// GenerateNoise returns normally distributed noise with the given scale. The seed makes the
// series repeatable.
func GenerateNoise(t []float64, noiseScale float64, seed uint64) Series {
	rng := rand.New(rand.NewPCG(seed, seed))
	y := make([]float64, 0, len(t))
	for range t {
		y = append(y, rng.NormFloat64()*noiseScale)
	}
	return Series(y)
}
