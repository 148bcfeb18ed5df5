package util

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

func uniform(vec []float64) {
	for i := range vec {
		vec[i] = 1.0 / float64(len(vec))
	}
}

// Normalize rescales vec in place to sum to one. When the mass is zero
// (or not finite) vec becomes the uniform distribution and false is returned.
func Normalize(vec []float64) bool {
	if len(vec) == 0 {
		return true
	}
	s := floats.Sum(vec)
	if s == 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		uniform(vec)
		return false
	}
	floats.Scale(1.0/s, vec)
	return true
}

// LogNormalize turns unnormalized log weights into probabilities in place,
// subtracting the maximum before exponentiating to avoid overflow
func LogNormalize(logw []float64) bool {
	if len(logw) == 0 {
		return true
	}
	top := floats.Max(logw)
	if math.IsInf(top, 0) || math.IsNaN(top) {
		uniform(logw)
		return false
	}
	floats.AddConst(-top, logw)
	for i, v := range logw {
		logw[i] = math.Exp(v)
	}
	return Normalize(logw)
}

// LogGamma is log|Gamma(x)|
func LogGamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
