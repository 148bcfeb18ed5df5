package util

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// tolerance on the total mass accepted by Multi
const probTolerance = 1e-4

// Multi draws an index from the categorical distribution probs. probs must
// be non-negative and sum to one; the first index whose cumulative mass
// exceeds a uniform draw is returned, the last index absorbs rounding.
func Multi(rng *rand.Rand, probs []float64) int {
	if len(probs) == 0 {
		panic("util: empty distribution")
	}
	if s := floats.Sum(probs); math.Abs(s-1.0) >= probTolerance {
		panic(fmt.Sprintf("util: distribution sums to %g", s))
	}
	if m := floats.Min(probs); m < 0 {
		panic(fmt.Sprintf("util: negative probability %g", m))
	}

	u := rng.Float64()
	p := 0.0
	for i, prob := range probs {
		p += prob
		if p > u {
			return i
		}
	}
	return len(probs) - 1
}
