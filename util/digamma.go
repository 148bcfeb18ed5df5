package util

import "math"

// Digamma approximates the digamma function for x > 0. The argument is
// shifted above 7 with psi(x) = psi(x+1) - 1/x and the asymptotic series
// around x - 1/2 is applied.
// cf. http://web.science.mq.edu.au/~mjohnson/code/digamma.c
func Digamma(x float64) float64 {
	if x <= 0 {
		panic("util: digamma of non-positive argument")
	}
	result := 0.0
	for ; x < 7; x += 1 {
		result -= 1 / x
	}
	x -= 1.0 / 2.0
	xx := 1.0 / x
	xx2 := xx * xx
	xx4 := xx2 * xx2
	result += math.Log(x) + (1.0/24)*xx2 - (7.0/960)*xx4 +
		(31.0/8064)*xx4*xx2 - (127.0/30720)*xx4*xx4
	return result
}
