package stats

import "math"

// invNormCDF computes the inverse of the standard normal CDF (the probit
// function). The standard library does not expose this directly;
// math.Erfinv provides the underlying primitive via the identity
// invNormCDF(p) = sqrt(2) * erfinv(2p - 1), which is what is used here
// instead of a hand-rolled rational approximation — no magic numbers, and
// bit-exact determinism from a single documented identity (spec.md §4.3
// "same inputs -> same outputs").
func invNormCDF(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
