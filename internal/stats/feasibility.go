package stats

import "math"

// Feasibility is the result of the central credibility function: given a
// configured sample size, does it suffice to distinguish the target p0 from
// lower rates at the declared confidence (spec.md §4.3, §8)?
type Feasibility struct {
	Feasible     bool
	NMin         int
	ConfiguredN  int
	ConfiguredAlpha float64
	Target       float64
	Criterion    string
}

const wilsonCriterion = "Wilson score one-sided lower bound"

// FeasibilityGate computes n_min = ceil(p0 * z^2 / (1 - p0)) such that the
// Wilson lower bound at perfect observation (k == n) reaches p0, and reports
// whether the configured n meets it.
func FeasibilityGate(n int, p0, c float64) (Feasibility, error) {
	if n <= 0 {
		return Feasibility{}, errDomain("samples must be > 0")
	}
	if p0 <= 0 || p0 >= 1 {
		return Feasibility{}, errDomain("target pass rate must be in (0, 1)")
	}
	if c <= 0 || c >= 1 {
		return Feasibility{}, errDomain("confidence must be in (0, 1): alpha = 0 or 1 makes finite-sample inference vacuous")
	}

	z := zFromConfidence(c)
	nMin := int(math.Ceil(p0 * z * z / (1 - p0)))
	if nMin < 1 {
		nMin = 1
	}

	return Feasibility{
		Feasible:        n >= nMin,
		NMin:            nMin,
		ConfiguredN:     n,
		ConfiguredAlpha: 1 - c,
		Target:          p0,
		Criterion:       wilsonCriterion,
	}, nil
}
