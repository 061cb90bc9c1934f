package stats

import "math"

// ThresholdMode names which of the three derivation modes produced a
// threshold (spec.md §4.3).
type ThresholdMode string

const (
	ThresholdModeSampleSizeFirst ThresholdMode = "sample_size_first"
	ThresholdModeConfidenceFirst ThresholdMode = "confidence_first"
	ThresholdModeThresholdFirst  ThresholdMode = "threshold_first"
)

// DerivedThreshold is the outcome of any of the three modes.
type DerivedThreshold struct {
	Mode               ThresholdMode
	Threshold          float64
	RequiredSamples    int     // populated for confidence_first
	ImpliedConfidence  float64 // populated for threshold_first
	StatisticallyUnsound bool  // threshold_first: implied confidence < 0.80
}

// SampleSizeFirstThreshold derives a threshold as the Wilson lower bound of
// the baseline's observed rate, re-based onto the test's own sample size, at
// the given confidence.
func SampleSizeFirstThreshold(baselineSamples, baselineSuccesses, testSamples int, confidence float64) (DerivedThreshold, error) {
	if testSamples <= 0 || baselineSamples <= 0 {
		return DerivedThreshold{}, errDomain("sample counts must be > 0")
	}
	rate := float64(baselineSuccesses) / float64(baselineSamples)
	k := int(math.Round(rate * float64(testSamples)))
	lower, err := WilsonLowerBound(k, testSamples, confidence)
	if err != nil {
		return DerivedThreshold{}, err
	}
	return DerivedThreshold{Mode: ThresholdModeSampleSizeFirst, Threshold: lower}, nil
}

// ConfidenceFirstSampleSize computes the minimum n needed to detect a
// minimum-detectable-effect delta below baseline rate p0 at confidence c
// with power beta, via the one-sided binomial power formula (spec.md §4.3):
//
//	n = ceil((z_alpha*sqrt(p0*(1-p0)) + z_beta*sqrt((p0-delta)*(1-p0+delta)))^2 / delta^2)
func ConfidenceFirstSampleSize(p0, delta, confidence, power float64) (DerivedThreshold, error) {
	if p0 <= 0 || p0 >= 1 {
		return DerivedThreshold{}, errDomain("baseline rate must be in (0, 1)")
	}
	if delta <= 0 || delta >= p0 {
		return DerivedThreshold{}, errDomain("minimum detectable effect must be in (0, p0)")
	}
	if confidence <= 0 || confidence >= 1 {
		return DerivedThreshold{}, errDomain("confidence must be in (0, 1)")
	}
	if power <= 0 || power >= 1 {
		return DerivedThreshold{}, errDomain("power must be in (0, 1)")
	}

	zAlpha := zFromConfidence(confidence)
	zBeta := zFromConfidence(power)
	p1 := p0 - delta

	num := zAlpha*math.Sqrt(p0*(1-p0)) + zBeta*math.Sqrt(p1*(1-p1))
	n := math.Ceil((num * num) / (delta * delta))

	return DerivedThreshold{
		Mode:            ThresholdModeConfidenceFirst,
		Threshold:       p1,
		RequiredSamples: int(n),
	}, nil
}

// ThresholdFirst takes an explicit threshold and the configured sample
// parameters and computes the implied confidence — the confidence level at
// which that exact threshold would be the Wilson lower bound for the
// observed rate — flagging it unsound below 0.80.
func ThresholdFirst(explicitThreshold float64, observedSuccesses, observedN int) (DerivedThreshold, error) {
	if explicitThreshold <= 0 || explicitThreshold >= 1 {
		return DerivedThreshold{}, errDomain("explicit threshold must be in (0, 1)")
	}
	if observedN <= 0 {
		return DerivedThreshold{}, errDomain("observed samples must be > 0")
	}
	confidence := impliedConfidence(observedSuccesses, observedN, explicitThreshold)
	return DerivedThreshold{
		Mode:                  ThresholdModeThresholdFirst,
		Threshold:             explicitThreshold,
		ImpliedConfidence:      confidence,
		StatisticallyUnsound:  confidence < 0.80,
	}, nil
}

// impliedConfidence binary-searches the confidence level c for which
// wilsonLower(k, n, zFromConfidence(c)) == threshold, since the Wilson bound
// is monotonically decreasing in z (and hence in c).
func impliedConfidence(k, n int, threshold float64) float64 {
	lo, hi := 1e-6, 1-1e-6
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		z := zFromConfidence(mid)
		bound := wilsonLower(float64(k), float64(n), z)
		if bound > threshold {
			// higher confidence -> larger z -> lower bound; to lower the
			// bound toward the threshold, search higher confidences.
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
