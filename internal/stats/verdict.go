package stats

import "fmt"

// Verdict is the statistics engine's pass/fail plus explanation, before the
// publisher layers on intent-awareness (spec.md §4.3, §4.7).
type Verdict struct {
	Pass               bool
	ObservedRate        float64
	Threshold           float64
	FalsePositiveProbability float64
	Explanation         string
}

// BuildVerdict compares an observed rate against a derived threshold and
// renders a human-readable interpretation including the false-positive
// probability 1 - c.
func BuildVerdict(observedSuccesses, observedN int, threshold, confidence float64) Verdict {
	rate := 0.0
	if observedN > 0 {
		rate = float64(observedSuccesses) / float64(observedN)
	}
	pass := rate >= threshold
	fpr := 1 - confidence

	explanation := fmt.Sprintf(
		"observed %d/%d (%.4f) vs threshold %.4f at %.1f%% confidence (false-positive probability %.4f): %s",
		observedSuccesses, observedN, rate, threshold, confidence*100, fpr,
		passFailWord(pass),
	)

	return Verdict{
		Pass:                     pass,
		ObservedRate:             rate,
		Threshold:                threshold,
		FalsePositiveProbability: fpr,
		Explanation:              explanation,
	}
}

func passFailWord(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}
