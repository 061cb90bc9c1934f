package publisher

import "github.com/rs/zerolog/log"

// StructuredChannel emits a verdict as a structured zerolog event, for
// shipping to log aggregation rather than a human terminal.
type StructuredChannel struct{}

// Publish logs the verdict at info (pass) or warn (fail) level.
func (StructuredChannel) Publish(pv PublishedVerdict) {
	ev := log.Info()
	if !pv.Verdict.Pass {
		ev = log.Warn()
	}
	ev.
		Str("use_case", pv.UseCaseID).
		Str("method", pv.Method).
		Str("intent", string(pv.Intent)).
		Bool("passed", pv.Verdict.Pass).
		Float64("observed_rate", pv.Verdict.ObservedRate).
		Float64("threshold", pv.Verdict.Threshold).
		Float64("false_positive_probability", pv.Verdict.FalsePositiveProbability).
		Strs("caveats", pv.Caveats).
		Msg(pv.Verdict.Explanation)
}
