package domain

import "time"

// ExampleFailure is a bounded, order-preserving record of a sample that did
// not succeed, kept for display in the verdict.
type ExampleFailure struct {
	SampleIndex int
	Status      Status
	Reason      string
}

// TerminationReason names why the scheduler stopped sampling before
// exhausting planned samples. Empty means the loop ran to completion.
type TerminationReason string

const (
	TerminationNone                 TerminationReason = ""
	TerminationImpossible           TerminationReason = "impossible"
	TerminationGuaranteed           TerminationReason = "guaranteed"
	TerminationSuiteTimeExhausted   TerminationReason = "suite_time_exhausted"
	TerminationSuiteTokenExhausted  TerminationReason = "suite_token_exhausted"
	TerminationClassTimeExhausted   TerminationReason = "class_time_exhausted"
	TerminationClassTokenExhausted  TerminationReason = "class_token_exhausted"
	TerminationMethodTimeExhausted  TerminationReason = "method_time_exhausted"
	TerminationMethodTokenExhausted TerminationReason = "method_token_exhausted"
	TerminationAbortedException     TerminationReason = "aborted_exception"
)

// SampleAggregate is the running tally for a test. It is mutable only by the
// scheduler; everything downstream (publisher, experiment orchestrator)
// treats it as read-only.
type SampleAggregate struct {
	Planned           int
	Executed          int
	Successes         int
	Failures          int
	UnexpectedErrors  int
	ExampleFailures   []ExampleFailure
	MaxExampleFailures int
	TokensTotal       int64
	TotalElapsed      time.Duration
	Termination       TerminationReason
}

// NewSampleAggregate constructs an empty aggregate for a planned sample count.
func NewSampleAggregate(planned, maxExampleFailures int) *SampleAggregate {
	return &SampleAggregate{
		Planned:            planned,
		MaxExampleFailures: maxExampleFailures,
	}
}

// RecordSuccess folds a successful sample into the aggregate.
func (a *SampleAggregate) RecordSuccess(o Outcome) {
	a.Executed++
	a.Successes++
	a.TokensTotal += o.TokensConsumed
	a.TotalElapsed += o.ExecutionTime
}

// RecordFailure folds an assertion failure into the aggregate, appending to
// ExampleFailures while under the cap.
func (a *SampleAggregate) RecordFailure(o Outcome) {
	a.Executed++
	a.Failures++
	a.TokensTotal += o.TokensConsumed
	a.TotalElapsed += o.ExecutionTime
	a.appendExample(o)
}

// RecordUnexpectedException folds a raw exception into the aggregate under
// the fail_sample policy: it is tallied separately from assertion failures
// per the data-model invariant (spec.md §3), but still counts against the
// pass rate via FailureEquivalent. abort_test policy never calls this — it
// terminates the loop instead, see internal/scheduler.
func (a *SampleAggregate) RecordUnexpectedException(o Outcome) {
	a.Executed++
	a.UnexpectedErrors++
	a.TokensTotal += o.TokensConsumed
	a.TotalElapsed += o.ExecutionTime
	a.appendExample(o)
}

// FailureEquivalent is the count used for pass-rate and early-termination
// arithmetic: assertion failures plus unexpected exceptions recorded under
// the fail_sample policy.
func (a *SampleAggregate) FailureEquivalent() int {
	return a.Failures + a.UnexpectedErrors
}

func (a *SampleAggregate) appendExample(o Outcome) {
	if len(a.ExampleFailures) >= a.MaxExampleFailures {
		return
	}
	a.ExampleFailures = append(a.ExampleFailures, ExampleFailure{
		SampleIndex: a.Executed - 1,
		Status:      o.Status,
		Reason:      FirstLine(o.FailureReason),
	})
}

// ObservedRate returns successes/executed, or 0 when nothing executed.
func (a *SampleAggregate) ObservedRate() float64 {
	if a.Executed == 0 {
		return 0
	}
	return float64(a.Successes) / float64(a.Executed)
}

// Invariant checks the two structural invariants from spec.md §3; used by
// tests and as a defensive check inside the scheduler.
func (a *SampleAggregate) Invariant() bool {
	sumsOK := a.Executed == a.Successes+a.Failures+a.UnexpectedErrors
	boundsOK := a.Executed <= a.Planned
	return sumsOK && boundsOK
}
