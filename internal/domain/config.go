package domain

// Intent distinguishes evidential (verification) tests from sentinel
// (smoke) tests, per spec.md §3/§4.7.
type Intent string

const (
	IntentVerification Intent = "verification"
	IntentSmoke        Intent = "smoke"
)

// ExceptionPolicy controls how an unexpected exception during a sample is
// handled.
type ExceptionPolicy string

const (
	ExceptionPolicyFailSample  ExceptionPolicy = "fail_sample"
	ExceptionPolicyAbortTest   ExceptionPolicy = "abort_test"
)

// BudgetExhaustedBehavior controls what the scheduler does when a budget
// monitor reports exhaustion.
type BudgetExhaustedBehavior string

const (
	BudgetBehaviorEvaluatePartial BudgetExhaustedBehavior = "evaluate_partial"
	BudgetBehaviorFailImmediately BudgetExhaustedBehavior = "fail_immediately"
)

// ThresholdOrigin records where a pass-rate threshold came from, used by the
// publisher to decide what caveats/hints apply under smoke intent.
type ThresholdOrigin string

const (
	ThresholdOriginSLA        ThresholdOrigin = "sla"
	ThresholdOriginSLO        ThresholdOrigin = "slo"
	ThresholdOriginPolicy     ThresholdOrigin = "policy"
	ThresholdOriginEmpirical  ThresholdOrigin = "empirical"
	ThresholdOriginExplicit   ThresholdOrigin = "explicit"
	ThresholdOriginUnspecified ThresholdOrigin = "unspecified"
)

// IsNormative reports whether a threshold origin carries compliance weight
// (SLA/SLO/policy), which changes the smoke-intent caveat wording.
func (t ThresholdOrigin) IsNormative() bool {
	switch t {
	case ThresholdOriginSLA, ThresholdOriginSLO, ThresholdOriginPolicy:
		return true
	default:
		return false
	}
}

// ResolvedConfiguration is the fully-resolved per-test configuration,
// produced by internal/config's precedence resolver.
type ResolvedConfiguration struct {
	PlannedSamples          int
	MinPassRate             float64
	ThresholdConfidence     float64 // defaults to 0.95
	Intent                  Intent
	ExceptionPolicy         ExceptionPolicy
	MaxExampleFailures      int
	BudgetExhaustedBehavior BudgetExhaustedBehavior
	PacingDelayMs           int64
	ThresholdOrigin         ThresholdOrigin
}

// DefaultResolvedConfiguration returns the documented defaults (spec.md §6)
// before any override is applied.
func DefaultResolvedConfiguration() ResolvedConfiguration {
	return ResolvedConfiguration{
		PlannedSamples:          20,
		MinPassRate:             0.9,
		ThresholdConfidence:     0.95,
		Intent:                  IntentVerification,
		ExceptionPolicy:         ExceptionPolicyFailSample,
		MaxExampleFailures:      5,
		BudgetExhaustedBehavior: BudgetBehaviorEvaluatePartial,
		PacingDelayMs:           0,
		ThresholdOrigin:         ThresholdOriginUnspecified,
	}
}
