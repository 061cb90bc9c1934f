package config

import (
	"fmt"

	"github.com/sawpanic/probatest/internal/domain"
)

// Validate rejects resolved configurations that cannot be executed
// meaningfully, per spec.md §6. These are configuration errors, not test
// failures — they surface before a single sample is scheduled.
func Validate(cfg domain.ResolvedConfiguration) error {
	if cfg.PlannedSamples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", cfg.PlannedSamples)
	}
	if cfg.MinPassRate == 0 || cfg.MinPassRate == 1 {
		return fmt.Errorf("minPassRate of exactly %v admits no meaningful statistical test (use a value strictly between 0 and 1)", cfg.MinPassRate)
	}
	if cfg.MinPassRate < 0 || cfg.MinPassRate > 1 {
		return fmt.Errorf("minPassRate must be within [0,1], got %v", cfg.MinPassRate)
	}
	if cfg.ThresholdConfidence <= 0 || cfg.ThresholdConfidence >= 1 {
		return fmt.Errorf("thresholdConfidence must be within (0,1), got %v", cfg.ThresholdConfidence)
	}
	if cfg.MaxExampleFailures < 0 {
		return fmt.Errorf("maxExampleFailures must be non-negative, got %d", cfg.MaxExampleFailures)
	}
	if cfg.PacingDelayMs < 0 {
		return fmt.Errorf("pacingDelayMs must be non-negative, got %d", cfg.PacingDelayMs)
	}
	switch cfg.Intent {
	case domain.IntentVerification, domain.IntentSmoke:
	default:
		return fmt.Errorf("unknown intent %q", cfg.Intent)
	}
	switch cfg.ExceptionPolicy {
	case domain.ExceptionPolicyFailSample, domain.ExceptionPolicyAbortTest:
	default:
		return fmt.Errorf("unknown exceptionPolicy %q", cfg.ExceptionPolicy)
	}
	switch cfg.BudgetExhaustedBehavior {
	case domain.BudgetBehaviorEvaluatePartial, domain.BudgetBehaviorFailImmediately:
	default:
		return fmt.Errorf("unknown budgetExhaustedBehavior %q", cfg.BudgetExhaustedBehavior)
	}
	return nil
}
