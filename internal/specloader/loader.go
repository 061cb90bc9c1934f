package specloader

import (
	"fmt"

	"github.com/sawpanic/probatest/internal/baseline"
	"github.com/sawpanic/probatest/internal/domain"
)

// CompiledSpec pairs an ExecutionSpecification with its parsed success
// criteria, so repeated per-sample evaluation doesn't re-lex/re-parse.
type CompiledSpec struct {
	Spec     baseline.ExecutionSpecification
	criteria Expr
}

// Load verifies the specification's fingerprint (spec.md §3: a promoted
// specification is tamper-evident, same as a Baseline) and compiles its
// success-criteria expression.
func Load(spec baseline.ExecutionSpecification) (*CompiledSpec, error) {
	ok, expected, actual := baseline.VerifySpecFingerprint(&spec)
	if !ok {
		return nil, fmt.Errorf("execution specification %s/%s failed fingerprint verification (expected %s, got %s)",
			spec.Baseline.UseCaseID, spec.Baseline.ExperimentMethod, expected, actual)
	}

	if spec.SuccessCriteria == "" {
		return &CompiledSpec{Spec: spec, criteria: nil}, nil
	}
	expr, err := Parse(spec.SuccessCriteria)
	if err != nil {
		return nil, fmt.Errorf("parse success criteria %q: %w", spec.SuccessCriteria, err)
	}
	return &CompiledSpec{Spec: spec, criteria: expr}, nil
}

// Evaluate applies the compiled success criteria to a single outcome's
// observation map. A specification with no declared criteria defers
// entirely to the outcome's own Status (additional-criteria is opt-in).
func (c *CompiledSpec) Evaluate(o domain.Outcome) bool {
	if !o.Success() {
		return false
	}
	if c.criteria == nil {
		return true
	}
	return c.criteria.eval(o.Observations)
}
