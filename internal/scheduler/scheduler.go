// Package scheduler drives the strictly-sequential sample loop: N
// invocations against a host-supplied invoker, routed into a SampleAggregate,
// with pre/post-sample budget checks and early termination on
// impossibility/guarantee (spec.md §4.1).
package scheduler

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/probatest/internal/domain"
	"github.com/sawpanic/probatest/internal/domain/budget"
)

// InvokeFunc is the host-supplied invocation thunk. A non-nil error means an
// unexpected exception — the invoker itself blew up, as distinct from the
// system under test returning a deliberate assertion failure via
// Outcome.Status. The scheduler also recovers from a panicking InvokeFunc
// and treats it the same as a returned error, since Go callers crossing an
// interop boundary (e.g. a reflective method call) may panic instead of
// erroring (spec.md §9: "there is no panic propagation in the hot path" —
// that guarantee is enforced here, at the boundary, not assumed of callers).
type InvokeFunc func(ctx context.Context, sampleIndex int) (domain.Outcome, error)

// Pacer abstracts the inter-sample delay so tests can use a zero-wait fake;
// production code uses RealPacer, which sleeps via a time.Timer in the
// manner of golang.org/x/time/rate-limited callers.
type Pacer interface {
	Wait(ctx context.Context, delay time.Duration) error
}

// RealPacer sleeps for the configured delay, respecting context cancellation.
type RealPacer struct{}

func (RealPacer) Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Breaker is the optional process-wide circuit breaker seam (wired by
// internal/breaker) that can short-circuit an invocation before it runs.
type Breaker interface {
	// Allow reports whether an invocation should proceed. When it returns
	// false, the scheduler treats the sample as an unexpected exception
	// without calling InvokeFunc.
	Allow() bool
	// Record reports the outcome back to the breaker for its own counters.
	Record(success bool)
}

// Scheduler executes planned samples against an invoker.
type Scheduler struct {
	Pacer   Pacer
	Breaker Breaker // nil disables the circuit breaker seam
}

// New constructs a Scheduler with a real pacer and no breaker.
func New() *Scheduler {
	return &Scheduler{Pacer: RealPacer{}}
}

// Run executes the per-sample lifecycle from spec.md §4.1 in strict order.
func (s *Scheduler) Run(ctx context.Context, cfg domain.ResolvedConfiguration, stack *budget.Stack, invoke InvokeFunc) (*domain.SampleAggregate, error) {
	agg := domain.NewSampleAggregate(cfg.PlannedSamples, cfg.MaxExampleFailures)
	pacer := s.Pacer
	if pacer == nil {
		pacer = RealPacer{}
	}

	for i := 0; i < cfg.PlannedSamples; i++ {
		// 2. pacing delay, iff sample_index > 0.
		if i > 0 && cfg.PacingDelayMs > 0 {
			if err := pacer.Wait(ctx, time.Duration(cfg.PacingDelayMs)*time.Millisecond); err != nil {
				return agg, fmt.Errorf("pacing wait: %w", err)
			}
		}

		// 3. pre-sample budget check.
		if report, exhausted := stack.CheckExhaustion(); exhausted {
			agg.Termination = domain.TerminationReason(report.Reason())
			if cfg.BudgetExhaustedBehavior == domain.BudgetBehaviorFailImmediately {
				return agg, nil
			}
			break
		}

		outcome, invokeErr := s.invokeOne(ctx, i, invoke)

		// 5. classify.
		switch {
		case invokeErr != nil || outcome.Status == domain.StatusUnexpectedException:
			if cfg.ExceptionPolicy == domain.ExceptionPolicyAbortTest {
				agg.Termination = domain.TerminationAbortedException
				log.Warn().Int("sample", i).Err(invokeErr).Msg("aborting test on unexpected exception")
				return agg, nil
			}
			agg.RecordUnexpectedException(outcome)
			if s.Breaker != nil {
				s.Breaker.Record(false)
			}
		case outcome.Status == domain.StatusAssertionFailure:
			agg.RecordFailure(outcome)
			if s.Breaker != nil {
				s.Breaker.Record(false)
			}
		default:
			agg.RecordSuccess(outcome)
			if s.Breaker != nil {
				s.Breaker.Record(true)
			}
		}

		// 6. token propagation, single logical step across every active scope.
		stack.RecordTokens(outcome.TokensConsumed)

		// 7. early termination: impossibility / guarantee.
		maxAllowedFailures := float64(cfg.PlannedSamples) * (1 - cfg.MinPassRate)
		if float64(agg.FailureEquivalent()) > maxAllowedFailures {
			agg.Termination = domain.TerminationImpossible
			break
		}
		requiredSuccesses := int(math.Ceil(float64(cfg.PlannedSamples) * cfg.MinPassRate))
		if agg.Successes >= requiredSuccesses {
			agg.Termination = domain.TerminationGuaranteed
			break
		}

		// 8. post-sample budget re-check.
		if report, exhausted := stack.CheckExhaustion(); exhausted {
			agg.Termination = domain.TerminationReason(report.Reason())
			if cfg.BudgetExhaustedBehavior == domain.BudgetBehaviorFailImmediately {
				return agg, nil
			}
			break
		}
	}

	if !agg.Invariant() {
		return agg, fmt.Errorf("scheduler produced an inconsistent aggregate: executed=%d successes=%d failures=%d unexpected=%d planned=%d",
			agg.Executed, agg.Successes, agg.Failures, agg.UnexpectedErrors, agg.Planned)
	}
	return agg, nil
}

func (s *Scheduler) invokeOne(ctx context.Context, index int, invoke InvokeFunc) (outcome domain.Outcome, err error) {
	if s.Breaker != nil && !s.Breaker.Allow() {
		return domain.Outcome{Status: domain.StatusUnexpectedException, FailureReason: "circuit breaker open"}, fmt.Errorf("circuit breaker open")
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = domain.Outcome{Status: domain.StatusUnexpectedException, FailureReason: fmt.Sprintf("panic: %v", r)}
			err = fmt.Errorf("sample %d panicked: %v", index, r)
		}
	}()

	start := time.Now()
	outcome, err = invoke(ctx, index)
	if outcome.ExecutionTime == 0 {
		outcome.ExecutionTime = time.Since(start)
	}
	return outcome, err
}
