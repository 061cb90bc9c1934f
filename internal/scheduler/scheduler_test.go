package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/probatest/internal/domain"
	"github.com/sawpanic/probatest/internal/domain/budget"
)

type fakePacer struct{ waits int }

func (f *fakePacer) Wait(ctx context.Context, delay time.Duration) error {
	f.waits++
	return nil
}

func baseConfig() domain.ResolvedConfiguration {
	cfg := domain.DefaultResolvedConfiguration()
	cfg.PlannedSamples = 10
	cfg.MinPassRate = 0.8
	return cfg
}

func noopStack() *budget.Stack {
	return budget.NewStack(nil, nil, nil)
}

func TestScheduler_AllSuccessesRunsToCompletion(t *testing.T) {
	sched := New()
	sched.Pacer = &fakePacer{}
	cfg := baseConfig()
	cfg.MinPassRate = 1.0 // "guaranteed" then needs all 10 successes, so it cannot cut the run short.

	agg, err := sched.Run(context.Background(), cfg, noopStack(), func(ctx context.Context, i int) (domain.Outcome, error) {
		return domain.Outcome{Status: domain.StatusSuccess, TokensConsumed: 1}, nil
	})
	require.NoError(t, err)
	assert.True(t, agg.Invariant())
	assert.Equal(t, 10, agg.Executed)
	assert.Equal(t, 10, agg.Successes)
}

func TestScheduler_PacingDelayObservedAfterFirstSample(t *testing.T) {
	pacer := &fakePacer{}
	sched := New()
	sched.Pacer = pacer
	cfg := baseConfig()
	cfg.PacingDelayMs = 5
	cfg.MinPassRate = 1.0 // keep "guaranteed" early termination from ending the run before sample 9.

	_, err := sched.Run(context.Background(), cfg, noopStack(), func(ctx context.Context, i int) (domain.Outcome, error) {
		return domain.Outcome{Status: domain.StatusSuccess}, nil
	})
	require.NoError(t, err)
	// pacing is skipped before sample 0, observed before every subsequent sample.
	assert.Equal(t, 9, pacer.waits)
}

func TestScheduler_ImpossibilityTerminatesEarly(t *testing.T) {
	sched := New()
	sched.Pacer = &fakePacer{}
	cfg := baseConfig()
	cfg.PlannedSamples = 10
	cfg.MinPassRate = 0.99 // a single failure makes 0.99 unreachable over 10 samples

	agg, err := sched.Run(context.Background(), cfg, noopStack(), func(ctx context.Context, i int) (domain.Outcome, error) {
		if i == 0 {
			return domain.Outcome{Status: domain.StatusAssertionFailure, FailureReason: "boom"}, nil
		}
		return domain.Outcome{Status: domain.StatusSuccess}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TerminationImpossible, agg.Termination)
	assert.Less(t, agg.Executed, agg.Planned)
}

func TestScheduler_GuaranteedTerminatesEarly(t *testing.T) {
	sched := New()
	sched.Pacer = &fakePacer{}
	cfg := baseConfig()
	cfg.PlannedSamples = 10
	cfg.MinPassRate = 0.2 // 2 successes guarantee the rate

	agg, err := sched.Run(context.Background(), cfg, noopStack(), func(ctx context.Context, i int) (domain.Outcome, error) {
		return domain.Outcome{Status: domain.StatusSuccess}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TerminationGuaranteed, agg.Termination)
	assert.Less(t, agg.Executed, agg.Planned)
}

func TestScheduler_AbortTestPolicyStopsOnException(t *testing.T) {
	sched := New()
	sched.Pacer = &fakePacer{}
	cfg := baseConfig()
	cfg.ExceptionPolicy = domain.ExceptionPolicyAbortTest

	agg, err := sched.Run(context.Background(), cfg, noopStack(), func(ctx context.Context, i int) (domain.Outcome, error) {
		if i == 2 {
			return domain.Outcome{}, fmt.Errorf("boom")
		}
		return domain.Outcome{Status: domain.StatusSuccess}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TerminationAbortedException, agg.Termination)
	assert.Equal(t, 2, agg.Executed)
}

func TestScheduler_FailSamplePolicyRecordsExceptionSeparately(t *testing.T) {
	sched := New()
	sched.Pacer = &fakePacer{}
	cfg := baseConfig()
	cfg.MinPassRate = 0.5
	cfg.PlannedSamples = 4

	agg, err := sched.Run(context.Background(), cfg, noopStack(), func(ctx context.Context, i int) (domain.Outcome, error) {
		if i == 0 {
			return domain.Outcome{}, fmt.Errorf("boom")
		}
		return domain.Outcome{Status: domain.StatusSuccess}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, agg.UnexpectedErrors)
	assert.Equal(t, 0, agg.Failures)
	assert.True(t, agg.Invariant())
}

func TestScheduler_ExampleFailuresCapped(t *testing.T) {
	sched := New()
	sched.Pacer = &fakePacer{}
	cfg := baseConfig()
	cfg.MinPassRate = 0.01
	cfg.MaxExampleFailures = 2
	cfg.PlannedSamples = 10

	agg, err := sched.Run(context.Background(), cfg, noopStack(), func(ctx context.Context, i int) (domain.Outcome, error) {
		return domain.Outcome{Status: domain.StatusAssertionFailure, FailureReason: fmt.Sprintf("fail-%d\nextra detail", i)}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(agg.ExampleFailures), 2)
	for _, ex := range agg.ExampleFailures {
		assert.NotContains(t, ex.Reason, "extra detail")
	}
}

func TestScheduler_BudgetExhaustionFailImmediately(t *testing.T) {
	sched := New()
	sched.Pacer = &fakePacer{}
	cfg := baseConfig()
	cfg.BudgetExhaustedBehavior = domain.BudgetBehaviorFailImmediately

	method := budget.NewMonitor(budget.ScopeMethod, 0, 1)
	stack := budget.NewStack(nil, nil, method)

	calls := 0
	agg, err := sched.Run(context.Background(), cfg, stack, func(ctx context.Context, i int) (domain.Outcome, error) {
		calls++
		return domain.Outcome{Status: domain.StatusSuccess, TokensConsumed: 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, string(agg.Termination), "exhausted")
}

func TestScheduler_PlannedOneIsLegal(t *testing.T) {
	sched := New()
	sched.Pacer = &fakePacer{}
	cfg := baseConfig()
	cfg.PlannedSamples = 1
	cfg.MinPassRate = 0.5

	agg, err := sched.Run(context.Background(), cfg, noopStack(), func(ctx context.Context, i int) (domain.Outcome, error) {
		return domain.Outcome{Status: domain.StatusSuccess}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Executed)
}
