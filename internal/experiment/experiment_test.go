package experiment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sawpanic/probatest/internal/domain"
	"github.com/sawpanic/probatest/internal/domain/budget"
	"github.com/sawpanic/probatest/internal/domain/covariate"
	"github.com/sawpanic/probatest/internal/scheduler"
)

func unboundedStack() *budget.Stack {
	return budget.NewStack(nil, nil, budget.NewMonitor(budget.ScopeMethod, 0, 0))
}

func alwaysSucceeds(ctx context.Context, i int) (domain.Outcome, error) {
	return domain.Outcome{Status: domain.StatusSuccess, ExecutionTime: time.Millisecond}, nil
}

func TestFactorSuit_WithDoesNotMutateParent(t *testing.T) {
	base := NewFactorSuit(map[string]any{"model": "a", "temperature": 0.1})
	derived := base.With("model", "b")

	if v, _ := base.Get("model"); v != "a" {
		t.Fatalf("expected parent suit unaffected, got %v", v)
	}
	if v, _ := derived.Get("model"); v != "b" {
		t.Fatalf("expected derived suit to see override, got %v", v)
	}
	if v, _ := derived.Get("temperature"); v != 0.1 {
		t.Fatalf("expected derived suit to inherit non-overridden key, got %v", v)
	}
}

func TestFactorSuit_MaterializeFlattensChain(t *testing.T) {
	base := NewFactorSuit(map[string]any{"a": 1, "b": 2})
	derived := base.With("b", 3).With("c", 4)

	flat := derived.Materialize()
	if flat["a"] != 1 || flat["b"] != 3 || flat["c"] != 4 {
		t.Fatalf("unexpected materialized suit: %v", flat)
	}
}

func TestMeasure_BuildsSealedBaseline(t *testing.T) {
	cfg := domain.DefaultResolvedConfiguration()
	cfg.PlannedSamples = 10

	in := MeasureInput{
		UseCaseID:        "checkout-flow",
		ExperimentMethod: "measureLatency",
		FactorKeys:       []string{"model"},
		Declarations:     covariate.Declarations{{Key: "model", Category: covariate.CategoryConfiguration}},
		Profile:          covariate.Profile{"model": covariate.String("a")},
		Config:           cfg,
	}

	b, agg, err := Measure(context.Background(), in, unboundedStack(), scheduler.New(), alwaysSucceeds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.Executed != 10 || agg.Successes != 10 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
	if b.ContentFingerprint == "" {
		t.Fatal("expected baseline to be sealed with a fingerprint")
	}
	if b.Statistics.Observed != 1.0 {
		t.Fatalf("expected observed rate 1.0, got %v", b.Statistics.Observed)
	}
}

func TestExplore_RendersOneSamplePerBlockWithStableAnchors(t *testing.T) {
	cfg := domain.DefaultResolvedConfiguration()
	cfg.PlannedSamples = 3

	suit := NewFactorSuit(map[string]any{"model": "a"})
	ec := ExploreConfig{
		UseCaseID:        "checkout-flow",
		ExperimentMethod: "measureLatency",
		SuitName:         "model=a",
		Suit:             suit,
		Config:           cfg,
		ObserveInput: func(i int, o domain.Outcome) map[string]any {
			return map[string]any{"index": i}
		},
	}

	result, err := Explore(context.Background(), ec, unboundedStack(), scheduler.New(), alwaysSucceeds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(result.Samples))
	}

	yamlBytes, err := RenderYAML("checkout-flow", suit, result)
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}

	// Render twice with the same sample count: anchors at each index must
	// be bit-identical (spec.md §8 "EXPLORE determinism").
	result2, _ := Explore(context.Background(), ec, unboundedStack(), scheduler.New(), alwaysSucceeds)
	yamlBytes2, _ := RenderYAML("checkout-flow", suit, result2)

	anchors1 := extractAnchors(string(yamlBytes))
	anchors2 := extractAnchors(string(yamlBytes2))
	if len(anchors1) != 3 || len(anchors2) != 3 {
		t.Fatalf("expected 3 anchors per render, got %d and %d", len(anchors1), len(anchors2))
	}
	for i := range anchors1 {
		if anchors1[i] != anchors2[i] {
			t.Fatalf("anchor mismatch at sample %d: %s vs %s", i, anchors1[i], anchors2[i])
		}
	}
}

func extractAnchors(doc string) []string {
	var anchors []string
	for _, line := range splitLines(doc) {
		var idx int
		var anchor string
		if n, _ := fmt.Sscanf(line, "  # ──── sample[%d] ──── anchor:%s", &idx, &anchor); n == 2 {
			anchors = append(anchors, anchor[:8])
		}
	}
	return anchors
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return lines
}

func TestOptimize_StopsAtMaxIterationsAndTracksBest(t *testing.T) {
	fixed := NewFactorSuit(map[string]any{"region": "us-east"})
	cfg := domain.DefaultResolvedConfiguration()
	cfg.PlannedSamples = 1

	history, err := Optimize(context.Background(), OptimizeConfig{
		UseCaseID:        "checkout-flow",
		ExperimentMethod: "optimizeTimeout",
		TreatmentKey:     "timeoutMs",
		FixedFactors:     fixed,
		InitialTreatment: 100,
		IterationConfig:  cfg,
		Objective:        ObjectiveMaximize,
		Scorer: func(agg *domain.SampleAggregate) (float64, error) {
			return agg.ObservedRate(), nil
		},
		Mutator: func(current any, history []IterationAggregate) (any, error) {
			return current.(int) + 10, nil
		},
		Termination: func(history []IterationAggregate, elapsed time.Duration) (bool, string) {
			if len(history) >= 3 {
				return true, "max_iterations"
			}
			return false, ""
		},
		Invoke: func(suit *FactorSuit) scheduler.InvokeFunc {
			return alwaysSucceeds
		},
	}, unboundedStack(), scheduler.New())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history.Iterations) != 3 {
		t.Fatalf("expected 3 iterations, got %d", len(history.Iterations))
	}
	if history.Termination != "max_iterations" {
		t.Fatalf("expected max_iterations termination, got %s", history.Termination)
	}
	if history.BestIteration != 0 {
		t.Fatalf("expected first iteration to be best (tie -> first wins), got %d", history.BestIteration)
	}
}

func TestOptimize_TerminatesOnScoringFailure(t *testing.T) {
	fixed := NewFactorSuit(map[string]any{})
	cfg := domain.DefaultResolvedConfiguration()
	cfg.PlannedSamples = 1

	history, err := Optimize(context.Background(), OptimizeConfig{
		UseCaseID:        "checkout-flow",
		ExperimentMethod: "optimizeTimeout",
		TreatmentKey:     "timeoutMs",
		FixedFactors:     fixed,
		InitialTreatment: 100,
		IterationConfig:  cfg,
		Objective:        ObjectiveMaximize,
		Scorer: func(agg *domain.SampleAggregate) (float64, error) {
			return 0, fmt.Errorf("boom")
		},
		Mutator: func(current any, history []IterationAggregate) (any, error) {
			return current, nil
		},
		Termination: func(history []IterationAggregate, elapsed time.Duration) (bool, string) {
			return false, ""
		},
		Invoke: func(suit *FactorSuit) scheduler.InvokeFunc {
			return alwaysSucceeds
		},
	}, unboundedStack(), scheduler.New())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if history.Termination != string(IterationScoringFailed) {
		t.Fatalf("expected scoring_failed termination, got %s", history.Termination)
	}
	if history.Iterations[0].Status != IterationScoringFailed {
		t.Fatalf("expected iteration status scoring_failed, got %s", history.Iterations[0].Status)
	}
}
