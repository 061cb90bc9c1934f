package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/sawpanic/probatest/internal/domain"
	"github.com/sawpanic/probatest/internal/domain/budget"
	"github.com/sawpanic/probatest/internal/scheduler"
)

// IterationStatus classifies how an OPTIMIZE iteration ended.
type IterationStatus string

const (
	IterationOK             IterationStatus = "ok"
	IterationScoringFailed  IterationStatus = "scoring_failed"
	IterationMutationFailed IterationStatus = "mutation_failed"
)

// IterationAggregate is one OPTIMIZE loop iteration's record (spec.md §3).
type IterationAggregate struct {
	IterationIndex int
	FactorSuit     map[string]any
	TreatmentValue any
	Statistics     *domain.SampleAggregate
	Score          float64
	Status         IterationStatus
	FailureReason  string
}

// Scorer is a pure function of the iteration's aggregate to an objective
// value. Single-method, function-shaped (spec.md §9): no reflective
// registration, callers wire it by construction.
type Scorer func(agg *domain.SampleAggregate) (float64, error)

// Mutator proposes the next treatment value given the current one and the
// history so far. It may only change the treatment factor.
type Mutator func(current any, history []IterationAggregate) (next any, err error)

// TerminationPolicy reports whether OPTIMIZE should stop, and why.
type TerminationPolicy func(history []IterationAggregate, elapsed time.Duration) (stop bool, reason string)

// Objective selects whether higher or lower scores are better.
type Objective int

const (
	ObjectiveMaximize Objective = iota
	ObjectiveMinimize
)

// OptimizationHistory is OPTIMIZE's full output, persisted as YAML.
type OptimizationHistory struct {
	UseCaseID      string
	TreatmentKey   string
	StartedAt      time.Time
	EndedAt        time.Time
	Termination    string
	BestIteration  int
	Iterations     []IterationAggregate
}

// OptimizeConfig drives one OPTIMIZE run.
type OptimizeConfig struct {
	UseCaseID            string
	ExperimentMethod     string
	TreatmentKey         string
	FixedFactors         *FactorSuit
	InitialTreatment     any
	IterationConfig      domain.ResolvedConfiguration
	Objective            Objective
	Scorer               Scorer
	Mutator              Mutator
	Termination          TerminationPolicy
	// Invoke builds the InvokeFunc for a given materialized factor suit —
	// OPTIMIZE rebuilds the suit every iteration, so the invoker needs the
	// current treatment value threaded through.
	Invoke func(suit *FactorSuit) scheduler.InvokeFunc
}

// Optimize runs the iterate-score-mutate loop from spec.md §4.6 until the
// termination policy signals, the mutator rejects its own proposal, or the
// scorer errors.
func Optimize(ctx context.Context, cfg OptimizeConfig, stack *budget.Stack, sched *scheduler.Scheduler) (*OptimizationHistory, error) {
	start := time.Now()
	history := &OptimizationHistory{
		UseCaseID:     cfg.UseCaseID,
		TreatmentKey:  cfg.TreatmentKey,
		StartedAt:     start,
		BestIteration: -1,
	}

	current := cfg.InitialTreatment
	bestScore := 0.0
	haveBest := false

	for iterIdx := 0; ; iterIdx++ {
		suit := cfg.FixedFactors.With(cfg.TreatmentKey, current)

		agg, err := sched.Run(ctx, cfg.IterationConfig, stack, cfg.Invoke(suit))
		if err != nil {
			return history, fmt.Errorf("optimize iteration %d: %w", iterIdx, err)
		}

		iter := IterationAggregate{
			IterationIndex: iterIdx,
			FactorSuit:     suit.Materialize(),
			TreatmentValue: current,
			Statistics:     agg,
		}

		score, scoreErr := cfg.Scorer(agg)
		if scoreErr != nil {
			iter.Status = IterationScoringFailed
			iter.FailureReason = scoreErr.Error()
			history.Iterations = append(history.Iterations, iter)
			history.Termination = string(IterationScoringFailed)
			history.EndedAt = time.Now()
			return history, nil
		}
		iter.Score = score
		iter.Status = IterationOK
		history.Iterations = append(history.Iterations, iter)

		if isBetter(score, bestScore, haveBest, cfg.Objective) {
			bestScore = score
			haveBest = true
			history.BestIteration = iterIdx
		}

		if stop, reason := cfg.Termination(history.Iterations, time.Since(start)); stop {
			history.Termination = reason
			history.EndedAt = time.Now()
			return history, nil
		}

		next, mutateErr := cfg.Mutator(current, history.Iterations)
		if mutateErr != nil {
			history.Termination = string(IterationMutationFailed)
			history.EndedAt = time.Now()
			return history, nil
		}
		current = next
	}
}

func isBetter(score, best float64, haveBest bool, obj Objective) bool {
	if !haveBest {
		return true
	}
	if obj == ObjectiveMinimize {
		return score < best
	}
	return score > best
}
