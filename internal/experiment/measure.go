package experiment

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/probatest/internal/baseline"
	"github.com/sawpanic/probatest/internal/domain"
	"github.com/sawpanic/probatest/internal/domain/budget"
	"github.com/sawpanic/probatest/internal/domain/covariate"
	"github.com/sawpanic/probatest/internal/scheduler"
	"github.com/sawpanic/probatest/internal/stats"
)

// MeasureInput describes one MEASURE run: a single factor suit held fixed
// for the run's entire duration (spec.md §4.6: "bound to a single
// covariate/factor suit for its entire run").
type MeasureInput struct {
	UseCaseID        string
	ExperimentMethod string
	FactorKeys       []string // declared order, used for the footprint hash
	Declarations     covariate.Declarations
	Profile          covariate.Profile
	Config           domain.ResolvedConfiguration
}

// Measure runs N samples under a single factor suit and emits a Baseline.
func Measure(ctx context.Context, in MeasureInput, stack *budget.Stack, sched *scheduler.Scheduler, invoke scheduler.InvokeFunc) (*baseline.Baseline, *domain.SampleAggregate, error) {
	var durations []time.Duration
	wrapped := func(ctx context.Context, i int) (domain.Outcome, error) {
		o, err := invoke(ctx, i)
		durations = append(durations, o.ExecutionTime)
		return o, err
	}

	agg, err := sched.Run(ctx, in.Config, stack, wrapped)
	if err != nil {
		return nil, agg, fmt.Errorf("measure run: %w", err)
	}

	latency := stats.ComputeLatencyStatistics(durations)
	observed := agg.ObservedRate()

	bound, boundErr := stats.WilsonLowerBound(agg.Successes, agg.Executed, in.Config.ThresholdConfidence)
	if boundErr != nil {
		bound = 0
	}
	ci := [2]float64{bound, 1.0}

	footprint := covariate.FootprintHash(in.FactorKeys, in.Declarations)
	covHashes := covariate.ValueHashes(in.Declarations, in.Profile)

	b := &baseline.Baseline{
		SchemaVersion:     "v1",
		UseCaseID:         in.UseCaseID,
		ExperimentMethod:  in.ExperimentMethod,
		GeneratedAt:       time.Now().UTC(),
		SamplesExecuted:   agg.Executed,
		TerminationReason: string(agg.Termination),
		Successes:         agg.Successes,
		Failures:          agg.FailureEquivalent(),
		Statistics: baseline.ObservedStatistics{
			Observed:             observed,
			StandardError:        standardError(observed, agg.Executed),
			ConfidenceInterval95: ci,
			Successes:            agg.Successes,
			Failures:             agg.FailureEquivalent(),
			Latency:              latency,
		},
		Cost: baseline.CostStatistics{
			TotalTimeMs:        agg.TotalElapsed.Milliseconds(),
			AvgTimePerSampleMs: avgMs(agg.TotalElapsed, agg.Executed),
			TotalTokens:        agg.TokensTotal,
			AvgTokensPerSample: avgTokens(agg.TokensTotal, agg.Executed),
		},
		CovariateProfile:     in.Profile,
		FootprintHash:        footprint,
		CovariateValueHashes: covHashes,
	}
	baseline.Seal(b)

	return b, agg, nil
}

func standardError(p float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Sqrt(p * (1 - p) / float64(n))
}

func avgMs(total time.Duration, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total.Milliseconds()) / float64(n)
}

func avgTokens(total int64, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}
