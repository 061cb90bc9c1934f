package experiment

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/probatest/internal/domain"
	"github.com/sawpanic/probatest/internal/domain/budget"
	"github.com/sawpanic/probatest/internal/publisher"
	"github.com/sawpanic/probatest/internal/scheduler"
)

// ExploreSample is one sample's recorded projection within an EXPLORE
// artefact (spec.md §4.6).
type ExploreSample struct {
	Input           map[string]any `yaml:"input"`
	Postconditions  map[string]any `yaml:"postconditions,omitempty"`
	ExecutionTimeMs int64          `yaml:"executionTimeMs"`
	Content         string         `yaml:"content,omitempty"`
	FailureDetail   string         `yaml:"failureDetail,omitempty"`
}

// ExploreConfig runs N samples under one named factor suit.
type ExploreConfig struct {
	UseCaseID        string
	ExperimentMethod string
	SuitName         string
	Suit             *FactorSuit
	Config           domain.ResolvedConfiguration
	// Input and Postconditions populate each sample's recorded projection;
	// the caller derives them from the outcome it already has.
	ObserveInput          func(sampleIndex int, o domain.Outcome) map[string]any
	ObservePostconditions func(sampleIndex int, o domain.Outcome) map[string]any
	ObserveContent        func(sampleIndex int, o domain.Outcome) string
}

// ExploreSuitResult is one factor suit's diff-friendly artefact.
type ExploreSuitResult struct {
	SuitName  string
	Aggregate *domain.SampleAggregate
	Samples   []ExploreSample
}

// Explore runs samples for a single factor suit and collects its recorded
// projections. RenderYAML below turns the result into the diff-friendly
// document described in spec.md §4.6.
func Explore(ctx context.Context, cfg ExploreConfig, stack *budget.Stack, sched *scheduler.Scheduler, invoke scheduler.InvokeFunc) (*ExploreSuitResult, error) {
	samples := make([]ExploreSample, 0, cfg.Config.PlannedSamples)

	wrapped := func(ctx context.Context, i int) (domain.Outcome, error) {
		o, err := invoke(ctx, i)

		rec := ExploreSample{ExecutionTimeMs: o.ExecutionTime.Milliseconds()}
		if cfg.ObserveInput != nil {
			rec.Input = cfg.ObserveInput(i, o)
		}
		if cfg.ObservePostconditions != nil {
			rec.Postconditions = cfg.ObservePostconditions(i, o)
		}
		if cfg.ObserveContent != nil {
			rec.Content = cfg.ObserveContent(i, o)
		}
		if !o.Success() {
			rec.FailureDetail = domain.FirstLine(o.FailureReason)
		}
		samples = append(samples, rec)
		return o, err
	}

	agg, err := sched.Run(ctx, cfg.Config, stack, wrapped)
	if err != nil {
		return nil, fmt.Errorf("explore run for suit %s: %w", cfg.SuitName, err)
	}

	return &ExploreSuitResult{SuitName: cfg.SuitName, Aggregate: agg, Samples: samples}, nil
}

// RenderYAML produces the fixed-structure header plus a resultProjection
// section with one anchor-prefixed block per sample. The anchor sequence is
// re-derived from the fixed seed every call, so two runs with the same
// sample count produce bit-identical anchors at identical indices
// (spec.md §8 "EXPLORE determinism").
func RenderYAML(useCaseID string, suit *FactorSuit, r *ExploreSuitResult) ([]byte, error) {
	var buf bytes.Buffer

	header := struct {
		SchemaVersion string         `yaml:"schemaVersion"`
		UseCaseID     string         `yaml:"useCaseId"`
		FactorSuit    map[string]any `yaml:"factorSuit"`
		GeneratedAt   string         `yaml:"generatedAt"`
	}{
		SchemaVersion: "v1",
		UseCaseID:     useCaseID,
		FactorSuit:    suit.Materialize(),
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	headerBytes, err := yaml.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("marshal explore header: %w", err)
	}
	buf.Write(headerBytes)
	buf.WriteString("resultProjection:\n")

	anchors := publisher.AnchorSequence(len(r.Samples))
	for i, sample := range r.Samples {
		fmt.Fprintf(&buf, "  # ──── sample[%d] ──── anchor:%s ────\n", i, anchors[i])
		sampleBytes, err := yaml.Marshal(sample)
		if err != nil {
			return nil, fmt.Errorf("marshal explore sample %d: %w", i, err)
		}
		for j, line := range bytes.Split(bytes.TrimRight(sampleBytes, "\n"), []byte("\n")) {
			if j == 0 {
				buf.WriteString("  - ")
			} else {
				buf.WriteString("    ")
			}
			buf.Write(line)
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}
