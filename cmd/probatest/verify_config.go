package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/probatest/internal/config"
	"github.com/sawpanic/probatest/internal/stats"
)

// newVerifyConfigCmd runs the resolver and feasibility gate without
// executing a single sample, surfacing an infeasible_verification
// configuration before CI spends wall-clock time on it
// (SPEC_FULL.md §13, spec.md §4.7's "hard-fail before any sample runs"
// made available standalone).
func newVerifyConfigCmd() *cobra.Command {
	var (
		samples    int
		minPassRate float64
		confidence float64
	)

	cmd := &cobra.Command{
		Use:   "verify-config",
		Short: "Resolve configuration and check feasibility without running any sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &config.Resolver{Prefix: "probatest"}
			declared := config.Declared{}
			if samples > 0 {
				declared.Samples = &samples
			}
			if minPassRate > 0 {
				declared.MinPassRate = &minPassRate
			}
			if confidence > 0 {
				declared.ThresholdConfidence = &confidence
			}

			cfg, err := r.Resolve(declared)
			if err != nil {
				return fmt.Errorf("configuration rejected: %w", err)
			}

			gate, err := stats.FeasibilityGate(cfg.PlannedSamples, cfg.MinPassRate, cfg.ThresholdConfidence)
			if err != nil {
				return fmt.Errorf("feasibility gate: %w", err)
			}
			if !gate.Feasible {
				return fmt.Errorf("infeasible_verification: n_min=%d exceeds configured samples=%d at target=%.4f confidence=%.4f (%s) — increase samples to at least %d or lower the confidence/target",
					gate.NMin, cfg.PlannedSamples, gate.Target, cfg.ThresholdConfidence, gate.Criterion, gate.NMin)
			}

			log.Info().
				Int("samples", cfg.PlannedSamples).
				Float64("min_pass_rate", cfg.MinPassRate).
				Float64("threshold_confidence", cfg.ThresholdConfidence).
				Int("n_min", gate.NMin).
				Msg("configuration is feasible")
			return nil
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 0, "sample count override (0 = use resolved default)")
	cmd.Flags().Float64Var(&minPassRate, "min-pass-rate", 0, "minimum pass rate override (0 = use resolved default)")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "threshold confidence override (0 = use resolved default)")

	return cmd
}
