package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sawpanic/probatest/internal/config"
	"github.com/sawpanic/probatest/internal/domain"
	"github.com/sawpanic/probatest/internal/domain/budget"
	"github.com/sawpanic/probatest/internal/experiment"
	"github.com/sawpanic/probatest/internal/scheduler"
)

func newOptimizeCmd() *cobra.Command {
	var (
		useCaseID     string
		method        string
		treatmentKey  string
		initialValue  float64
		step          float64
		maxIterations int
		samples       int
		outFile       string
	)

	cmd := &cobra.Command{
		Use:   "optimize -- <probe command> [args...]",
		Short: "Iteratively mutate one numeric treatment factor and track the best iteration",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := &config.Resolver{Prefix: "probatest"}
			declared := config.Declared{}
			if samples > 0 {
				declared.Samples = &samples
			}
			cfg, err := r.Resolve(declared)
			if err != nil {
				return fmt.Errorf("resolve configuration: %w", err)
			}

			stack := budget.NewStack(nil, nil, budget.NewMonitor(budget.ScopeMethod, 0, 0))
			sched := scheduler.New()
			fixed := experiment.NewFactorSuit(map[string]any{})

			history, err := experiment.Optimize(context.Background(), experiment.OptimizeConfig{
				UseCaseID:        useCaseID,
				ExperimentMethod: method,
				TreatmentKey:     treatmentKey,
				FixedFactors:     fixed,
				InitialTreatment: initialValue,
				IterationConfig:  cfg,
				Objective:        experiment.ObjectiveMaximize,
				Scorer: func(agg *domain.SampleAggregate) (float64, error) {
					return agg.ObservedRate(), nil
				},
				Mutator: func(current any, hist []experiment.IterationAggregate) (any, error) {
					return current.(float64) + step, nil
				},
				Termination: func(hist []experiment.IterationAggregate, elapsed time.Duration) (bool, string) {
					if len(hist) >= maxIterations {
						return true, "max_iterations"
					}
					return false, ""
				},
				Invoke: func(suit *experiment.FactorSuit) scheduler.InvokeFunc {
					return shellProbeInvoker(args[0], args[1:])
				},
			}, stack, sched)
			if err != nil {
				return fmt.Errorf("optimize: %w", err)
			}

			doc, err := yaml.Marshal(history)
			if err != nil {
				return fmt.Errorf("marshal optimization history: %w", err)
			}
			if err := os.WriteFile(outFile, doc, 0o644); err != nil {
				return fmt.Errorf("write optimization history: %w", err)
			}

			log.Info().
				Int("iterations", len(history.Iterations)).
				Int("best_iteration", history.BestIteration).
				Str("termination", history.Termination).
				Msg("optimize complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&useCaseID, "use-case-id", "", "use case identifier")
	cmd.Flags().StringVar(&method, "method", "", "experiment method name")
	cmd.Flags().StringVar(&treatmentKey, "treatment-key", "", "name of the factor being mutated across iterations")
	cmd.Flags().Float64Var(&initialValue, "initial-value", 0, "initial treatment value")
	cmd.Flags().Float64Var(&step, "step", 1, "amount added to the treatment value each iteration")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 10, "stop after this many iterations")
	cmd.Flags().IntVar(&samples, "samples-per-iteration", 0, "sample count per iteration (0 = use resolved default)")
	cmd.Flags().StringVar(&outFile, "out", "optimize-history.yaml", "path to write the optimization history YAML")
	cmd.MarkFlagRequired("use-case-id")
	cmd.MarkFlagRequired("method")
	cmd.MarkFlagRequired("treatment-key")

	return cmd
}
