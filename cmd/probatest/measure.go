package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/probatest/internal/baseline"
	"github.com/sawpanic/probatest/internal/config"
	"github.com/sawpanic/probatest/internal/domain/budget"
	"github.com/sawpanic/probatest/internal/domain/covariate"
	"github.com/sawpanic/probatest/internal/experiment"
	"github.com/sawpanic/probatest/internal/scheduler"
)

func newMeasureCmd() *cobra.Command {
	var (
		useCaseID   string
		method      string
		samples     int
		baselineDir string
	)

	cmd := &cobra.Command{
		Use:   "measure -- <probe command> [args...]",
		Short: "Run N samples against a probe command and emit a baseline",
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

			store, err := baseline.NewFileStore(baselineDir)
			if err != nil {
				return fmt.Errorf("open baseline store: %w", err)
			}

			in := experiment.MeasureInput{
				UseCaseID:        useCaseID,
				ExperimentMethod: method,
				FactorKeys:       nil,
				Declarations:     covariate.Declarations{},
				Profile:          covariate.Profile{},
				Config:           cfg,
			}

			stack := budget.NewStack(nil, nil, budget.NewMonitor(budget.ScopeMethod, 0, 0))
			sched := scheduler.New()
			invoke := shellProbeInvoker(args[0], args[1:])

			b, agg, err := experiment.Measure(context.Background(), in, stack, sched, invoke)
			if err != nil {
				return fmt.Errorf("measure: %w", err)
			}

			filename, err := store.Put(context.Background(), b)
			if err != nil {
				return fmt.Errorf("persist baseline: %w", err)
			}

			log.Info().
				Str("filename", filename).
				Int("executed", agg.Executed).
				Int("successes", agg.Successes).
				Float64("observed_rate", agg.ObservedRate()).
				Msg("measure complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&useCaseID, "use-case-id", "", "use case identifier")
	cmd.Flags().StringVar(&method, "method", "", "experiment method name")
	cmd.Flags().IntVar(&samples, "samples", 0, "sample count override (0 = use resolved default)")
	cmd.Flags().StringVar(&baselineDir, "baseline-dir", "./baselines", "directory to persist the baseline YAML into")
	cmd.MarkFlagRequired("use-case-id")
	cmd.MarkFlagRequired("method")

	return cmd
}
