package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sawpanic/probatest/internal/config"
	"github.com/sawpanic/probatest/internal/domain"
	"github.com/sawpanic/probatest/internal/domain/budget"
	"github.com/sawpanic/probatest/internal/experiment"
	"github.com/sawpanic/probatest/internal/scheduler"
)

func newExploreCmd() *cobra.Command {
	var (
		useCaseID string
		method    string
		samples   int
		suitSpecs []string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "explore -- <probe command> [args...]",
		Short: "Run N samples per factor suit and emit diff-friendly YAML artefacts",
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

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			stack := budget.NewStack(nil, nil, budget.NewMonitor(budget.ScopeMethod, 0, 0))
			sched := scheduler.New()

			for _, spec := range suitSpecs {
				name, values, err := parseSuitSpec(spec)
				if err != nil {
					return err
				}
				suit := experiment.NewFactorSuit(values)

				ec := experiment.ExploreConfig{
					UseCaseID:        useCaseID,
					ExperimentMethod: method,
					SuitName:         name,
					Suit:             suit,
					Config:           cfg,
					ObserveInput: func(i int, o domain.Outcome) map[string]any {
						return map[string]any{"sampleIndex": i}
					},
				}

				result, err := experiment.Explore(context.Background(), ec, stack, sched, shellProbeInvoker(args[0], args[1:]))
				if err != nil {
					return fmt.Errorf("explore suit %s: %w", name, err)
				}

				doc, err := experiment.RenderYAML(useCaseID, suit, result)
				if err != nil {
					return fmt.Errorf("render suit %s: %w", name, err)
				}

				outPath := fmt.Sprintf("%s/%s.%s.%s.yaml", outDir, useCaseID, method, name)
				if err := os.WriteFile(outPath, doc, 0o644); err != nil {
					return fmt.Errorf("write suit %s artefact: %w", name, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&useCaseID, "use-case-id", "", "use case identifier")
	cmd.Flags().StringVar(&method, "method", "", "experiment method name")
	cmd.Flags().IntVar(&samples, "samples", 0, "sample count override (0 = use resolved default)")
	cmd.Flags().StringArrayVar(&suitSpecs, "suit", nil, "factor suit as name=key1:val1,key2:val2 (repeatable)")
	cmd.Flags().StringVar(&outDir, "out-dir", "./explore-output", "directory to write per-suit YAML artefacts into")
	cmd.MarkFlagRequired("use-case-id")
	cmd.MarkFlagRequired("method")
	cmd.MarkFlagRequired("suit")

	return cmd
}

// parseSuitSpec parses "name=key1:val1,key2:val2" into a suit name and
// string-valued factor map.
func parseSuitSpec(spec string) (string, map[string]any, error) {
	nameAndRest := strings.SplitN(spec, "=", 2)
	if len(nameAndRest) != 2 {
		return "", nil, fmt.Errorf("invalid suit spec %q: expected name=key:val,...", spec)
	}
	name := nameAndRest[0]
	values := make(map[string]any)
	if nameAndRest[1] != "" {
		for _, pair := range strings.Split(nameAndRest[1], ",") {
			kv := strings.SplitN(pair, ":", 2)
			if len(kv) != 2 {
				return "", nil, fmt.Errorf("invalid factor pair %q in suit spec %q", pair, spec)
			}
			values[kv[0]] = kv[1]
		}
	}
	return name, values, nil
}
