package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sawpanic/probatest/internal/baseline"
)

func newBaselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Inspect persisted baselines",
	}
	cmd.AddCommand(newBaselineInspectCmd())
	return cmd
}

// newBaselineInspectCmd recomputes a baseline's content fingerprint and
// compares it against the stored value, for manual tamper diagnosis
// (spec.md §4.4, §7 remediation guidance made operable).
func newBaselineInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Recompute and print a baseline's content fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read baseline file: %w", err)
			}
			b, err := baseline.UnmarshalYAML(data)
			if err != nil {
				return fmt.Errorf("parse baseline file: %w", err)
			}

			ok, expected, actual := baseline.VerifyFingerprint(b)
			fmt.Printf("useCaseId:       %s\n", b.UseCaseID)
			fmt.Printf("experimentMethod: %s\n", b.ExperimentMethod)
			fmt.Printf("generatedAt:     %s\n", b.GeneratedAt)
			fmt.Printf("samplesExecuted: %d (successes=%d, failures=%d)\n", b.SamplesExecuted, b.Successes, b.Failures)
			fmt.Printf("stored fingerprint:   %s\n", actual)
			fmt.Printf("recomputed fingerprint: %s\n", expected)
			if ok {
				fmt.Println("result: OK — fingerprint matches, no tamper detected")
				return nil
			}
			fmt.Println("result: MISMATCH — file was modified after sealing; do not trust this baseline")
			return fmt.Errorf("fingerprint mismatch for %s", args[0])
		},
	}
	return cmd
}
