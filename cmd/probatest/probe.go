package main

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sawpanic/probatest/internal/domain"
	"github.com/sawpanic/probatest/internal/scheduler"
)

// shellProbeInvoker builds an InvokeFunc that runs an external command once
// per sample — the CLI's out-of-band stand-in for the embedding host's
// per-language invocation (spec.md §1: a thin per-host-runner adapter is out
// of scope for the engine itself, but the CLI still needs something
// concrete to drive). Exit code 0 is success; any other exit code is an
// assertion failure. The first line of the form "tokens:<n>" on stdout is
// parsed as the sample's token cost; its absence means zero.
func shellProbeInvoker(command string, args []string) scheduler.InvokeFunc {
	return func(ctx context.Context, sampleIndex int) (domain.Outcome, error) {
		start := time.Now()
		cmd := exec.CommandContext(ctx, command, args...)
		out, err := cmd.Output()
		elapsed := time.Since(start)

		tokens := parseTokensLine(string(out))

		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				return domain.Outcome{
					Status:         domain.StatusAssertionFailure,
					FailureReason:  domain.FirstLine(string(exitErr.Stderr)),
					ExecutionTime:  elapsed,
					TokensConsumed: tokens,
				}, nil
			}
			return domain.Outcome{Status: domain.StatusUnexpectedException, ExecutionTime: elapsed}, err
		}

		return domain.Outcome{
			Status:         domain.StatusSuccess,
			ExecutionTime:  elapsed,
			TokensConsumed: tokens,
		}, nil
	}
}

func parseTokensLine(stdout string) int64 {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "tokens:") {
			n, err := strconv.ParseInt(strings.TrimPrefix(line, "tokens:"), 10, 64)
			if err == nil {
				return n
			}
		}
	}
	return 0
}
