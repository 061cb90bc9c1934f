package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const version = "v0.1.0"

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     "probatest",
		Short:   "Run MEASURE/EXPLORE/OPTIMIZE experiments and inspect baselines out of band from the host test runner",
		Version: version,
	}

	rootCmd.AddCommand(
		newMeasureCmd(),
		newExploreCmd(),
		newOptimizeCmd(),
		newVerifyConfigCmd(),
		newBaselineCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("probatest exited with error")
	}
}
