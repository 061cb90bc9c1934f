// Package baseline implements the baseline store and selector: canonical
// filenames, footprint/fingerprint hashing, the two-phase hard-gate +
// soft-score selection algorithm, and pluggable storage backends
// (spec.md §3, §4.4, §6).
package baseline

import (
	"time"

	"github.com/sawpanic/probatest/internal/domain/covariate"
	"github.com/sawpanic/probatest/internal/stats"
)

// CostStatistics mirrors the "cost" section of the on-disk baseline format
// (spec.md §6).
type CostStatistics struct {
	TotalTimeMs        int64
	AvgTimePerSampleMs float64
	TotalTokens        int64
	AvgTokensPerSample float64
}

// ObservedStatistics mirrors the "statistics" section of the on-disk format.
type ObservedStatistics struct {
	Observed          float64
	StandardError     float64
	ConfidenceInterval95 [2]float64
	Successes         int
	Failures          int
	Latency           stats.LatencyStatistics
}

// Baseline is the immutable record produced by MEASURE (spec.md §3).
type Baseline struct {
	SchemaVersion   string
	UseCaseID       string
	ExperimentMethod string
	GeneratedAt     time.Time

	SamplesExecuted int
	TerminationReason string

	Successes int
	Failures  int
	Statistics ObservedStatistics
	Cost       CostStatistics

	CovariateProfile covariate.Profile
	FootprintHash    string
	CovariateValueHashes []string

	// ContentFingerprint is computed over every field above and stored
	// separately; see fingerprint.go. It is never itself hashed.
	ContentFingerprint string
}

// ObservedRate returns successes/executed, matching domain.SampleAggregate's
// definition.
func (b *Baseline) ObservedRate() float64 {
	if b.SamplesExecuted == 0 {
		return 0
	}
	return float64(b.Successes) / float64(b.SamplesExecuted)
}

// ExecutionSpecification is a human-approved promotion of a Baseline
// (spec.md §3).
type ExecutionSpecification struct {
	Baseline Baseline

	ApprovedAt     time.Time
	ApprovedBy     string
	ApprovalNotes  string
	Version        string
	SuccessCriteria string
	ThresholdOrigin string

	ContentFingerprint string
}
