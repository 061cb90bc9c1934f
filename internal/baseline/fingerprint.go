package baseline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// computeFingerprint hashes every persisted field of a Baseline except the
// fingerprint itself, in a field order fixed by this function — not struct
// declaration order — so the fingerprint is stable across Go versions and
// struct-layout changes (spec.md §3, §4.4).
func computeFingerprint(b *Baseline) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "schemaVersion=%s;", b.SchemaVersion)
	fmt.Fprintf(&sb, "useCaseId=%s;", b.UseCaseID)
	fmt.Fprintf(&sb, "experimentMethod=%s;", b.ExperimentMethod)
	fmt.Fprintf(&sb, "generatedAt=%s;", b.GeneratedAt.UTC().Format("20060102T150405Z"))
	fmt.Fprintf(&sb, "samplesExecuted=%d;", b.SamplesExecuted)
	fmt.Fprintf(&sb, "terminationReason=%s;", b.TerminationReason)
	fmt.Fprintf(&sb, "successes=%d;failures=%d;", b.Successes, b.Failures)
	fmt.Fprintf(&sb, "observed=%.10f;standardError=%.10f;ci95=[%.10f,%.10f];",
		b.Statistics.Observed, b.Statistics.StandardError,
		b.Statistics.ConfidenceInterval95[0], b.Statistics.ConfidenceInterval95[1])
	fmt.Fprintf(&sb, "totalTimeMs=%d;avgTimeMs=%.6f;totalTokens=%d;avgTokens=%.6f;",
		b.Cost.TotalTimeMs, b.Cost.AvgTimePerSampleMs, b.Cost.TotalTokens, b.Cost.AvgTokensPerSample)

	keys := make([]string, 0, len(b.CovariateProfile))
	for k := range b.CovariateProfile {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "cov:%s=%s;", k, b.CovariateProfile[k].Render())
	}

	fmt.Fprintf(&sb, "footprint=%s;", b.FootprintHash)
	fmt.Fprintf(&sb, "covHashes=%s;", strings.Join(b.CovariateValueHashes, ","))

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Seal computes and stamps b.ContentFingerprint. Call this once, after every
// other field is final, immediately before persisting.
func Seal(b *Baseline) {
	b.ContentFingerprint = computeFingerprint(b)
}

// VerifyFingerprint recomputes the fingerprint over a parsed Baseline's
// fields and compares it to the stored value. A mismatch means the file was
// mutated after being written without going through Seal again — tamper
// detection (spec.md §4.4).
func VerifyFingerprint(b *Baseline) (ok bool, expected, actual string) {
	expected = computeFingerprint(b)
	actual = b.ContentFingerprint
	return expected == actual, expected, actual
}

// SealSpec computes and stamps an ExecutionSpecification's own fingerprint,
// over its approval metadata plus its embedded baseline's fingerprint (not
// the baseline's full field set again — specs reference baselines by
// content hash, never by back-pointer, per spec.md §9).
func SealSpec(s *ExecutionSpecification) {
	s.ContentFingerprint = computeSpecFingerprint(s)
}

// VerifySpecFingerprint is VerifyFingerprint's counterpart for specs.
func VerifySpecFingerprint(s *ExecutionSpecification) (ok bool, expected, actual string) {
	expected = computeSpecFingerprint(s)
	actual = s.ContentFingerprint
	return expected == actual, expected, actual
}

func computeSpecFingerprint(s *ExecutionSpecification) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "baselineFingerprint=%s;", s.Baseline.ContentFingerprint)
	fmt.Fprintf(&sb, "approvedAt=%s;approvedBy=%s;notes=%s;version=%s;",
		s.ApprovedAt.UTC().Format("20060102T150405Z"), s.ApprovedBy, s.ApprovalNotes, s.Version)
	fmt.Fprintf(&sb, "successCriteria=%s;thresholdOrigin=%s;", s.SuccessCriteria, s.ThresholdOrigin)
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
