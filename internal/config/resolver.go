// Package config resolves a ResolvedConfiguration by precedence: declared
// values on the test itself, then process-wide overrides via
// properties/env, then documented defaults (spec.md §6). It also implements
// the strict validation rules for the resolved values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sawpanic/probatest/internal/domain"
)

// Declared mirrors the subset of ResolvedConfiguration a test can set
// directly (the highest-precedence source). Pointer fields distinguish
// "not set" from a zero value.
type Declared struct {
	Samples                 *int
	MinPassRate              *float64
	ThresholdConfidence      *float64
	Intent                   *domain.Intent
	ExceptionPolicy          *domain.ExceptionPolicy
	MaxExampleFailures       *int
	BudgetExhaustedBehavior  *domain.BudgetExhaustedBehavior
	PacingDelayMs            *int64
	ThresholdOrigin          *domain.ThresholdOrigin
	SamplesMultiplier        *float64

	// ConfidenceFirst mode inputs; mutually exclusive with a declared
	// Samples value under the conflict-rejection rule in validateModeConflicts.
	MinDetectableEffect *float64
	Power               *float64
}

// PropertyLookup reads a process-wide "<prefix>.<name>" property. Backed by
// whatever config source the host wires in (file, flags, a properties
// map); env is consulted separately and always as a fallback per the
// precedence order.
type PropertyLookup func(name string) (string, bool)

// Resolver implements the three-tier precedence chain.
type Resolver struct {
	Prefix   string // e.g. "probatest"
	Property PropertyLookup
}

// Resolve builds a ResolvedConfiguration from a Declared override set.
func (r *Resolver) Resolve(d Declared) (domain.ResolvedConfiguration, error) {
	cfg := domain.DefaultResolvedConfiguration()

	if v, ok := r.int("samples", d.Samples); ok {
		cfg.PlannedSamples = v
	}
	if v, ok := r.float("minPassRate", d.MinPassRate); ok {
		cfg.MinPassRate = v
	}
	if v, ok := r.float("thresholdConfidence", d.ThresholdConfidence); ok {
		cfg.ThresholdConfidence = v
	}
	if d.Intent != nil {
		cfg.Intent = *d.Intent
	}
	if d.ExceptionPolicy != nil {
		cfg.ExceptionPolicy = *d.ExceptionPolicy
	}
	if v, ok := r.int("maxExampleFailures", d.MaxExampleFailures); ok {
		cfg.MaxExampleFailures = v
	}
	if d.BudgetExhaustedBehavior != nil {
		cfg.BudgetExhaustedBehavior = *d.BudgetExhaustedBehavior
	}
	if v, ok := r.int64("pacingDelayMs", d.PacingDelayMs); ok {
		cfg.PacingDelayMs = v
	}
	if d.ThresholdOrigin != nil {
		cfg.ThresholdOrigin = *d.ThresholdOrigin
	}
	if v, ok := r.float("samplesMultiplier", nil); ok && d.SamplesMultiplier == nil {
		cfg.PlannedSamples = int(float64(cfg.PlannedSamples) * v)
	} else if d.SamplesMultiplier != nil {
		cfg.PlannedSamples = int(float64(cfg.PlannedSamples) * *d.SamplesMultiplier)
	}

	if err := r.validateModeConflicts(d); err != nil {
		return domain.ResolvedConfiguration{}, err
	}

	if err := Validate(cfg); err != nil {
		return domain.ResolvedConfiguration{}, err
	}
	return cfg, nil
}

// validateModeConflicts rejects the nonsensical combination of setting both
// confidence-first inputs (minDetectableEffect/power) and a declared sample
// size simultaneously (spec.md §6).
func (r *Resolver) validateModeConflicts(d Declared) error {
	confidenceFirst := d.MinDetectableEffect != nil || d.Power != nil
	sampleSizeDeclared := d.Samples != nil
	if confidenceFirst && sampleSizeDeclared {
		return fmt.Errorf("misconfiguration: both confidence-first inputs (minDetectableEffect/power) and an explicit samples count were set — choose one threshold-derivation mode")
	}
	return nil
}

func (r *Resolver) lookup(name string) (string, bool) {
	if r.Property != nil {
		key := fmt.Sprintf("%s.%s", strings.ToLower(r.Prefix), name)
		if v, ok := r.Property(key); ok {
			return v, true
		}
	}
	envKey := fmt.Sprintf("%s_%s", strings.ToUpper(r.Prefix), toEnvCase(name))
	return os.LookupEnv(envKey)
}

func (r *Resolver) int(name string, declared *int) (int, bool) {
	if declared != nil {
		return *declared, true
	}
	s, ok := r.lookup(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r *Resolver) int64(name string, declared *int64) (int64, bool) {
	if declared != nil {
		return *declared, true
	}
	s, ok := r.lookup(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r *Resolver) float(name string, declared *float64) (float64, bool) {
	if declared != nil {
		return *declared, true
	}
	s, ok := r.lookup(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// toEnvCase converts a camelCase property suffix (e.g. "minPassRate") into
// SCREAMING_SNAKE_CASE (e.g. "MIN_PASS_RATE") for the env-var form, matching
// the "<prefix>.minPassRate" / "<PREFIX>_MIN_PASS_RATE" pairing in spec.md §6.
func toEnvCase(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' && i > 0 {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	return strings.ToUpper(sb.String())
}
