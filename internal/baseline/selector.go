package baseline

import (
	"fmt"
	"sort"
	"time"

	"github.com/sawpanic/probatest/internal/domain/covariate"
)

// TemporalPartialMatchTolerance is the named constant for the ±30-minute
// tolerance on temporal partial matches (spec.md §9 Open Question: declared
// but not further parameterised upstream; do not silently widen this
// without treating it as a compatibility-affecting change).
const TemporalPartialMatchTolerance = 30 * time.Minute

// Candidate is a baseline plus the declaration metadata needed to score it
// against a test's current profile, without having parsed its full body yet
// (filename-only fields) or after parsing (full Baseline).
type Candidate struct {
	Filename string
	Parsed   parsedFilename
	Baseline *Baseline // nil until loaded; selector loads only the winner
}

// ConfigurationMismatchError is returned when zero candidates survive the
// hard-gate phase (spec.md §4.4).
type ConfigurationMismatchError struct {
	UseCaseID string
	Method    string
	Mismatches []Mismatch
}

// Mismatch names one hard-gate covariate key where no candidate's value
// agreed with the test's.
type Mismatch struct {
	Key         string
	TestValue   string
	BaselineValues []string
}

func (e *ConfigurationMismatchError) Error() string {
	return fmt.Sprintf("configuration_mismatch: no baseline for %s.%s passes the hard-gate filter (%d mismatched keys) — "+
		"run EXPLORE to compare configurations or MEASURE to establish a new baseline for this configuration",
		e.UseCaseID, e.Method, len(e.Mismatches))
}

// Category returns the fixed hard-fail category name for the publisher.
func (e *ConfigurationMismatchError) Category() string { return "configurationMismatch" }

// SelectionInput bundles what the selector needs to run phase 1 and 2.
type SelectionInput struct {
	UseCaseID     string
	Method        string
	FootprintHash string
	Declarations  covariate.Declarations
	Profile       covariate.Profile
}

// Select runs the two-phase algorithm over a candidate list already
// restricted to the matching use_case_id/method (the caller is expected to
// have filtered by filename prefix before calling, per spec.md §4.4's
// "From all candidates with matching use_case_id and method").
func Select(candidates []Candidate, in SelectionInput) (*Candidate, error) {
	gated, mismatches := hardGate(candidates, in)
	if len(gated) == 0 {
		return nil, &ConfigurationMismatchError{UseCaseID: in.UseCaseID, Method: in.Method, Mismatches: mismatches}
	}

	best := softScore(gated, in)
	return &best, nil
}

// hardGate implements phase 1: exact footprint match, then exact value-hash
// match on every configuration-category covariate.
func hardGate(candidates []Candidate, in SelectionInput) ([]Candidate, []Mismatch) {
	var gated []Candidate
	mismatchSet := map[string]Mismatch{}

	configKeys := make([]string, 0)
	for _, d := range in.Declarations {
		if d.Category == covariate.CategoryConfiguration {
			configKeys = append(configKeys, d.Key)
		}
	}

	for _, c := range candidates {
		if c.Parsed.FootprintHash != in.FootprintHash {
			continue
		}
		ok := true
		for i, key := range configKeys {
			testHash := valueHashAt(in.Declarations, in.Profile, key)
			if i >= len(c.Parsed.CovHashes) {
				ok = false
				continue
			}
			if candidateHashForConfigKey(c, in, key) != testHash {
				ok = false
				m := mismatchSet[key]
				m.Key = key
				m.TestValue = in.Profile[key].Render()
				m.BaselineValues = append(m.BaselineValues, fmt.Sprintf("hash:%s", c.Parsed.CovHashes[i]))
				mismatchSet[key] = m
			}
		}
		if ok {
			gated = append(gated, c)
		}
	}

	mismatches := make([]Mismatch, 0, len(mismatchSet))
	for _, m := range mismatchSet {
		mismatches = append(mismatches, m)
	}
	sort.Slice(mismatches, func(i, j int) bool { return mismatches[i].Key < mismatches[j].Key })
	return gated, mismatches
}

// candidateHashForConfigKey reads the position-aligned covariate hash for a
// declared key out of the candidate's filename fields, using the same
// declaration order the test used (non-informational covariates only,
// matching ValueHashes' ordering).
func candidateHashForConfigKey(c Candidate, in SelectionInput, key string) string {
	idx := nonInformationalIndex(in.Declarations, key)
	if idx < 0 || idx >= len(c.Parsed.CovHashes) {
		return ""
	}
	return c.Parsed.CovHashes[idx]
}

func valueHashAt(decls covariate.Declarations, profile covariate.Profile, key string) string {
	hashes := covariate.ValueHashes(decls, profile)
	idx := nonInformationalIndex(decls, key)
	if idx < 0 || idx >= len(hashes) {
		return ""
	}
	return hashes[idx]
}

func nonInformationalIndex(decls covariate.Declarations, key string) int {
	idx := 0
	for _, d := range decls {
		if d.Category == covariate.CategoryInformational {
			continue
		}
		if d.Key == key {
			return idx
		}
		idx++
	}
	return -1
}

// score tallies phase-2 points for one candidate against the test profile.
type scored struct {
	candidate Candidate
	points    int
	priority  int
	declOrder int
}

// softScore implements phase 2: score temporal/infrastructure/
// external_dependency/operational/data_state covariates, then tie-break by
// score, category priority, earliest-declared matching covariate, and
// newest generatedAt.
func softScore(candidates []Candidate, in SelectionInput) Candidate {
	scoredList := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		points, priority, declOrder := scoreOne(c, in)
		scoredList = append(scoredList, scored{candidate: c, points: points, priority: priority, declOrder: declOrder})
	}

	sort.SliceStable(scoredList, func(i, j int) bool {
		a, b := scoredList[i], scoredList[j]
		if a.points != b.points {
			return a.points > b.points
		}
		if a.priority != b.priority {
			return a.priority > b.priority
		}
		if a.declOrder != b.declOrder {
			return a.declOrder < b.declOrder
		}
		return a.candidate.Parsed.GeneratedAt.After(b.candidate.Parsed.GeneratedAt)
	})

	return scoredList[0].candidate
}

// scoreOne returns (total points, best matching category priority seen,
// earliest declaration index with a match) for tie-break purposes.
func scoreOne(c Candidate, in SelectionInput) (points, bestPriority, earliestDeclOrder int) {
	earliestDeclOrder = len(in.Declarations) + 1
	for i, d := range in.Declarations {
		if d.Category == covariate.CategoryConfiguration || d.Category == covariate.CategoryInformational {
			continue
		}
		idx := nonInformationalIndex(in.Declarations, d.Key)
		if idx < 0 || idx >= len(c.Parsed.CovHashes) {
			continue
		}
		testHash := valueHashAt(in.Declarations, in.Profile, d.Key)
		candidateHash := c.Parsed.CovHashes[idx]

		var p int
		switch {
		case candidateHash == testHash:
			p = 3
		case partialMatch(d, c, in):
			p = 1
		default:
			p = 0
		}
		if p > 0 && i < earliestDeclOrder {
			earliestDeclOrder = i
		}
		if p > 0 && d.Category.ScorePriority() > bestPriority {
			bestPriority = d.Category.ScorePriority()
		}
		points += p
	}
	return points, bestPriority, earliestDeclOrder
}

// partialMatch is the partial-credit hook of Select. Candidates here carry
// only filename hashes, not raw covariate values, so neither the ±30-minute
// window rule nor the day-kind rule can be evaluated: it always returns
// false, and Select awards no partial-match points.
func partialMatch(d covariate.Declaration, c Candidate, in SelectionInput) bool {
	if d.Category != covariate.CategoryTemporal {
		return false
	}
	v, ok := in.Profile[d.Key]
	if !ok || v.Kind != covariate.ValueKindTimeWindow {
		return false
	}
	// Without the candidate's raw covariate profile (filename carries only a
	// hash), a ±30m partial match cannot be evaluated from the filename
	// alone. RefineWithLoadedProfile scores against loaded profiles instead.
	return false
}

// RefineWithLoadedProfile scores a loaded candidate profile against the test
// profile, applying the ±30-minute temporal partial-match rule and the
// weekday/weekend day-kind rule to real values instead of hashes. No Store
// in this package calls it; Select does not use it.
func RefineWithLoadedProfile(testProfile covariate.Profile, candidateProfile covariate.Profile, decls covariate.Declarations) int {
	points := 0
	for _, d := range decls {
		if d.Category == covariate.CategoryConfiguration || d.Category == covariate.CategoryInformational {
			continue
		}
		tv, tok := testProfile[d.Key]
		cv, cok := candidateProfile[d.Key]
		if !tok || !cok {
			continue
		}
		switch {
		case tv.Render() == cv.Render():
			points += 3
		case d.Category == covariate.CategoryTemporal && tv.Kind == covariate.ValueKindTimeWindow && cv.Kind == covariate.ValueKindTimeWindow:
			if withinTolerance(tv, cv) {
				points++
			}
		case d.Category == covariate.CategoryTemporal && tv.Kind == covariate.ValueKindDay && cv.Kind == covariate.ValueKindDay:
			if tv.Day == cv.Day {
				points++
			}
		}
	}
	return points
}

func withinTolerance(a, b covariate.Value) bool {
	diff := a.WindowStart.Sub(b.WindowStart)
	if diff < 0 {
		diff = -diff
	}
	return diff <= TemporalPartialMatchTolerance
}
