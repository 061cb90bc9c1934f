// Package publisher renders a stats.Verdict into intent-aware output and
// ships it to one or more channels (console, structured log, HTTP status).
package publisher

import (
	"fmt"

	"github.com/sawpanic/probatest/internal/domain"
	"github.com/sawpanic/probatest/internal/stats"
)

// PublishedVerdict augments stats.Verdict with the use-case identity and
// any intent-driven caveats (spec.md §4.7).
type PublishedVerdict struct {
	UseCaseID string
	Method    string
	Intent    domain.Intent
	Verdict   stats.Verdict
	Caveats   []string
}

// Build layers intent-awareness onto a raw statistics verdict. A smoke test
// failing against a non-normative (empirically-derived) threshold gets a
// caveat distinguishing "this regressed" from "this never had a compliance
// guarantee to begin with" — the distinction spec.md §4.7 exists for.
func Build(useCaseID, method string, cfg domain.ResolvedConfiguration, v stats.Verdict) PublishedVerdict {
	pv := PublishedVerdict{
		UseCaseID: useCaseID,
		Method:    method,
		Intent:    cfg.Intent,
		Verdict:   v,
	}

	if cfg.Intent == domain.IntentSmoke && !v.Pass {
		if cfg.ThresholdOrigin.IsNormative() {
			pv.Caveats = append(pv.Caveats, fmt.Sprintf(
				"threshold origin %q carries compliance weight; this smoke-test failure should still be triaged as a regression", cfg.ThresholdOrigin))
		} else {
			pv.Caveats = append(pv.Caveats, fmt.Sprintf(
				"threshold origin %q is empirical, not a compliance guarantee; a smoke-test failure here is a signal, not a hard gate", cfg.ThresholdOrigin))
		}
	}
	if cfg.Intent == domain.IntentVerification && !v.Pass && cfg.ThresholdOrigin == domain.ThresholdOriginUnspecified {
		pv.Caveats = append(pv.Caveats, "threshold origin was never declared; this failure has no attributable SLA/SLO/policy backing it")
	}
	return pv
}
