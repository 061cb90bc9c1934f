// Package budget implements the three-scope (suite/class/method) budget
// engine: wall-clock and token ceilings, atomic token propagation, and
// exhaustion detection in suite→class→method precedence order.
package budget

import (
	"sync/atomic"
	"time"
)

// Scope names a budget monitor's place in the hierarchy.
type Scope string

const (
	ScopeMethod Scope = "method"
	ScopeClass  Scope = "class"
	ScopeSuite  Scope = "suite"
)

// Monitor tracks consumption against a ceiling at one scope. Ceilings are
// immutable after construction; TokensConsumed is monotonically
// non-decreasing and updated with an atomic add so shared-scope monitors stay
// lock-free in the common path (spec.md §5).
type Monitor struct {
	scope         Scope
	timeCeilingMs int64 // 0 = unlimited
	tokenCeiling  int64 // 0 = unlimited
	start         time.Time
	tokens        atomic.Int64
}

// NewMonitor constructs a monitor for a scope with the given ceilings (0 = unlimited).
func NewMonitor(scope Scope, timeCeilingMs, tokenCeiling int64) *Monitor {
	return &Monitor{
		scope:         scope,
		timeCeilingMs: timeCeilingMs,
		tokenCeiling:  tokenCeiling,
		start:         time.Now(),
	}
}

// Scope returns the monitor's scope.
func (m *Monitor) Scope() Scope { return m.scope }

// ElapsedMs returns milliseconds elapsed since the monitor was constructed.
func (m *Monitor) ElapsedMs() int64 {
	return time.Since(m.start).Milliseconds()
}

// TokensConsumed returns the current atomic token count.
func (m *Monitor) TokensConsumed() int64 {
	return m.tokens.Load()
}

// IsTimeExhausted reports whether the time ceiling (if any) has been crossed.
func (m *Monitor) IsTimeExhausted() bool {
	if m.timeCeilingMs <= 0 {
		return false
	}
	return m.ElapsedMs() >= m.timeCeilingMs
}

// IsTokenExhausted reports whether the token ceiling (if any) has been crossed.
func (m *Monitor) IsTokenExhausted() bool {
	if m.tokenCeiling <= 0 {
		return false
	}
	return m.tokens.Load() >= m.tokenCeiling
}

// IsExhausted reports whether either ceiling has been crossed.
func (m *Monitor) IsExhausted() bool {
	return m.IsTimeExhausted() || m.IsTokenExhausted()
}

// RecordTokens atomically adds n to the monitor's consumed total. A
// non-positive n is ignored, so the total is monotonically non-decreasing.
func (m *Monitor) RecordTokens(n int64) {
	if n <= 0 {
		return
	}
	m.tokens.Add(n)
}
