// Package breaker adapts sony/gobreaker to the scheduler.Breaker seam,
// letting a run stop invoking a system under test that is already failing
// consistently instead of burning the remainder of its sample budget on
// outcomes it can already predict (spec.md §9: pluggable seams).
package breaker

import (
	"errors"
	"time"

	cb "github.com/sony/gobreaker"
)

// errRecordedFailure is fed through gobreaker's Execute to report a failed
// sample without gobreaker itself running anything — Execute is the only
// public way to update its internal counts.
var errRecordedFailure = errors.New("recorded failure")

// Breaker wraps a gobreaker.CircuitBreaker, trip-on-consecutive-failure and
// trip-on-failure-ratio, matching the settings the teacher's breaker used
// for its upstream calls.
type Breaker struct {
	cb *cb.CircuitBreaker
}

// New constructs a Breaker named for the use case / method pair it guards,
// so its trip events are attributable in logs and the status endpoint.
func New(name string) *Breaker {
	st := cb.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts cb.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		total := counts.Requests
		if total < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(total) > 0.05
	}
	return &Breaker{cb: cb.NewCircuitBreaker(st)}
}

// Allow reports whether the breaker is closed (or half-open probing) and a
// sample may proceed.
func (b *Breaker) Allow() bool {
	return b.cb.State() != cb.StateOpen
}

// Record reports the sample's outcome back to the breaker's counters.
func (b *Breaker) Record(success bool) {
	_, _ = b.cb.Execute(func() (any, error) {
		if success {
			return nil, nil
		}
		return nil, errRecordedFailure
	})
}

// State exposes the breaker's current state for the status endpoint.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
