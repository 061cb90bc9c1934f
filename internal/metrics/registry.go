// Package metrics exposes Prometheus instrumentation for the run: budget
// consumption, sample outcomes, and verdicts, grounded on the teacher's
// MetricsRegistry (internal/interfaces/http/metrics.go) but generalized to
// this domain's vocabulary.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Registry holds every Prometheus metric this process exports.
type Registry struct {
	SampleDuration *prometheus.HistogramVec
	SamplesTotal   *prometheus.CounterVec

	BudgetTimeConsumedMs prometheus.Gauge
	BudgetTokensConsumed prometheus.Gauge

	VerdictsTotal   *prometheus.CounterVec
	BreakerTripsTotal *prometheus.CounterVec
}

// NewRegistry builds and registers every metric. Call once per process;
// registering twice against the default registerer panics, matching
// prometheus.MustRegister's own contract.
func NewRegistry() *Registry {
	r := &Registry{
		SampleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "probatest_sample_duration_seconds",
				Help:    "Duration of each sample invocation in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"use_case", "method", "status"},
		),
		SamplesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "probatest_samples_total",
				Help: "Total number of samples executed by outcome status",
			},
			[]string{"use_case", "method", "status"},
		),
		BudgetTimeConsumedMs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "probatest_budget_time_consumed_ms",
				Help: "Elapsed time consumed against the active budget stack",
			},
		),
		BudgetTokensConsumed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "probatest_budget_tokens_consumed",
				Help: "Tokens consumed against the active budget stack",
			},
		),
		VerdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "probatest_verdicts_total",
				Help: "Total number of published verdicts by pass/fail",
			},
			[]string{"use_case", "method", "intent", "passed"},
		),
		BreakerTripsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "probatest_breaker_trips_total",
				Help: "Total number of circuit breaker trips by use case",
			},
			[]string{"use_case"},
		),
	}

	prometheus.MustRegister(
		r.SampleDuration,
		r.SamplesTotal,
		r.BudgetTimeConsumedMs,
		r.BudgetTokensConsumed,
		r.VerdictsTotal,
		r.BreakerTripsTotal,
	)
	return r
}

// SampleTimer tracks one sample invocation's wall-clock duration.
type SampleTimer struct {
	r                  *Registry
	useCase, method    string
	start              time.Time
}

// StartSampleTimer begins timing a sample invocation.
func (r *Registry) StartSampleTimer(useCase, method string) *SampleTimer {
	return &SampleTimer{r: r, useCase: useCase, method: method, start: time.Now()}
}

// Stop records the sample's duration and increments its status counter.
func (t *SampleTimer) Stop(status string) {
	d := time.Since(t.start)
	t.r.SampleDuration.WithLabelValues(t.useCase, t.method, status).Observe(d.Seconds())
	t.r.SamplesTotal.WithLabelValues(t.useCase, t.method, status).Inc()
}

// RecordBudgetConsumption updates the gauges tracking the active run's
// budget stack state. Nothing in this module calls it; the scheduler does
// not update these gauges itself.
func (r *Registry) RecordBudgetConsumption(elapsedMs, tokens int64) {
	r.BudgetTimeConsumedMs.Set(float64(elapsedMs))
	r.BudgetTokensConsumed.Set(float64(tokens))
}

// RecordVerdict increments the verdict counter and logs a structured line.
func (r *Registry) RecordVerdict(useCase, method, intent string, passed bool) {
	r.VerdictsTotal.WithLabelValues(useCase, method, intent, boolLabel(passed)).Inc()
	log.Info().
		Str("use_case", useCase).
		Str("method", method).
		Str("intent", intent).
		Bool("passed", passed).
		Msg("verdict published")
}

// RecordBreakerTrip increments the breaker-trip counter for useCase.
func (r *Registry) RecordBreakerTrip(useCase string) {
	r.BreakerTripsTotal.WithLabelValues(useCase).Inc()
	log.Warn().Str("use_case", useCase).Msg("circuit breaker tripped")
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
