package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/probatest/internal/domain"
)

func TestResolve_DeclaredOverridesDefault(t *testing.T) {
	r := &Resolver{Prefix: "probatest"}
	samples := 50
	cfg, err := r.Resolve(Declared{Samples: &samples})
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.PlannedSamples)
	assert.Equal(t, 0.9, cfg.MinPassRate) // untouched default
}

func TestResolve_PropertyOverridesDefaultWhenNotDeclared(t *testing.T) {
	props := map[string]string{"probatest.samples": "75"}
	r := &Resolver{Prefix: "probatest", Property: func(name string) (string, bool) {
		v, ok := props[name]
		return v, ok
	}}
	cfg, err := r.Resolve(Declared{})
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.PlannedSamples)
}

func TestResolve_DeclaredTakesPrecedenceOverProperty(t *testing.T) {
	props := map[string]string{"probatest.samples": "75"}
	r := &Resolver{Prefix: "probatest", Property: func(name string) (string, bool) {
		v, ok := props[name]
		return v, ok
	}}
	samples := 10
	cfg, err := r.Resolve(Declared{Samples: &samples})
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.PlannedSamples)
}

func TestResolve_RejectsDegenerateMinPassRate(t *testing.T) {
	r := &Resolver{Prefix: "probatest"}
	rate := 1.0
	_, err := r.Resolve(Declared{MinPassRate: &rate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admits no meaningful statistical test")
}

func TestResolve_RejectsConfidenceFirstAndSamplesConflict(t *testing.T) {
	r := &Resolver{Prefix: "probatest"}
	samples := 20
	mde := 0.05
	_, err := r.Resolve(Declared{Samples: &samples, MinDetectableEffect: &mde})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "choose one threshold-derivation mode")
}

func TestValidate_RejectsNonPositiveSamples(t *testing.T) {
	cfg := domain.DefaultResolvedConfiguration()
	cfg.PlannedSamples = 0
	err := Validate(cfg)
	require.Error(t, err)
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	cfg := domain.DefaultResolvedConfiguration()
	require.NoError(t, Validate(cfg))
}
