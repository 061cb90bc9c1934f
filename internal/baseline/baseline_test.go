package baseline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/probatest/internal/domain/covariate"
)

func sampleBaseline() *Baseline {
	b := &Baseline{
		SchemaVersion:    "v1",
		UseCaseID:        "checkout-flow",
		ExperimentMethod: "measureLatency",
		GeneratedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		SamplesExecuted:  300,
		Successes:        285,
		Failures:         15,
		Statistics: ObservedStatistics{
			Observed:      0.95,
			StandardError: 0.01,
		},
		CovariateProfile: covariate.Profile{
			"llm_model": covariate.String("claude-3"),
		},
		FootprintHash:        "abcd1234",
		CovariateValueHashes: []string{"efgh5678"},
	}
	Seal(b)
	return b
}

func TestFingerprint_RoundTripsThroughYAML(t *testing.T) {
	b := sampleBaseline()
	data, err := MarshalYAML(b)
	require.NoError(t, err)

	parsed, err := UnmarshalYAML(data)
	require.NoError(t, err)

	ok, expected, actual := VerifyFingerprint(parsed)
	assert.True(t, ok, "expected %s actual %s", expected, actual)
	assert.Equal(t, b.ContentFingerprint, parsed.ContentFingerprint)
}

func TestFingerprint_DetectsTamper(t *testing.T) {
	b := sampleBaseline()
	b.Successes = 1000 // mutate after sealing, without resealing

	ok, expected, actual := VerifyFingerprint(b)
	assert.False(t, ok)
	assert.NotEqual(t, expected, actual)
}

func TestCanonicalFilename_RoundTripsThroughParse(t *testing.T) {
	generatedAt := time.Date(2026, 3, 1, 14, 30, 0, 0, time.UTC)
	name := CanonicalFilename("checkout-flow", "measureLatency", generatedAt, "abcd1234", []string{"efgh5678", "ijkl9012"})
	assert.Equal(t, "checkout-flow.measureLatency-20260301-1430-abcd1234-efgh5678-ijkl9012.yaml", name)

	parsed, err := ParseFilename(name)
	require.NoError(t, err)
	assert.Equal(t, "checkout-flow", parsed.UseCaseID)
	assert.Equal(t, "measureLatency", parsed.Method)
	assert.Equal(t, "abcd1234", parsed.FootprintHash)
	assert.Equal(t, []string{"efgh5678", "ijkl9012"}, parsed.CovHashes)
	assert.True(t, parsed.GeneratedAt.Equal(generatedAt))
}

func TestSelect_ConfigurationMismatchWhenNoHardGateSurvives(t *testing.T) {
	decls := covariate.Declarations{
		{Key: "llm_model", Category: covariate.CategoryConfiguration},
	}
	profile := covariate.Profile{"llm_model": covariate.String("claude-3")}

	gptHash := covariate.ValueHashes(decls, covariate.Profile{"llm_model": covariate.String("gpt-4")})
	candidates := []Candidate{
		{
			Filename: "checkout-flow.measureLatency-20260301-1200-footprint-" + gptHash[0] + ".yaml",
			Parsed: parsedFilename{
				UseCaseID: "checkout-flow", Method: "measureLatency",
				FootprintHash: "footprint", CovHashes: gptHash,
			},
		},
	}

	_, err := Select(candidates, SelectionInput{
		UseCaseID: "checkout-flow", Method: "measureLatency",
		FootprintHash: "footprint", Declarations: decls, Profile: profile,
	})
	require.Error(t, err)
	var mismatchErr *ConfigurationMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, "configurationMismatch", mismatchErr.Category())
}

func TestSelect_PicksExactHardGateMatch(t *testing.T) {
	decls := covariate.Declarations{
		{Key: "llm_model", Category: covariate.CategoryConfiguration},
	}
	profile := covariate.Profile{"llm_model": covariate.String("claude-3")}
	matchHash := covariate.ValueHashes(decls, profile)

	candidates := []Candidate{
		{Parsed: parsedFilename{UseCaseID: "checkout-flow", Method: "measureLatency", FootprintHash: "footprint", CovHashes: matchHash, GeneratedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}},
	}

	winner, err := Select(candidates, SelectionInput{
		UseCaseID: "checkout-flow", Method: "measureLatency",
		FootprintHash: "footprint", Declarations: decls, Profile: profile,
	})
	require.NoError(t, err)
	assert.Equal(t, matchHash, winner.Parsed.CovHashes)
}

func TestSelect_TieBreaksByNewestGeneratedAt(t *testing.T) {
	decls := covariate.Declarations{{Key: "llm_model", Category: covariate.CategoryConfiguration}}
	profile := covariate.Profile{"llm_model": covariate.String("claude-3")}
	matchHash := covariate.ValueHashes(decls, profile)

	older := Candidate{Parsed: parsedFilename{FootprintHash: "footprint", CovHashes: matchHash, GeneratedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}}
	newer := Candidate{Parsed: parsedFilename{FootprintHash: "footprint", CovHashes: matchHash, GeneratedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}}

	winner, err := Select([]Candidate{older, newer}, SelectionInput{FootprintHash: "footprint", Declarations: decls, Profile: profile})
	require.NoError(t, err)
	assert.True(t, winner.Parsed.GeneratedAt.Equal(newer.Parsed.GeneratedAt))
}
