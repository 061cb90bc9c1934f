package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_RecordTokensCreditsEveryScope(t *testing.T) {
	suite := NewMonitor(ScopeSuite, 0, 1000)
	class := NewMonitor(ScopeClass, 0, 500)
	method := NewMonitor(ScopeMethod, 0, 100)
	stack := NewStack(suite, class, method)

	stack.RecordTokens(42)

	assert.EqualValues(t, 42, suite.TokensConsumed())
	assert.EqualValues(t, 42, class.TokensConsumed())
	assert.EqualValues(t, 42, method.TokensConsumed())
}

func TestStack_CheckExhaustionPrecedenceSuiteFirst(t *testing.T) {
	suite := NewMonitor(ScopeSuite, 0, 10)
	class := NewMonitor(ScopeClass, 0, 10)
	method := NewMonitor(ScopeMethod, 0, 10)
	stack := NewStack(suite, class, method)

	stack.RecordTokens(10)

	report, exhausted := stack.CheckExhaustion()
	require.True(t, exhausted)
	assert.Equal(t, ScopeSuite, report.Scope)
	assert.Equal(t, "suite_token_exhausted", report.Reason())
}

func TestStack_CheckExhaustionSkipsUnconfiguredScopes(t *testing.T) {
	method := NewMonitor(ScopeMethod, 0, 5)
	stack := NewStack(nil, nil, method)

	stack.RecordTokens(5)

	report, exhausted := stack.CheckExhaustion()
	require.True(t, exhausted)
	assert.Equal(t, ScopeMethod, report.Scope)
}

func TestMonitor_UnlimitedCeilingNeverExhausted(t *testing.T) {
	m := NewMonitor(ScopeMethod, 0, 0)
	m.RecordTokens(1_000_000)
	assert.False(t, m.IsExhausted())
}

func TestMonitor_TokensMonotonic(t *testing.T) {
	m := NewMonitor(ScopeMethod, 0, 0)
	m.RecordTokens(5)
	m.RecordTokens(-3) // negative is a no-op, never decreases
	m.RecordTokens(2)
	assert.EqualValues(t, 7, m.TokensConsumed())
}
