package gate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_LessOrEqual(t *testing.T) {
	check, err := Evaluate("mismatch_budget", "mismatch_count", LessOrEqual, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusPass, check.Status)
	assert.Empty(t, check.Reason)

	check, err = Evaluate("mismatch_budget", "mismatch_count", LessOrEqual, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusFail, check.Status)
	assert.Equal(t, "mismatch_count threshold exceeded: 3 > 0", check.Reason)
}

func TestEvaluate_GreaterOrEqual(t *testing.T) {
	check, err := Evaluate("coverage", "match_ratio", GreaterOrEqual, 0.95, 0.9)
	require.NoError(t, err)
	assert.Equal(t, StatusPass, check.Status)

	check, err = Evaluate("coverage", "match_ratio", GreaterOrEqual, 0.85, 0.9)
	require.NoError(t, err)
	assert.Equal(t, StatusFail, check.Status)
	assert.Equal(t, "match_ratio below threshold: 0.85 < 0.9", check.Reason)
}

func TestEvaluate_BoundaryIsInclusive(t *testing.T) {
	for _, op := range []Operator{GreaterOrEqual, LessOrEqual} {
		check, err := Evaluate("g", "m", op, 0.5, 0.5)
		require.NoError(t, err)
		assert.Equal(t, StatusPass, check.Status, "operator %s", op)
	}
}

func TestEvaluate_Invalid(t *testing.T) {
	_, err := Evaluate("", "m", LessOrEqual, 1, 1)
	assert.ErrorContains(t, err, "gate id is required")

	_, err = Evaluate("g", "m", Operator("BETWEEN"), 1, 1)
	assert.ErrorContains(t, err, "unknown operator")

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = Evaluate("g", "m", LessOrEqual, bad, 1)
		assert.ErrorContains(t, err, "measured value is not finite")

		_, err = Evaluate("g", "m", LessOrEqual, 1, bad)
		assert.ErrorContains(t, err, "threshold value is not finite")
	}
}

func TestNewResult_AllPass(t *testing.T) {
	checks := []Check{
		{MetricKey: "a", Status: StatusPass},
		{MetricKey: "b", Status: StatusPass},
	}

	result := NewResult("release", checks)
	assert.Equal(t, StatusPass, result.Status)
	assert.Empty(t, result.Reasons)
}

func TestNewResult_AnyFailureFails(t *testing.T) {
	// Flipping any single check to FAIL must fail the whole gate.
	for flip := 0; flip < 3; flip++ {
		checks := []Check{
			{MetricKey: "a", Status: StatusPass},
			{MetricKey: "b", Status: StatusPass},
			{MetricKey: "c", Status: StatusPass},
		}
		checks[flip].Status = StatusFail
		checks[flip].Reason = "over budget"

		result := NewResult("release", checks)
		assert.Equal(t, StatusFail, result.Status, "flipped check %d", flip)
		assert.Equal(t, []string{"over budget"}, result.Reasons)
	}
}

func TestNewResult_CollectsAllReasons(t *testing.T) {
	checks := []Check{
		{MetricKey: "a", Status: StatusFail, Reason: "a over budget"},
		{MetricKey: "b", Status: StatusPass},
		{MetricKey: "c", Status: StatusFail, Reason: "c over budget"},
	}

	result := NewResult("release", checks)
	assert.Equal(t, []string{"a over budget", "c over budget"}, result.Reasons)
}

func TestNewResult_EmptyGateFails(t *testing.T) {
	result := NewResult("release", nil)
	assert.Equal(t, StatusFail, result.Status)
	assert.Equal(t, []string{"gate has no checks"}, result.Reasons)
}

func TestNewResult_MissingCheckGetsDefaultReason(t *testing.T) {
	result := NewResult("release", []Check{{MetricKey: "a", Status: StatusMissing}})
	assert.Equal(t, StatusFail, result.Status)
	assert.Equal(t, []string{"check a is MISSING"}, result.Reasons)
}
