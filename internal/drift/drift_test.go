package drift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireparity/wireparity/internal/scenario"
)

func docs(values ...scenario.Value) []scenario.Document {
	out := make([]scenario.Document, len(values))
	for i, v := range values {
		out[i] = scenario.Document{"x": v}
	}
	return out
}

func TestScoreCollection_IdenticalSnapshots(t *testing.T) {
	snapshot := docs(scenario.String("a"), scenario.String("b"), scenario.Int(1))

	drift, err := ScoreCollection("users", snapshot, snapshot, Config{})
	require.NoError(t, err)

	assert.Zero(t, drift.Score)
	assert.Equal(t, BucketOK, drift.Bucket)
	assert.Equal(t, 3, drift.BaselineRows)
	assert.Equal(t, 3, drift.CurrentRows)
}

func TestScoreCollection_RowCountShrink(t *testing.T) {
	baseline := docs(scenario.Int(1), scenario.Int(1), scenario.Int(1), scenario.Int(1))
	current := docs(scenario.Int(1), scenario.Int(1))

	drift, err := ScoreCollection("users", baseline, current, Config{})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, drift.RowCountDelta, 1e-9)
	// Only the row-count term contributes: 0.4 * 0.5.
	assert.InDelta(t, 0.2, drift.Score, 1e-9)
	assert.Equal(t, BucketOK, drift.Bucket)
}

func TestScoreCollection_NullRatioShift(t *testing.T) {
	baseline := docs(scenario.Int(1), scenario.Int(1), scenario.Int(1), scenario.Int(1))
	current := docs(scenario.Int(1), scenario.Int(1), scenario.Null{}, scenario.Null{})

	drift, err := ScoreCollection("users", baseline, current, Config{})
	require.NoError(t, err)

	require.Len(t, drift.Fields, 1)
	assert.InDelta(t, 0.5, drift.Fields[0].NullDelta, 1e-9)
	// 0.2 * 0.5 from the null term.
	assert.InDelta(t, 0.1, drift.Score, 1e-9)
}

func TestScoreCollection_MissingKeyCountsAsNull(t *testing.T) {
	baseline := []scenario.Document{
		{"x": scenario.Int(1)},
		{"x": scenario.Null{}},
	}
	current := []scenario.Document{
		{"x": scenario.Int(1)},
		{}, // key absent entirely
	}

	drift, err := ScoreCollection("users", baseline, current, Config{})
	require.NoError(t, err)

	require.Len(t, drift.Fields, 1)
	assert.Zero(t, drift.Fields[0].NullDelta, "explicit null and missing key count the same")
	assert.Zero(t, drift.Score)
}

func TestScoreCollection_DistributionShift(t *testing.T) {
	baseline := docs(scenario.String("a"), scenario.String("a"), scenario.String("a"), scenario.String("a"))
	current := docs(scenario.String("a"), scenario.String("a"), scenario.String("b"), scenario.String("b"))

	drift, err := ScoreCollection("users", baseline, current, Config{})
	require.NoError(t, err)

	require.Len(t, drift.Fields, 1)
	fd := drift.Fields[0]
	// TVD between {a:1.0} and {a:0.5, b:0.5} is 0.5.
	assert.InDelta(t, 0.5, fd.DistributionDelta, 1e-9)
	// Cardinality moved from 1 distinct value to 2.
	assert.InDelta(t, 0.5, fd.CardinalityDelta, 1e-9)
	assert.InDelta(t, 0.2, drift.Score, 1e-9)
}

func TestScoreCollection_WarnBucket(t *testing.T) {
	baseline := docs(scenario.String("a"), scenario.String("a"), scenario.String("a"), scenario.String("a"))
	current := docs(scenario.String("b"), scenario.String("b"))

	drift, err := ScoreCollection("users", baseline, current, Config{})
	require.NoError(t, err)

	// 0.4*0.5 (rows) + 0.2*1.0 (TVD between disjoint singletons).
	assert.InDelta(t, 0.4, drift.Score, 1e-9)
	assert.Equal(t, BucketWarn, drift.Bucket)
}

func TestScoreCollection_EmptiedCollectionFails(t *testing.T) {
	baseline := docs(scenario.String("a"), scenario.String("a"), scenario.String("a"), scenario.String("a"))

	drift, err := ScoreCollection("users", baseline, nil, Config{})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, drift.RowCountDelta, 1e-9)
	assert.Equal(t, BucketFail, drift.Bucket)
}

func TestScoreCollection_NumericValuesCompareCanonically(t *testing.T) {
	// 2 and 2.00 are distinct canonical texts, so they land in different
	// histogram buckets; drift scoring is representation-sensitive on
	// purpose, fixture generators should be byte-stable.
	baseline := docs(scenario.Number("2"))
	current := docs(scenario.Number("2.00"))

	drift, err := ScoreCollection("users", baseline, current, Config{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, drift.Fields[0].DistributionDelta, 1e-9)
}

func TestScoreCollection_CustomThresholds(t *testing.T) {
	baseline := docs(scenario.Int(1), scenario.Int(1), scenario.Int(1), scenario.Int(1))
	current := docs(scenario.Int(1), scenario.Int(1))

	drift, err := ScoreCollection("users", baseline, current, Config{WarnThreshold: 0.1, FailThreshold: 0.15})
	require.NoError(t, err)
	assert.Equal(t, BucketFail, drift.Bucket)
}

func TestScoreCollection_Invalid(t *testing.T) {
	_, err := ScoreCollection("", nil, nil, Config{})
	assert.ErrorContains(t, err, "collection name is required")

	_, err = ScoreCollection("users", nil, nil, Config{WarnThreshold: 0.6, FailThreshold: 0.5})
	assert.ErrorContains(t, err, "invalid thresholds")
}

func TestScoreCollection_FieldsSorted(t *testing.T) {
	baseline := []scenario.Document{{"zeta": scenario.Int(1), "alpha": scenario.Int(2)}}

	drift, err := ScoreCollection("users", baseline, baseline, Config{})
	require.NoError(t, err)

	require.Len(t, drift.Fields, 2)
	assert.Equal(t, "alpha", drift.Fields[0].Field)
	assert.Equal(t, "zeta", drift.Fields[1].Field)
}
