package drift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireparity/wireparity/internal/diff"
)

func entries(n int) []diff.Entry {
	out := make([]diff.Entry, n)
	for i := range out {
		out[i] = diff.Entry{Path: "$.a", Left: "1", Right: "2", Note: "value mismatch"}
	}
	return out
}

func rankedReport() *diff.Report {
	return &diff.Report{
		LeftBackend:  "left",
		RightBackend: "right",
		Results: []diff.Result{
			diff.Match("m1", "left", "right"),
			diff.Mismatch("small", "left", "right", entries(1)),
			diff.Mismatch("big", "left", "right", entries(5)),
			diff.Error("fault", "left", "right", "backend down"),
			diff.Mismatch("also_small", "left", "right", entries(1)),
		},
	}
}

func TestTopRegressions_Ranking(t *testing.T) {
	samples := TopRegressions(rankedReport(), 10)

	require.Len(t, samples, 4)
	// ERROR first, then entry count descending, then id ascending.
	assert.Equal(t, "fault", samples[0].ScenarioID)
	assert.Equal(t, "big", samples[1].ScenarioID)
	assert.Equal(t, "also_small", samples[2].ScenarioID)
	assert.Equal(t, "small", samples[3].ScenarioID)
}

func TestTopRegressions_Truncation(t *testing.T) {
	samples := TopRegressions(rankedReport(), 2)

	require.Len(t, samples, 2)
	assert.Equal(t, "fault", samples[0].ScenarioID)
	assert.Equal(t, "big", samples[1].ScenarioID)
}

func TestTopRegressions_SampleFields(t *testing.T) {
	report := &diff.Report{
		Results: []diff.Result{
			diff.Mismatch("s1", "left", "right", []diff.Entry{
				{Path: "$.commandResults[0].n", Left: "3", Right: "2", Note: "value mismatch"},
				{Path: "$.commandResults[0].ok", Left: "1", Right: "0", Note: "value mismatch"},
			}),
			diff.Error("s2", "left", "right", "left backend: connection reset"),
		},
	}

	samples := TopRegressions(report, 10)
	require.Len(t, samples, 2)

	assert.Equal(t, "s2", samples[0].ScenarioID)
	assert.Equal(t, "left backend: connection reset", samples[0].ErrorMessage)
	assert.Empty(t, samples[0].FirstPath)

	assert.Equal(t, "s1", samples[1].ScenarioID)
	assert.Equal(t, 2, samples[1].EntryCount)
	assert.Equal(t, "$.commandResults[0].n", samples[1].FirstPath)
	assert.Equal(t, "value mismatch", samples[1].FirstNote)
}

func TestTopRegressions_AllMatch(t *testing.T) {
	report := &diff.Report{
		Results: []diff.Result{diff.Match("s1", "left", "right")},
	}
	assert.Empty(t, TopRegressions(report, 10))
}

func TestTopRegressions_NonPositiveK(t *testing.T) {
	assert.Nil(t, TopRegressions(rankedReport(), 0))
	assert.Nil(t, TopRegressions(rankedReport(), -1))
}
