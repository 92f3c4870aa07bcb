package flake

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureReproTime(t *testing.T) {
	calls := 0
	report, err := MeasureReproTime(context.Background(), func(context.Context) error {
		calls++
		return nil
	}, 5)
	require.NoError(t, err)

	assert.Equal(t, 5, calls)
	assert.Equal(t, 5, report.Samples)
	assert.Len(t, report.DurationsMS, 5)
}

func TestMeasureReproTime_Errors(t *testing.T) {
	_, err := MeasureReproTime(context.Background(), func(context.Context) error { return nil }, 0)
	assert.ErrorContains(t, err, "must be positive")

	_, err = MeasureReproTime(context.Background(), func(context.Context) error {
		return errors.New("trace no longer reproduces")
	}, 3)
	assert.ErrorContains(t, err, "sample 1")
}

func TestPercentile(t *testing.T) {
	samples := []float64{50, 10, 40, 20, 30}

	cases := []struct {
		p    float64
		want float64
	}{
		{0.1, 10},
		{0.2, 10},
		{0.5, 30},
		{0.6, 30},
		{0.61, 40},
		{0.9, 50},
		{1.0, 50},
	}
	for _, tc := range cases {
		got, err := Percentile(samples, tc.p)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "p=%v", tc.p)
	}
}

func TestPercentile_SingleSample(t *testing.T) {
	got, err := Percentile([]float64{42}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)
}

func TestPercentile_DoesNotMutateInput(t *testing.T) {
	samples := []float64{3, 1, 2}
	_, err := Percentile(samples, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, samples)
}

func TestPercentile_Invalid(t *testing.T) {
	_, err := Percentile(nil, 0.5)
	assert.ErrorContains(t, err, "at least one sample")

	for _, p := range []float64{0, -0.1, 1.01, math.NaN()} {
		_, err := Percentile([]float64{1}, p)
		assert.ErrorContains(t, err, "percentile must be in (0, 1]", "p=%v", p)
	}

	for _, s := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Percentile([]float64{1, s}, 0.5)
		assert.ErrorContains(t, err, "not finite", "sample=%v", s)
	}
}
