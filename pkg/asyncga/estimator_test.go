package asyncga

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCumulativeAverageUsesPopulationVariance(t *testing.T) {
	acc, err := NewAccumulator(FitnessSquare)
	require.NoError(t, err)

	var f Fitness
	for _, v := range []float64{1, 2, 3, 4, 5} {
		f = acc.Add(v)
	}
	require.InDelta(t, 3.0, f.Mean, 1e-12)
	require.InDelta(t, 2.0, f.Variance, 1e-9)
}

func TestMovingAverageConvergesOnConstant(t *testing.T) {
	acc, err := NewAccumulator(FitnessMoving)
	require.NoError(t, err)

	var f Fitness
	for range 50 {
		f = acc.Add(7.5)
	}
	require.InDelta(t, 7.5, f.Mean, 1e-3)
}

func TestMovingAverageTracksDrift(t *testing.T) {
	acc := &MovingAverage{}
	for range 200 {
		acc.Add(0)
	}
	var f Fitness
	for range 1000 {
		f = acc.Add(10)
	}
	require.Greater(t, f.Mean, 9.0)
}

func TestParseFitnessMode(t *testing.T) {
	mode, err := ParseFitnessMode("")
	require.NoError(t, err)
	require.Equal(t, FitnessMoving, mode)

	mode, err = ParseFitnessMode(" Square ")
	require.NoError(t, err)
	require.Equal(t, FitnessSquare, mode)

	_, err = ParseFitnessMode("median")
	require.True(t, errors.Is(err, ErrConfiguration))
}
