package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDamageStatistic(t *testing.T) {
	t.Run("symmetric sample", func(t *testing.T) {
		s := NewDamageStatistic("b-1", 100, DamageSample{Mean: 10, Min: 5, Max: 15})

		assert.Equal(t, "b-1", s.BuildingID)
		assert.Equal(t, 100, s.ReturnPeriod)
		assert.Equal(t, 10.0, s.DamagePercent)
		assert.Equal(t, 5.0, s.DMin)
		assert.Equal(t, 15.0, s.DMax)
		assert.InDelta(t, 10.0, s.DMode, 1e-9)
		// Symmetric bounds cancel the skew correction.
		assert.InDelta(t, 10.0, s.DamagePercentMean, 1e-9)
		assert.InDelta(t, 5.0, s.DamagePercentStd, 1e-9)
		assert.InDelta(t, math.Sqrt(75.0/18.0), s.TriangularStdDev, 1e-9)
		assert.InDelta(t, 2.5, s.RangeStdDev, 1e-9)
	})

	t.Run("skewed sample clamps the mode", func(t *testing.T) {
		s := NewDamageStatistic("b-2", 50, DamageSample{Mean: 2, Min: 1, Max: 6})

		// Raw mode 3·2 − 1 − 6 = −1 clamps to the lower bound.
		assert.Equal(t, 1.0, s.DMode)
		assert.InDelta(t, 2+3*invSqrt2Pi, s.DamagePercentMean, 1e-9)
		assert.InDelta(t, 2.5, s.DamagePercentStd, 1e-9)
		assert.InDelta(t, math.Sqrt(25.0/18.0), s.TriangularStdDev, 1e-9)
	})

	t.Run("inverted positional bounds survive", func(t *testing.T) {
		s := NewDamageStatistic("b-3", 100, DamageSample{Mean: 50, Min: 80, Max: 20})

		assert.Equal(t, 80.0, s.DMin)
		assert.Equal(t, 20.0, s.DMax)
		// The clamp stays positional: min(20, 50) = 20, then max(80, 20) = 80.
		assert.InDelta(t, 80.0, s.DMode, 1e-9)
		assert.InDelta(t, 50.0, s.DamagePercentMean, 1e-9)
		assert.InDelta(t, 30.0, s.DamagePercentStd, 1e-9)
		assert.InDelta(t, -15.0, s.RangeStdDev, 1e-9)
		assert.InDelta(t, math.Sqrt(200.0), s.TriangularStdDev, 1e-9)
		assert.False(t, math.IsNaN(s.TriangularStdDev))
	})

	t.Run("degenerate sample has undefined range std", func(t *testing.T) {
		s := NewDamageStatistic("b-4", 10, DamageSample{Mean: 30, Min: 30, Max: 30})

		assert.True(t, math.IsNaN(s.RangeStdDev))
		assert.Equal(t, 0.0, s.DamagePercentStd)
		assert.Equal(t, 0.0, s.TriangularStdDev)
		assert.Equal(t, 30.0, s.DMode)
	})
}

func TestBlendSamples(t *testing.T) {
	t.Run("weighted average in percent space", func(t *testing.T) {
		blended := BlendSamples([]WeightedSample{
			{Weight: 0.75, Sample: DamageSample{Mean: 20, Min: 10, Max: 30}},
			{Weight: 0.25, Sample: DamageSample{Mean: 40, Min: 20, Max: 60}},
		})

		assert.InDelta(t, 25.0, blended.Mean, 1e-9)
		assert.InDelta(t, 12.5, blended.Min, 1e-9)
		assert.InDelta(t, 37.5, blended.Max, 1e-9)
	})

	t.Run("single full-weight sample passes through", func(t *testing.T) {
		in := DamageSample{Mean: 12, Min: 8, Max: 16}
		blended := BlendSamples([]WeightedSample{{Weight: 1, Sample: in}})
		assert.Equal(t, in, blended)
	})

	t.Run("no samples blend to zero", func(t *testing.T) {
		assert.Equal(t, DamageSample{}, BlendSamples(nil))
	})
}
