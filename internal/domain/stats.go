package domain

import "math"

// invSqrt2Pi is 1/sqrt(2π), the weight on the skew correction when estimating
// the mean of the triangular damage distribution from its three parameters.
const invSqrt2Pi = 0.3989422804014327

// DamageStatistic summarizes the damage distribution for one building and
// return period. DMin and DMax are positional curve evaluations (mean depth
// minus/plus one sigma) and are reported exactly as evaluated, even when a
// non-monotonic curve yields DMin > DMax.
type DamageStatistic struct {
	BuildingID    string
	ReturnPeriod  int
	DamagePercent float64 // curve at the mean structure depth
	DMin          float64
	DMax          float64
	DMode         float64

	DamagePercentMean float64
	DamagePercentStd  float64
	TriangularStdDev  float64
	RangeStdDev       float64 // NaN when DMin == DMax (range statistic undefined)
}

// NewDamageStatistic derives triangular-distribution statistics from the
// three curve evaluations:
//
//	mode  = max(min, min(max, 3·mean − min − max))
//	μ     = mean + (min + max − 2·mean)/√(2π)
//	σ     = |max − min| / 2
//	σ_tri = sqrt((min² + max² + mode² − min·max − min·mode − max·mode) / 18)
//	σ_rng = (max − min) / 4, undefined when max == min
//
// The mode clamp is positional: when a non-monotonic curve yields min > max,
// the bounds keep their evaluation order and the clamp collapses to min.
func NewDamageStatistic(buildingID string, returnPeriod int, s DamageSample) DamageStatistic {
	mode := 3*s.Mean - s.Min - s.Max
	mode = math.Max(s.Min, math.Min(s.Max, mode))

	triVar := (s.Min*s.Min + s.Max*s.Max + mode*mode -
		s.Min*s.Max - s.Min*mode - s.Max*mode) / 18

	rangeStd := math.NaN()
	if s.Max != s.Min {
		rangeStd = (s.Max - s.Min) / 4
	}

	return DamageStatistic{
		BuildingID:    buildingID,
		ReturnPeriod:  returnPeriod,
		DamagePercent: s.Mean,
		DMin:          s.Min,
		DMax:          s.Max,
		DMode:         mode,

		DamagePercentMean: s.Mean + (s.Min+s.Max-2*s.Mean)*invSqrt2Pi,
		DamagePercentStd:  math.Abs(s.Max-s.Min) / 2,
		TriangularStdDev:  math.Sqrt(math.Max(0, triVar)),
		RangeStdDev:       rangeStd,
	}
}

// WeightedSample is one curve's evaluation scaled by its assignment weight.
type WeightedSample struct {
	Weight float64
	Sample DamageSample
}

// BlendSamples combines per-curve evaluations for a building matched to
// multiple damage functions. The weighted average is taken in damage-percent
// space before statistics are derived; weights are expected to sum to 1.
func BlendSamples(samples []WeightedSample) DamageSample {
	var out DamageSample
	for _, ws := range samples {
		out.Mean += ws.Weight * ws.Sample.Mean
		out.Min += ws.Weight * ws.Sample.Min
		out.Max += ws.Weight * ws.Sample.Max
	}
	return out
}
