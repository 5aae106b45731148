package domain

// CurvePoint is one breakpoint of a depth-damage function.
type CurvePoint struct {
	Depth  float64 // feet relative to the first floor
	Damage float64 // percent of replacement value, 0-100
}

// Curve is a piecewise-linear depth-damage function. Points are ascending by
// depth (the loader sorts them).
type Curve struct {
	ID      int
	Comment string
	Points  []CurvePoint
}

// DamageAt evaluates the curve at the given depth. Depths below the first
// breakpoint return 0; depths at or above the last breakpoint clamp to the
// final damage value. An empty curve evaluates to 0.
func (c Curve) DamageAt(depth float64) float64 {
	pts := c.Points
	if len(pts) == 0 || depth < pts[0].Depth {
		return 0
	}

	last := pts[len(pts)-1]
	if depth >= last.Depth {
		return last.Damage
	}

	for i := 1; i < len(pts); i++ {
		if depth > pts[i].Depth {
			continue
		}
		lo, hi := pts[i-1], pts[i]
		if hi.Depth == lo.Depth {
			return hi.Damage
		}
		frac := (depth - lo.Depth) / (hi.Depth - lo.Depth)
		return lo.Damage + frac*(hi.Damage-lo.Damage)
	}
	return last.Damage
}

// DamageSample is a curve evaluated at the mean structure depth and at one
// standard deviation either side. Min and Max are positional (mean−σ and
// mean+σ), not sorted.
type DamageSample struct {
	Mean float64
	Min  float64
	Max  float64
}

// Sample evaluates the curve at depthMean and depthMean±depthStd. Depths are
// relative to the first floor, so callers subtract first-floor height first.
func (c Curve) Sample(depthMean, depthStd float64) DamageSample {
	return DamageSample{
		Mean: c.DamageAt(depthMean),
		Min:  c.DamageAt(depthMean - depthStd),
		Max:  c.DamageAt(depthMean + depthStd),
	}
}
