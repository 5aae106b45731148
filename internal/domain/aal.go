package domain

import "sort"

// AALResult is the average annual loss for one building and cost category,
// integrated separately per loss statistic.
type AALResult struct {
	BuildingID string
	Category   CostCategory
	AALMean    float64
	AALStd     float64
	AALMin     float64
	AALMax     float64
}

// IntegrateAAL computes average annual loss by trapezoidal integration of
// the loss-exceedance curve over p = 1/return_period, sorted by descending
// probability and truncated at the largest modeled return period. Losses
// with a non-positive return period are dropped; fewer than two usable
// points yield an all-zero result rather than an error.
func IntegrateAAL(buildingID string, cat CostCategory, losses []Loss) AALResult {
	out := AALResult{BuildingID: buildingID, Category: cat}

	usable := make([]Loss, 0, len(losses))
	for _, l := range losses {
		if l.ReturnPeriod > 0 {
			usable = append(usable, l)
		}
	}
	if len(usable) < 2 {
		return out
	}

	// Ascending return period is descending exceedance probability.
	sort.Slice(usable, func(i, j int) bool {
		return usable[i].ReturnPeriod < usable[j].ReturnPeriod
	})

	for i := 0; i < len(usable)-1; i++ {
		a, b := usable[i], usable[i+1]
		dp := 1/float64(a.ReturnPeriod) - 1/float64(b.ReturnPeriod)
		out.AALMean += dp * (a.LossMean + b.LossMean) / 2
		out.AALStd += dp * (a.LossStd + b.LossStd) / 2
		out.AALMin += dp * (a.LossMin + b.LossMin) / 2
		out.AALMax += dp * (a.LossMax + b.LossMax) / 2
	}
	return out
}
