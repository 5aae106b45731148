package domain

// Loss is the monetized damage for one building, cost category, and return
// period. LossMin/LossMax carry the positional convention of the underlying
// DamageStatistic.
type Loss struct {
	BuildingID   string
	Category     CostCategory
	ReturnPeriod int
	LossMean     float64 // dollars
	LossStd      float64
	LossMin      float64
	LossMax      float64
}

// MonetizeLoss converts a damage statistic into dollar losses against a
// replacement cost.
func MonetizeLoss(cat CostCategory, cost float64, s DamageStatistic) Loss {
	scale := cost / 100
	return Loss{
		BuildingID:   s.BuildingID,
		Category:     cat,
		ReturnPeriod: s.ReturnPeriod,
		LossMean:     s.DamagePercentMean * scale,
		LossStd:      s.DamagePercentStd * scale,
		LossMin:      s.DMin * scale,
		LossMax:      s.DMax * scale,
	}
}
