package validation

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
)

// Table names stamped into log entries.
const (
	TableBuildings = "buildings"
	TableHazard    = "hazard"
	TableLosses    = "losses"
	TableAAL       = "aal_losses"
)

// midRiseOccupancies are multifamily classes expected to be 4-7 stories.
var midRiseOccupancies = map[string]bool{
	"RES3E": true,
	"RES3F": true,
}

// Dataset exposes the analysis working tables to checks. Fields a check
// needs may be empty when it runs before the producing stage; checks treat
// missing data as nothing-to-report.
type Dataset struct {
	Buildings   []domain.Building
	Hazard      []domain.HazardRecord
	Unmatched   []string // building IDs with no surviving crosswalk rule
	Losses      []domain.Loss
	AAL         []domain.AALResult
	TypicalArea map[string]float64 // expected square footage by occupancy code
}

func (d *Dataset) building(id string) (domain.Building, bool) {
	for _, b := range d.Buildings {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Building{}, false
}

// Finding is one rule hit before it is stamped into the log.
type Finding struct {
	BuildingID string
	Table      string
	Message    string
}

// Check is one declarative validation rule.
type Check struct {
	Rule   string
	Source string
	Run    func(ds *Dataset) ([]Finding, error)
}

// Run executes checks in order, appending findings to the log. A check that
// returns an error is skipped with a debug log line; validation never fails
// the run.
func Run(ds *Dataset, checks []Check, log *Log, logger *slog.Logger) {
	for _, c := range checks {
		findings, err := c.Run(ds)
		if err != nil {
			logger.Debug("validation check skipped", "rule", c.Rule, "source", c.Source, "error", err)
			continue
		}
		for _, f := range findings {
			log.Append(c.Source, c.Rule, f.Table, f.BuildingID, f.Message)
		}
	}
}

// BuildingChecks validates the normalized inventory.
func BuildingChecks() []Check {
	return []Check{
		{
			Rule:   "MISSING_BUILDING_COST",
			Source: SourceBuilding,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, b := range ds.Buildings {
					if b.StructureCost == 0 {
						out = append(out, Finding{
							BuildingID: b.ID,
							Table:      TableBuildings,
							Message:    "structure replacement cost missing; losses will be omitted",
						})
					}
				}
				return out, nil
			},
		},
		{
			Rule:   "NON_POSITIVE_BUILDING_COST",
			Source: SourceBuilding,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, b := range ds.Buildings {
					if b.StructureCost < 0 {
						out = append(out, Finding{
							BuildingID: b.ID,
							Table:      TableBuildings,
							Message:    fmt.Sprintf("structure replacement cost %.2f is negative", b.StructureCost),
						})
					}
				}
				return out, nil
			},
		},
		{
			Rule:   "MISSING_OCCUPANCY_TYPE",
			Source: SourceBuilding,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, b := range ds.Buildings {
					if b.OccupancyType == "" {
						out = append(out, Finding{
							BuildingID: b.ID,
							Table:      TableBuildings,
							Message:    "occupancy type missing; building cannot match any damage function",
						})
					}
				}
				return out, nil
			},
		},
		{
			Rule:   "UNUSUAL_AREA_OR_VALUATION",
			Source: SourceBuilding,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, b := range ds.Buildings {
					typical, ok := ds.TypicalArea[b.OccupancyType]
					if !ok || typical <= 0 || b.Area <= 0 {
						continue
					}
					if b.Area > 5*typical {
						out = append(out, Finding{
							BuildingID: b.ID,
							Table:      TableBuildings,
							Message: fmt.Sprintf("area %.0f sqft exceeds 5x the typical %.0f sqft for %s",
								b.Area, typical, b.OccupancyType),
						})
					}
				}
				return out, nil
			},
		},
		{
			Rule:   "UNUSUAL_STORY_COUNT_RES1",
			Source: SourceBuilding,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, b := range ds.Buildings {
					if b.OccupancyType == "RES1" && b.NumStories > 3 {
						out = append(out, Finding{
							BuildingID: b.ID,
							Table:      TableBuildings,
							Message:    fmt.Sprintf("single-family residence with %d stories", b.NumStories),
						})
					}
				}
				return out, nil
			},
		},
		{
			Rule:   "UNUSUAL_STORY_COUNT_MID_RISE",
			Source: SourceBuilding,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, b := range ds.Buildings {
					if !midRiseOccupancies[b.OccupancyType] || b.NumStories == 0 {
						continue
					}
					if b.NumStories < 4 || b.NumStories > 7 {
						out = append(out, Finding{
							BuildingID: b.ID,
							Table:      TableBuildings,
							Message: fmt.Sprintf("mid-rise occupancy %s with %d stories (expected 4-7)",
								b.OccupancyType, b.NumStories),
						})
					}
				}
				return out, nil
			},
		},
	}
}

// depthThreshold is the plausibility ceiling in feet for a return period.
// Frequent events should not produce extreme depths.
func depthThreshold(returnPeriod int) float64 {
	switch {
	case returnPeriod <= 25:
		return 10
	case returnPeriod <= 100:
		return 25
	default:
		return 50
	}
}

// HazardChecks validates the hazard table.
func HazardChecks() []Check {
	return []Check{
		{
			Rule:   "DEPTH_INVALID",
			Source: SourceHazard,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, h := range ds.Hazard {
					if math.IsNaN(h.DepthMean) || h.DepthMean < 0 || math.IsNaN(h.DepthStdDev) || h.DepthStdDev < 0 {
						out = append(out, Finding{
							BuildingID: h.BuildingID,
							Table:      TableHazard,
							Message: fmt.Sprintf("rp=%d depth mean %g std %g is not a valid depth",
								h.ReturnPeriod, h.DepthMean, h.DepthStdDev),
						})
					}
				}
				return out, nil
			},
		},
		{
			Rule:   "DEPTH_IMPLAUSIBLE",
			Source: SourceHazard,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, h := range ds.Hazard {
					limit := depthThreshold(h.ReturnPeriod)
					if !math.IsNaN(h.DepthMean) && h.DepthMean > limit {
						out = append(out, Finding{
							BuildingID: h.BuildingID,
							Table:      TableHazard,
							Message: fmt.Sprintf("rp=%d depth %.2f ft exceeds the %.0f ft plausibility limit",
								h.ReturnPeriod, h.DepthMean, limit),
						})
					}
				}
				return out, nil
			},
		},
		{
			Rule:   "VELOCITY_INVALID",
			Source: SourceHazard,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, h := range ds.Hazard {
					if math.IsNaN(h.Velocity) || h.Velocity < 0 {
						out = append(out, Finding{
							BuildingID: h.BuildingID,
							Table:      TableHazard,
							Message:    fmt.Sprintf("rp=%d velocity %g ft/s is not valid", h.ReturnPeriod, h.Velocity),
						})
					}
				}
				return out, nil
			},
		},
		{
			Rule:   "DEPTH_DECREASES_WITH_RETURN_PERIOD",
			Source: SourceHazard,
			Run: func(ds *Dataset) ([]Finding, error) {
				// Index depths per building ordered by return period.
				type key struct {
					id string
					rp int
				}
				depths := make(map[key]float64, len(ds.Hazard))
				periods := make(map[string][]int)
				for _, h := range ds.Hazard {
					depths[key{h.BuildingID, h.ReturnPeriod}] = h.DepthMean
					periods[h.BuildingID] = append(periods[h.BuildingID], h.ReturnPeriod)
				}

				var out []Finding
				for _, b := range ds.Buildings {
					rps := periods[b.ID]
					sort.Ints(rps)
					for i := 1; i < len(rps); i++ {
						prev := depths[key{b.ID, rps[i-1]}]
						cur := depths[key{b.ID, rps[i]}]
						if !math.IsNaN(prev) && !math.IsNaN(cur) && cur < prev {
							out = append(out, Finding{
								BuildingID: b.ID,
								Table:      TableHazard,
								Message: fmt.Sprintf("depth drops from %.2f ft at rp=%d to %.2f ft at rp=%d",
									prev, rps[i-1], cur, rps[i]),
							})
						}
					}
				}
				return out, nil
			},
		},
	}
}

// MatchingChecks reports buildings no crosswalk rule survived for.
func MatchingChecks() []Check {
	return []Check{
		{
			Rule:   "NO_DAMAGE_FUNCTION_MATCH",
			Source: SourceMatching,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, id := range ds.Unmatched {
					msg := "no crosswalk rule matched"
					if b, ok := ds.building(id); ok {
						msg = fmt.Sprintf("no crosswalk rule matched occupancy %q foundation %q",
							b.OccupancyType, string(b.FoundationType))
					}
					out = append(out, Finding{BuildingID: id, Table: TableBuildings, Message: msg})
				}
				return out, nil
			},
		},
	}
}

// ResultChecks validates monetized losses and AAL figures against
// replacement costs.
func ResultChecks() []Check {
	return []Check{
		{
			Rule:   "LOSS_RATIO_EXCEEDS_100",
			Source: SourceResults,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, l := range ds.Losses {
					b, ok := ds.building(l.BuildingID)
					if !ok {
						continue
					}
					cost := b.Cost(l.Category)
					if cost > 0 && l.LossMax > cost {
						out = append(out, Finding{
							BuildingID: l.BuildingID,
							Table:      TableLosses,
							Message: fmt.Sprintf("%s loss max %.2f exceeds replacement cost %.2f at rp=%d",
								l.Category, l.LossMax, cost, l.ReturnPeriod),
						})
					}
				}
				return out, nil
			},
		},
		{
			Rule:   "HIGH_10YR_LOSS",
			Source: SourceResults,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, l := range ds.Losses {
					if l.ReturnPeriod > 10 {
						continue
					}
					b, ok := ds.building(l.BuildingID)
					if !ok {
						continue
					}
					cost := b.Cost(l.Category)
					if cost > 0 && l.LossMean > 0.5*cost {
						out = append(out, Finding{
							BuildingID: l.BuildingID,
							Table:      TableLosses,
							Message: fmt.Sprintf("%s loss %.2f at rp=%d exceeds half the replacement cost %.2f",
								l.Category, l.LossMean, l.ReturnPeriod, cost),
						})
					}
				}
				return out, nil
			},
		},
		{
			Rule:   "HIGH_AAL_LOSS_RATIO",
			Source: SourceResults,
			Run: func(ds *Dataset) ([]Finding, error) {
				var out []Finding
				for _, a := range ds.AAL {
					b, ok := ds.building(a.BuildingID)
					if !ok {
						continue
					}
					cost := b.Cost(a.Category)
					if cost > 0 && a.AALMean > 0.1*cost {
						out = append(out, Finding{
							BuildingID: a.BuildingID,
							Table:      TableAAL,
							Message: fmt.Sprintf("%s AAL %.2f exceeds 10%% of replacement cost %.2f",
								a.Category, a.AALMean, cost),
						})
					}
				}
				return out, nil
			},
		},
		{
			Rule:   "MISSING_LOSS_ROW",
			Source: SourceResults,
			Run: func(ds *Dataset) ([]Finding, error) {
				hasLoss := make(map[string]bool, len(ds.Losses))
				for _, l := range ds.Losses {
					hasLoss[l.BuildingID] = true
				}
				unmatched := make(map[string]bool, len(ds.Unmatched))
				for _, id := range ds.Unmatched {
					unmatched[id] = true
				}

				var out []Finding
				for _, b := range ds.Buildings {
					if hasLoss[b.ID] || unmatched[b.ID] {
						continue
					}
					out = append(out, Finding{
						BuildingID: b.ID,
						Table:      TableLosses,
						Message:    "building matched a damage function but produced no loss row (missing replacement cost)",
					})
				}
				return out, nil
			},
		},
	}
}
