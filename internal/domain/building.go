package domain

// CostCategory identifies which replacement cost a loss is computed against.
type CostCategory string

const (
	CategoryStructure CostCategory = "structure"
	CategoryContents  CostCategory = "contents"
	CategoryInventory CostCategory = "inventory"
)

// Building is one structure from a normalized inventory. Zero values mark
// unknown attributes: empty string for codes, 0 for counts, areas, and costs.
type Building struct {
	ID               string
	OccupancyType    string // e.g. "RES1", "COM1"; suffixes like "-1SNB" stripped on load
	ConstructionType string
	FoundationType   Foundation // single-letter NSI code
	NumStories       int
	Area             float64 // square feet
	StructureCost    float64 // replacement cost, dollars
	ContentCost      float64
	InventoryCost    float64
	FirstFloorHeight float64 // feet above grade
	FFHStdDev        float64 // first-floor-height uncertainty, feet
	FloodPerilType   string  // peril code used as a crosswalk key, e.g. "FLUV"
}

// Cost returns the building's replacement cost for the given category.
func (b Building) Cost(cat CostCategory) float64 {
	switch cat {
	case CategoryContents:
		return b.ContentCost
	case CategoryInventory:
		return b.InventoryCost
	default:
		return b.StructureCost
	}
}

// HazardRecord is one building's flood hazard at one return period.
// Velocity and Duration are passthrough columns: they are validated and
// reported but do not enter the damage calculation.
type HazardRecord struct {
	BuildingID   string
	ReturnPeriod int     // years
	DepthMean    float64 // feet above grade
	DepthStdDev  float64
	Velocity     float64 // ft/s, 0 when not modeled
	Duration     float64 // hours, 0 when not modeled
}
