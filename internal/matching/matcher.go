package matching

import (
	"sort"
	"strings"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
)

// Attr identifies a matchable building attribute. Attrs combine as a bit set
// naming attributes the matcher should treat as wildcards regardless of what
// the building or crosswalk says.
type Attr uint8

const (
	AttrOccupancyType Attr = 1 << iota
	AttrConstructionType
	AttrFoundationType
	AttrStories
	AttrArea
	AttrFloodPerilType
)

// Has reports whether the set includes the given attribute.
func (a Attr) Has(flag Attr) bool { return a&flag != 0 }

var attrNames = map[string]Attr{
	"occupancy_type":    AttrOccupancyType,
	"construction_type": AttrConstructionType,
	"foundation_type":   AttrFoundationType,
	"stories":           AttrStories,
	"area":              AttrArea,
	"flood_peril_type":  AttrFloodPerilType,
}

// ParseAttrs converts a comma-separated attribute list (as accepted in
// configuration, e.g. "construction_type,area") into a bit set. Unknown
// names are reported back to the caller rather than silently dropped.
func ParseAttrs(list string) (Attr, []string) {
	var set Attr
	var unknown []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		flag, ok := attrNames[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		set |= flag
	}
	return set, unknown
}

// Assignment links a building to one damage function. Weight is the share of
// surviving crosswalk rows that map to this function; the weights for a
// building always sum to 1.
type Assignment struct {
	BuildingID       string
	DamageFunctionID int
	FirstFloorHeight float64
	FFHStdDev        float64
	Weight           float64
}

// Matcher matches buildings against one crosswalk table.
type Matcher struct {
	crosswalk *Crosswalk
	ignore    Attr
}

// NewMatcher builds a matcher. ignore names attributes forced to wildcard
// for every comparison.
func NewMatcher(cw *Crosswalk, ignore Attr) *Matcher {
	return &Matcher{crosswalk: cw, ignore: ignore}
}

// Match returns the weighted damage-function assignments for one building,
// ordered by damage function ID. A building no rule survives for returns an
// empty slice; callers report that, they do not fail.
func (m *Matcher) Match(b domain.Building) []Assignment {
	counts := make(map[int]int)
	total := 0

	matchAllOcc := m.ignore.Has(AttrOccupancyType)
	for _, idx := range m.crosswalk.candidates(b.OccupancyType, matchAllOcc) {
		r := m.crosswalk.rules[idx]
		if !matchAllOcc && !m.occupancyMatches(b, r) {
			continue
		}
		if !m.ruleMatches(b, r) {
			continue
		}
		counts[r.DamageFunctionID]++
		total++
	}
	if total == 0 {
		return nil
	}

	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Assignment, 0, len(ids))
	for _, id := range ids {
		out = append(out, Assignment{
			BuildingID:       b.ID,
			DamageFunctionID: id,
			FirstFloorHeight: b.FirstFloorHeight,
			FFHStdDev:        b.FFHStdDev,
			Weight:           float64(counts[id]) / float64(total),
		})
	}
	return out
}

// occupancyMatches enforces the mandatory key: occupancy requires exact
// equality, and a building without an occupancy code matches only
// wildcard-occupancy rules.
func (m *Matcher) occupancyMatches(b domain.Building, r Rule) bool {
	if r.OccupancyType.IsWildcard() {
		return true
	}
	return r.OccupancyType.Value() == b.OccupancyType
}

func (m *Matcher) ruleMatches(b domain.Building, r Rule) bool {
	if !m.ignore.Has(AttrConstructionType) && !r.ConstructionType.Matches(b.ConstructionType) {
		return false
	}
	if !m.ignore.Has(AttrFoundationType) && !r.FoundationType.Matches(b.FoundationType.CrosswalkCode()) {
		return false
	}
	if !m.ignore.Has(AttrFloodPerilType) && !r.FloodPerilType.Matches(b.FloodPerilType) {
		return false
	}
	if !m.ignore.Has(AttrStories) && b.NumStories > 0 && r.Stories.Excludes(float64(b.NumStories)) {
		return false
	}
	if !m.ignore.Has(AttrArea) && b.Area > 0 && r.Area.Excludes(b.Area) {
		return false
	}
	return true
}

// MatchAll runs Match over an inventory and returns all assignments plus the
// IDs of buildings with no surviving rule, in input order.
func (m *Matcher) MatchAll(buildings []domain.Building) ([]Assignment, []string) {
	var assignments []Assignment
	var unmatched []string
	for _, b := range buildings {
		matched := m.Match(b)
		if len(matched) == 0 {
			unmatched = append(unmatched, b.ID)
			continue
		}
		assignments = append(assignments, matched...)
	}
	return assignments, unmatched
}
