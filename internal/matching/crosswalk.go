package matching

import (
	"sort"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
)

// Rule is one crosswalk row: a set of attribute constraints that map a class
// of buildings to a damage function. OccupancyType is the mandatory match
// key; the rest follow the both-sides-known wildcard convention.
type Rule struct {
	DamageFunctionID int
	OccupancyType    Constraint
	ConstructionType Constraint
	FoundationType   Constraint // 4-letter crosswalk code, e.g. "SLAB"
	FloodPerilType   Constraint
	Stories          Range
	Area             Range // square feet
}

// Crosswalk is an indexed rule table for one cost category. Rules keep their
// load order so candidate iteration, and therefore tie-broken output order,
// is deterministic.
type Crosswalk struct {
	Category domain.CostCategory

	rules        []Rule
	byOccupancy  map[string][]int
	anyOccupancy []int
}

// NewCrosswalk indexes the rules by exact occupancy code. Rules whose
// occupancy cell is a wildcard are candidates for every building.
func NewCrosswalk(cat domain.CostCategory, rules []Rule) *Crosswalk {
	cw := &Crosswalk{
		Category:    cat,
		rules:       rules,
		byOccupancy: make(map[string][]int),
	}
	for i, r := range rules {
		if r.OccupancyType.IsWildcard() {
			cw.anyOccupancy = append(cw.anyOccupancy, i)
			continue
		}
		occ := r.OccupancyType.Value()
		cw.byOccupancy[occ] = append(cw.byOccupancy[occ], i)
	}
	return cw
}

// Len returns the number of rules in the table.
func (cw *Crosswalk) Len() int { return len(cw.rules) }

// FunctionIDs returns the distinct damage function IDs the table references,
// in ascending order.
func (cw *Crosswalk) FunctionIDs() []int {
	seen := make(map[int]bool, len(cw.rules))
	var out []int
	for _, r := range cw.rules {
		if !seen[r.DamageFunctionID] {
			seen[r.DamageFunctionID] = true
			out = append(out, r.DamageFunctionID)
		}
	}
	sort.Ints(out)
	return out
}

// candidates returns the indices of rules whose occupancy key can match the
// given code. When matchAll is set (occupancy in the caller's ignore set),
// every rule is a candidate.
func (cw *Crosswalk) candidates(occupancy string, matchAll bool) []int {
	if matchAll {
		all := make([]int, len(cw.rules))
		for i := range all {
			all[i] = i
		}
		return all
	}

	exact := cw.byOccupancy[occupancy]
	if len(cw.anyOccupancy) == 0 {
		return exact
	}

	merged := make([]int, 0, len(exact)+len(cw.anyOccupancy))
	merged = append(merged, exact...)
	merged = append(merged, cw.anyOccupancy...)
	return merged
}
