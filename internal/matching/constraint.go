package matching

import "strconv"

// Constraint is one crosswalk cell: either an exact code or a wildcard. The
// zero value is a wildcard. A crosswalk row disqualifies a building on an
// attribute only when both sides carry a value and the values differ, so a
// wildcard on either side always passes.
type Constraint struct {
	value string
	exact bool
}

// Exact builds a constraint requiring the given code. An empty code is a
// wildcard, matching the empty-cell convention of the crosswalk CSVs.
func Exact(value string) Constraint {
	if value == "" {
		return Constraint{}
	}
	return Constraint{value: value, exact: true}
}

// Wildcard matches any building value.
func Wildcard() Constraint { return Constraint{} }

// Matches reports whether the building-side value satisfies the constraint.
// An unknown building value (empty string) never disqualifies.
func (c Constraint) Matches(value string) bool {
	if !c.exact || value == "" {
		return true
	}
	return c.value == value
}

// IsWildcard reports whether the constraint matches everything.
func (c Constraint) IsWildcard() bool { return !c.exact }

// Value returns the exact code, or "" for a wildcard.
func (c Constraint) Value() string { return c.value }

// Range is an inclusive numeric interval with optional open bounds; a nil
// bound is unbounded on that side. The zero value matches everything.
type Range struct {
	Min *float64
	Max *float64
}

// Bounded reports whether at least one bound is set.
func (r Range) Bounded() bool { return r.Min != nil || r.Max != nil }

// Contains reports whether v falls inside the interval, bounds inclusive.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Excludes reports whether a known building value is disqualified: it is
// false when the range is unbounded, mirroring the wildcard convention.
func (r Range) Excludes(v float64) bool {
	return r.Bounded() && !r.Contains(v)
}

func (r Range) String() string {
	lo, hi := "", ""
	if r.Min != nil {
		lo = strconv.FormatFloat(*r.Min, 'f', -1, 64)
	}
	if r.Max != nil {
		hi = strconv.FormatFloat(*r.Max, 'f', -1, 64)
	}
	return "[" + lo + "," + hi + "]"
}
