package domain

// Foundation is the single-letter NSI foundation code.
type Foundation string

const (
	FoundationPile      Foundation = "I"
	FoundationPier      Foundation = "P"
	FoundationSolidWall Foundation = "W"
	FoundationBasement  Foundation = "B"
	FoundationCrawl     Foundation = "C"
	FoundationFill      Foundation = "F"
	FoundationSlab      Foundation = "S"
)

// nsiNumericFoundation maps the NSI numeric foundation encoding used in
// older exports to the single-letter codes.
var nsiNumericFoundation = map[int]Foundation{
	1: FoundationPile,
	2: FoundationPier,
	3: FoundationSolidWall,
	4: FoundationBasement,
	5: FoundationCrawl,
	6: FoundationFill,
	7: FoundationSlab,
}

// crosswalkFoundation maps single-letter codes to the 4-letter vocabulary
// used by the damage-function crosswalk tables.
var crosswalkFoundation = map[Foundation]string{
	FoundationCrawl:     "SHAL",
	FoundationPier:      "SHAL",
	FoundationSolidWall: "SHAL",
	FoundationBasement:  "BASE",
	FoundationSlab:      "SLAB",
	FoundationFill:      "SLAB",
	FoundationPile:      "PILE",
}

// FoundationFromNSICode decodes the NSI numeric foundation encoding.
// Returns false for codes outside 1-7.
func FoundationFromNSICode(code int) (Foundation, bool) {
	f, ok := nsiNumericFoundation[code]
	return f, ok
}

// CrosswalkCode translates the single-letter code to the crosswalk
// vocabulary. Returns "" for unknown or empty codes, which matching treats
// as an unknown attribute rather than a mismatch.
func (f Foundation) CrosswalkCode() string {
	return crosswalkFoundation[f]
}
