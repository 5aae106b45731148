// Package domain models flood building inventories, depth-damage functions,
// and monetized loss statistics.
//
// # Data Sources
//
// Building inventories come from the USACE National Structure Inventory (NSI)
// or commercial exposure datasets, normalized upstream into a common column
// set (see internal/inventory). Hazard tables carry flood depths per building
// and return period, typically sampled from water-surface-elevation rasters
// by an external hydraulics toolchain.
//
// # Foundation Codes
//
// NSI encodes foundation type two ways: a numeric code (1-7) in older
// exports and a single-letter code in newer ones. Damage-function crosswalk
// tables use a third, 4-letter vocabulary (SLAB, BASE, SHAL, PILE). The
// translation chain is:
//
//	1→I pile, 2→P pier, 3→W solid wall, 4→B basement,
//	5→C crawl space, 6→F fill, 7→S slab
//
//	C→SHAL, P→SHAL, W→SHAL, B→BASE, S→SLAB, F→SLAB, I→PILE
//
// # Depth-Damage Functions
//
// A depth-damage function (DDF) is a piecewise-linear curve mapping flood
// depth relative to the first floor to a damage percentage (0-100) of
// replacement value. Depths below the first breakpoint produce zero damage
// (water has not reached the structure); depths above the last breakpoint
// clamp to the final value.
//
// # Uncertainty Model
//
// Depth uncertainty is propagated by evaluating each curve at the mean depth
// and at one standard deviation either side. The three evaluations (d_mean,
// plus d_min at mean−σ and d_max at mean+σ) parameterize a triangular damage
// distribution. d_min and d_max are positional: a non-monotonic curve can
// produce d_min > d_max, and the downstream formulas are written to tolerate
// that. See [NewDamageStatistic].
//
// # Average Annual Loss
//
// AAL integrates the loss-exceedance curve by the trapezoidal rule over
// exceedance probability p = 1/return_period, truncated at the largest
// modeled return period. See [IntegrateAAL].
package domain
