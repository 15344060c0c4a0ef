// Package index implements the L5 index-support layer (spec.md §4.8):
// GiST-style consistent/union/penalty/picksplit and SP-GiST-style
// quadtree choose/picksplit/inner-consistent/leaf-consistent support
// functions over Span, TBox, and STBox keys.
//
// Grounded on original_source/mobilitydb/src/general/span_gist.c,
// src/general/span_spgist.c, and include/general/tnumber_gist.h.
package index

// Strategy identifies which predicate a GiST/SP-GiST index operator is
// evaluating, matching the operator-strategy numbers of spec.md §4.1's
// and §4.4's topology predicates.
type Strategy int

const (
	StrategyOverlaps Strategy = iota
	StrategyContains
	StrategyContainedBy
	StrategyLeft
	StrategyOverLeft
	StrategyRight
	StrategyOverRight
	StrategyAdjacent
	StrategySame
	StrategyBefore
	StrategyAfter
)

// lossy reports whether strategy requires a recheck against the actual
// heap tuple after the index match: every strategy is lossy at the leaf
// level except strict left/right, which a bounding box answers exactly
// (spec.md §4.8: "flags recheck for lossy strategies (everything except
// strictly-left/right at leaf level)").
func lossy(strategy Strategy) bool {
	switch strategy {
	case StrategyLeft, StrategyRight:
		return false
	default:
		return true
	}
}
