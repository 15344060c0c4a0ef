package index

import (
	"sort"

	"github.com/banshee-data/temporalgeo/internal/box"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temperr"
)

func cmpXLower(a, b box.TBox) int { return span.CmpLower(a.X, b.X) }
func cmpXUpper(a, b box.TBox) int { return span.CmpUpper(a.X, b.X) }
func cmpTLower(a, b box.TBox) int { return span.CmpLower(a.T, b.T) }
func cmpTUpper(a, b box.TBox) int { return span.CmpUpper(a.T, b.T) }

// TBoxConsistent reduces strategy to the corresponding TBox predicate.
func TBoxConsistent(key, query box.TBox, strategy Strategy) (matches bool, recheck bool) {
	switch strategy {
	case StrategyOverlaps:
		matches = box.OverlapsTBox(key, query)
	case StrategyContains:
		matches = box.ContainsTBox(key, query)
	case StrategyContainedBy:
		matches = box.ContainsTBox(query, key)
	case StrategyLeft:
		matches = box.LeftTBox(key, query)
	case StrategyRight:
		matches = box.RightTBox(key, query)
	case StrategyBefore:
		matches = box.BeforeTBox(key, query)
	case StrategyAfter:
		matches = box.AfterTBox(key, query)
	case StrategyAdjacent:
		matches = box.AdjacentTBox(key, query)
	case StrategySame:
		matches = box.SameTBox(key, query)
	default:
		matches = box.OverlapsTBox(key, query)
	}
	return matches, lossy(strategy)
}

// TBoxUnion folds box.UnionTBox across entries.
func TBoxUnion(entries []box.TBox) (box.TBox, error) {
	if len(entries) == 0 {
		return box.TBox{}, temperr.Wrap(temperr.ErrInvariantViolated, "index: union of zero entries")
	}
	out := entries[0]
	for _, e := range entries[1:] {
		var err error
		out, err = box.UnionTBox(out, e)
		if err != nil {
			return box.TBox{}, err
		}
	}
	return out, nil
}

// tboxMeasure sums the X width and the T width (seconds) present in b,
// the per-dimension size GiST penalty/picksplit need. Dimensions absent
// from b contribute zero.
func tboxMeasure(b box.TBox) float64 {
	var m float64
	if b.HasX() {
		m += width(b.X)
	}
	if b.HasT() {
		m += width(b.T)
	}
	return m
}

// TBoxPenalty is the enlargement of orig required to cover newItem,
// summed per dimension (spec.md §4.8).
func TBoxPenalty(orig, newItem box.TBox) (float64, error) {
	covering, err := box.UnionTBox(orig, newItem)
	if err != nil {
		return 0, err
	}
	return tboxMeasure(covering) - tboxMeasure(orig), nil
}

// TBoxPickSplit implements the same double-sorting split as SpanPickSplit,
// generalized to TBox's two potential dimensions: candidates are built by
// sorting on X's lower/upper bound and T's lower/upper bound in turn, and
// the candidate with smallest summed-dimension overlap wins.
func TBoxPickSplit(entries []box.TBox) (left, right []int, err error) {
	n := len(entries)
	if n < 2 {
		return nil, nil, temperr.Wrap(temperr.ErrInvariantViolated, "index: picksplit requires at least 2 entries")
	}
	var orderings [][]int
	if allHaveX(entries) {
		orderings = append(orderings,
			sortIdx(n, func(i, j int) bool { return cmpXLower(entries[i], entries[j]) < 0 }),
			sortIdx(n, func(i, j int) bool { return cmpXUpper(entries[i], entries[j]) < 0 }),
		)
	}
	if allHaveT(entries) {
		orderings = append(orderings,
			sortIdx(n, func(i, j int) bool { return cmpTLower(entries[i], entries[j]) < 0 }),
			sortIdx(n, func(i, j int) bool { return cmpTUpper(entries[i], entries[j]) < 0 }),
		)
	}
	if len(orderings) == 0 {
		mid := n / 2
		idx := sortIdx(n, func(i, j int) bool { return i < j })
		return idx[:mid], idx[mid:], nil
	}

	bestOverlap := -1.0
	var bestLeft, bestRight []int
	for _, ord := range orderings {
		for split := 1; split < n; split++ {
			candL, candR := ord[:split], ord[split:]
			lb, err := TBoxUnion(pickTBoxes(entries, candL))
			if err != nil {
				continue
			}
			rb, err := TBoxUnion(pickTBoxes(entries, candR))
			if err != nil {
				continue
			}
			overlap := 0.0
			if inter, ok := box.IntersectionTBox(lb, rb); ok {
				overlap = tboxMeasure(inter)
			}
			if bestOverlap < 0 || overlap < bestOverlap {
				bestOverlap = overlap
				bestLeft = append([]int(nil), candL...)
				bestRight = append([]int(nil), candR...)
			}
		}
	}
	return bestLeft, bestRight, nil
}

func allHaveX(entries []box.TBox) bool {
	for _, e := range entries {
		if !e.HasX() {
			return false
		}
	}
	return true
}

func allHaveT(entries []box.TBox) bool {
	for _, e := range entries {
		if !e.HasT() {
			return false
		}
	}
	return true
}

func sortIdx(n int, less func(i, j int) bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return less(idx[i], idx[j]) })
	return idx
}

func pickTBoxes(entries []box.TBox, idx []int) []box.TBox {
	out := make([]box.TBox, len(idx))
	for i, j := range idx {
		out[i] = entries[j]
	}
	return out
}
