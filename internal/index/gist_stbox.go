package index

import (
	"github.com/banshee-data/temporalgeo/internal/box"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temperr"
)

// STBoxConsistent reduces strategy to the corresponding STBox predicate.
func STBoxConsistent(key, query box.STBox, strategy Strategy) (matches bool, recheck bool) {
	switch strategy {
	case StrategyOverlaps:
		matches = box.OverlapsSTBox(key, query)
	case StrategyContains:
		matches = box.ContainsSTBox(key, query)
	case StrategyContainedBy:
		matches = box.ContainsSTBox(query, key)
	case StrategyLeft:
		matches = box.LeftSTBox(key, query)
	case StrategyOverLeft:
		matches = box.OverLeftSTBox(key, query)
	case StrategyRight:
		matches = box.RightSTBox(key, query)
	case StrategyOverRight:
		matches = box.OverRightSTBox(key, query)
	case StrategyBefore:
		matches = box.BeforeSTBox(key, query)
	case StrategyAfter:
		matches = box.AfterSTBox(key, query)
	case StrategySame:
		matches = box.SameSTBox(key, query)
	default:
		matches = box.OverlapsSTBox(key, query)
	}
	return matches, lossy(strategy)
}

// STBoxUnion folds box.UnionSTBox across entries.
func STBoxUnion(entries []box.STBox) (box.STBox, error) {
	if len(entries) == 0 {
		return box.STBox{}, temperr.Wrap(temperr.ErrInvariantViolated, "index: union of zero entries")
	}
	out := entries[0]
	for _, e := range entries[1:] {
		var err error
		out, err = box.UnionSTBox(out, e)
		if err != nil {
			return box.STBox{}, err
		}
	}
	return out, nil
}

// stboxMeasure sums the X width, the Y width and the T width present in b
// (an extent sum, not an area).
func stboxMeasure(b box.STBox) float64 {
	var m float64
	if b.HasX() {
		m += (b.XMax - b.XMin) + (b.YMax - b.YMin)
	}
	if b.HasT() {
		m += width(b.T)
	}
	return m
}

// STBoxPenalty is the enlargement of orig required to cover newItem.
func STBoxPenalty(orig, newItem box.STBox) (float64, error) {
	covering, err := box.UnionSTBox(orig, newItem)
	if err != nil {
		return 0, err
	}
	return stboxMeasure(covering) - stboxMeasure(orig), nil
}

// STBoxPickSplit implements the double-sorting split across STBox's
// X, Y, and T dimensions.
func STBoxPickSplit(entries []box.STBox) (left, right []int, err error) {
	n := len(entries)
	if n < 2 {
		return nil, nil, temperr.Wrap(temperr.ErrInvariantViolated, "index: picksplit requires at least 2 entries")
	}
	var orderings [][]int
	if allHaveSTX(entries) {
		orderings = append(orderings,
			sortIdx(n, func(i, j int) bool { return entries[i].XMin < entries[j].XMin }),
			sortIdx(n, func(i, j int) bool { return entries[i].XMax < entries[j].XMax }),
			sortIdx(n, func(i, j int) bool { return entries[i].YMin < entries[j].YMin }),
			sortIdx(n, func(i, j int) bool { return entries[i].YMax < entries[j].YMax }),
		)
	}
	if allHaveSTT(entries) {
		orderings = append(orderings,
			sortIdx(n, func(i, j int) bool { return span.CmpLower(entries[i].T, entries[j].T) < 0 }),
			sortIdx(n, func(i, j int) bool { return span.CmpUpper(entries[i].T, entries[j].T) < 0 }),
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
			lb, err := STBoxUnion(pickSTBoxes(entries, candL))
			if err != nil {
				continue
			}
			rb, err := STBoxUnion(pickSTBoxes(entries, candR))
			if err != nil {
				continue
			}
			overlap := stboxOverlapMeasure(lb, rb)
			if bestOverlap < 0 || overlap < bestOverlap {
				bestOverlap = overlap
				bestLeft = append([]int(nil), candL...)
				bestRight = append([]int(nil), candR...)
			}
		}
	}
	return bestLeft, bestRight, nil
}

func stboxOverlapMeasure(a, b box.STBox) float64 {
	if !box.OverlapsSTBox(a, b) {
		return 0
	}
	var m float64
	if a.HasX() && b.HasX() {
		ox := minF(a.XMax, b.XMax) - maxF(a.XMin, b.XMin)
		oy := minF(a.YMax, b.YMax) - maxF(a.YMin, b.YMin)
		if ox > 0 {
			m += ox
		}
		if oy > 0 {
			m += oy
		}
	}
	if a.HasT() && b.HasT() {
		if inter, ok := span.Intersection(a.T, b.T); ok {
			m += width(inter)
		}
	}
	return m
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func allHaveSTX(entries []box.STBox) bool {
	for _, e := range entries {
		if !e.HasX() {
			return false
		}
	}
	return true
}

func allHaveSTT(entries []box.STBox) bool {
	for _, e := range entries {
		if !e.HasT() {
			return false
		}
	}
	return true
}

func pickSTBoxes(entries []box.STBox, idx []int) []box.STBox {
	out := make([]box.STBox, len(idx))
	for i, j := range idx {
		out[i] = entries[j]
	}
	return out
}
