package index

import (
	"sort"

	"github.com/banshee-data/temporalgeo/internal/diag"
	"github.com/banshee-data/temporalgeo/internal/engconfig"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temperr"
)

// Config holds the tuning values SpanPickSplit reads (spec.md §4.8's
// LIMIT_RATIO). Defaults to the engine's hardcoded values; callers that
// load a tuning document should install it with SetConfig.
var Config = engconfig.Empty()

// SetConfig installs the tuning document picksplit reads. Passing nil
// resets it to the engine defaults.
func SetConfig(cfg *engconfig.EngineConfig) {
	if cfg == nil {
		cfg = engconfig.Empty()
	}
	Config = cfg
}

// SpanConsistent reduces strategy to the corresponding span predicate,
// returning whether key can match query and whether the match is lossy
// and needs a recheck against the actual value.
func SpanConsistent(key, query span.Span, strategy Strategy) (matches bool, recheck bool) {
	switch strategy {
	case StrategyOverlaps:
		matches = span.Overlaps(key, query)
	case StrategyContains:
		matches = span.Contains(key, query)
	case StrategyContainedBy:
		matches = span.Contains(query, key)
	case StrategyLeft:
		matches = span.Left(key, query)
	case StrategyOverLeft:
		matches = span.OverLeft(key, query)
	case StrategyRight:
		matches = span.Right(key, query)
	case StrategyOverRight:
		matches = span.OverRight(key, query)
	case StrategyAdjacent:
		matches = span.Adjacent(key, query)
	case StrategySame:
		matches = span.Eq(key, query)
	default:
		matches = span.Overlaps(key, query)
	}
	return matches, lossy(strategy)
}

// SpanUnion folds span.Union across entries, widening whenever two
// entries are not already contiguous rather than erroring (an index
// entry's bounding key must always cover every child regardless of
// gaps).
func SpanUnion(entries []span.Span) (span.Span, error) {
	if len(entries) == 0 {
		return span.Span{}, temperr.Wrap(temperr.ErrInvariantViolated, "index: union of zero entries")
	}
	out := entries[0]
	for _, e := range entries[1:] {
		var err error
		out, err = envelope(out, e)
		if err != nil {
			return span.Span{}, err
		}
	}
	return out, nil
}

// envelope returns the smallest span covering both a and b, regardless
// of whether they are contiguous.
func envelope(a, b span.Span) (span.Span, error) {
	if span.Overlaps(a, b) || span.Adjacent(a, b) {
		return span.Union(a, b)
	}
	lo, loInc := a.Lo, a.LoInc
	if span.CmpLower(b, a) < 0 {
		lo, loInc = b.Lo, b.LoInc
	}
	hi, hiInc := a.Hi, a.HiInc
	if span.CmpUpper(b, a) > 0 {
		hi, hiInc = b.Hi, b.HiInc
	}
	return span.Make(a.Base, lo, hi, loInc, hiInc)
}

// SpanPenalty is the enlargement of orig required to cover newItem
// (spec.md §4.8 "penalty(orig, new) is the enlargement of orig required
// to cover new"), measured as the width added.
func SpanPenalty(orig, newItem span.Span) (float64, error) {
	covering, err := envelope(orig, newItem)
	if err != nil {
		return 0, err
	}
	return width(covering) - width(orig), nil
}

func width(s span.Span) float64 {
	return span.Distance(span.Span{Base: s.Base, Lo: s.Lo, LoInc: true, Hi: s.Lo, HiInc: true}, span.Span{Base: s.Base, Lo: s.Hi, LoInc: true, Hi: s.Hi, HiInc: true})
}

// SpanPickSplit implements the "double sorting" GiST split of spec.md
// §4.8: sort entries by lower bound and by upper bound, evaluate every
// candidate split position, and keep the candidate with the smallest
// per-dimension overlap, tie-broken by the most balanced ratio above
// Config's GiST limit ratio.
func SpanPickSplit(entries []span.Span) (left, right []int, err error) {
	n := len(entries)
	if n < 2 {
		return nil, nil, temperr.Wrap(temperr.ErrInvariantViolated, "index: picksplit requires at least 2 entries")
	}
	limitRatio := Config.GetGiSTLimitRatio()
	byLower := sortedIndices(entries, func(a, b span.Span) bool { return span.CmpLower(a, b) < 0 })
	byUpper := sortedIndices(entries, func(a, b span.Span) bool { return span.CmpUpper(a, b) < 0 })

	bestOverlap := -1.0
	bestRatio := -1.0
	var bestLeft, bestRight []int
	considerSplit := func(candidateLeft, candidateRight []int) {
		if len(candidateLeft) == 0 || len(candidateRight) == 0 {
			return
		}
		leftBox, err := SpanUnion(indexInto(entries, candidateLeft))
		if err != nil {
			return
		}
		rightBox, err := SpanUnion(indexInto(entries, candidateRight))
		if err != nil {
			return
		}
		overlapWidth := 0.0
		if span.Overlaps(leftBox, rightBox) {
			if inter, ok := span.Intersection(leftBox, rightBox); ok {
				overlapWidth = width(inter)
			}
		}
		ratio := balanceRatio(len(candidateLeft), len(candidateRight))
		better := bestOverlap < 0 ||
			overlapWidth < bestOverlap ||
			(overlapWidth == bestOverlap && ratio > bestRatio && ratio >= limitRatio)
		if better {
			bestOverlap = overlapWidth
			bestRatio = ratio
			bestLeft = append([]int(nil), candidateLeft...)
			bestRight = append([]int(nil), candidateRight...)
		}
	}
	for split := 1; split < n; split++ {
		considerSplit(byLower[:split], byLower[split:])
		considerSplit(byUpper[:split], byUpper[split:])
	}
	if bestLeft == nil {
		mid := n / 2
		bestLeft, bestRight = byLower[:mid], byLower[mid:]
		diag.Logf("index: picksplit degenerate over %d entries, no candidate split could be evaluated, falling back to midpoint split", n)
	}
	return bestLeft, bestRight, nil
}

func balanceRatio(a, b int) float64 {
	if a > b {
		a, b = b, a
	}
	return float64(a) / float64(a+b)
}

func sortedIndices(entries []span.Span, less func(a, b span.Span) bool) []int {
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return less(entries[idx[i]], entries[idx[j]]) })
	return idx
}

func indexInto(entries []span.Span, idx []int) []span.Span {
	out := make([]span.Span, len(idx))
	for i, j := range idx {
		out[i] = entries[j]
	}
	return out
}
