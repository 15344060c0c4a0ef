// Package spanset implements the L2 span-set layer (spec.md §3.4, §4.3):
// an ordered array of disjoint, non-adjacent spans plus a precomputed
// bounding span covering all of them.
//
// Grounded on original_source/src/general/spanset.c.
package spanset

import (
	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temperr"
)

// SpanSet is a normalized, non-empty array of disjoint non-adjacent spans.
type SpanSet struct {
	Base   basetype.Tag
	Spans  []span.Span
	Bounds span.Span
}

// PeriodSet is a naming alias, matching span.Period.
type PeriodSet = SpanSet

// Make normalizes spans (sort + fold overlaps/adjacency, spec.md §4.1) and
// computes the bounding span. Empty span-sets are forbidden.
func Make(base basetype.Tag, spans []span.Span) (SpanSet, error) {
	if len(spans) == 0 {
		return SpanSet{}, temperr.Wrap(temperr.ErrInvariantViolated, "spanset: cannot construct from zero spans")
	}
	norm := span.Normalize(spans)
	first, last := norm[0], norm[len(norm)-1]
	bounds, err := span.Make(base, first.Lo, last.Hi, first.LoInc, last.HiInc)
	if err != nil {
		return SpanSet{}, err
	}
	return SpanSet{Base: base, Spans: norm, Bounds: bounds}, nil
}

// Len returns the number of disjoint spans.
func (ss SpanSet) Len() int { return len(ss.Spans) }

// ContainsValue reports whether v lies in any span of ss.
func (ss SpanSet) ContainsValue(v basetype.Datum) bool {
	if !span.ContainsValue(ss.Bounds, v) {
		return false
	}
	for _, s := range ss.Spans {
		if span.ContainsValue(s, v) {
			return true
		}
	}
	return false
}

// Overlaps reports whether any span of a overlaps any span of b.
func Overlaps(a, b SpanSet) bool {
	if !span.Overlaps(a.Bounds, b.Bounds) {
		return false
	}
	i, j := 0, 0
	for i < len(a.Spans) && j < len(b.Spans) {
		as, bs := a.Spans[i], b.Spans[j]
		if span.Overlaps(as, bs) {
			return true
		}
		if span.CmpUpper(as, bs) < 0 {
			i++
		} else {
			j++
		}
	}
	return false
}

// Contains reports whether every span of b is covered by some span of a,
// i.e. a ⊇ b in the set sense.
func Contains(a, b SpanSet) bool {
	if !span.Contains(a.Bounds, b.Bounds) {
		return false
	}
	for _, bs := range b.Spans {
		covered := false
		for _, as := range a.Spans {
			if span.Contains(as, bs) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// Union merges every span from a and b and renormalizes.
func Union(a, b SpanSet) (SpanSet, error) {
	all := append(append([]span.Span(nil), a.Spans...), b.Spans...)
	return Make(a.Base, all)
}

// Intersection returns the spans common to a and b via a sweep over both
// normalized arrays.
func Intersection(a, b SpanSet) (SpanSet, bool) {
	if !span.Overlaps(a.Bounds, b.Bounds) {
		return SpanSet{}, false
	}
	var out []span.Span
	i, j := 0, 0
	for i < len(a.Spans) && j < len(b.Spans) {
		as, bs := a.Spans[i], b.Spans[j]
		if inter, ok := span.Intersection(as, bs); ok {
			out = append(out, inter)
		}
		if span.CmpUpper(as, bs) < 0 {
			i++
		} else {
			j++
		}
	}
	if len(out) == 0 {
		return SpanSet{}, false
	}
	ss, err := Make(a.Base, out)
	if err != nil {
		return SpanSet{}, false
	}
	return ss, true
}

// Minus returns a \ b, subtracting every span of b from every overlapping
// span of a; portions left over after subtraction are kept, two-piece
// remainders are split into two spans (unlike span.Minus, a span-set
// minus is always representable since the result need not stay a single
// interval).
func Minus(a, b SpanSet) (SpanSet, bool) {
	var out []span.Span
	for _, as := range a.Spans {
		remainder := []span.Span{as}
		for _, bs := range b.Spans {
			if !span.Overlaps(bs, as) {
				continue
			}
			var next []span.Span
			for _, r := range remainder {
				if !span.Overlaps(bs, r) {
					next = append(next, r)
					continue
				}
				if left, ok, err := span.Minus(r, bs); err == nil && ok {
					next = append(next, left)
				} else if err != nil {
					// bs strictly interior to r: split into left and right parts.
					if lp, err := span.Make(r.Base, r.Lo, bs.Lo, r.LoInc, !bs.LoInc); err == nil {
						next = append(next, lp)
					}
					if rp, err := span.Make(r.Base, bs.Hi, r.Hi, !bs.HiInc, r.HiInc); err == nil {
						next = append(next, rp)
					}
				}
			}
			remainder = next
		}
		out = append(out, remainder...)
	}
	if len(out) == 0 {
		return SpanSet{}, false
	}
	ss, err := Make(a.Base, out)
	if err != nil {
		return SpanSet{}, false
	}
	return ss, true
}

// Distance is 0 if a and b overlap, else the minimum span.Distance across
// the cross product of their spans (bounded by the bounding-span check
// first).
func Distance(a, b SpanSet) float64 {
	if Overlaps(a, b) {
		return 0
	}
	best := span.Distance(a.Bounds, b.Bounds)
	for _, as := range a.Spans {
		for _, bs := range b.Spans {
			if d := span.Distance(as, bs); d < best {
				best = d
			}
		}
	}
	return best
}
