// Package span implements the L1 bounded-interval layer (spec.md §3.2,
// §4.1): a half-open/closed interval over an ordered base type, its
// boundary comparator, topology predicates, and set operations.
//
// Grounded on original_source/src/general/span.c and span_ops.c; the
// timestamptz-backed alias (Period) is grounded on the teacher's
// internal/db/site_config_period.go validity-interval shape.
package span

import (
	"fmt"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/temperr"
)

// Span is a bounded interval (lo, hi) over an ordered base type, with
// per-bound inclusivity. Invariants (spec.md §3.2): cmp(lo,hi) <= 0; if
// cmp(lo,hi) == 0 then both bounds must be inclusive (empty spans are
// forbidden, not represented).
type Span struct {
	Base          basetype.Tag
	Lo, Hi        basetype.Datum
	LoInc, HiInc  bool
}

// Period is a naming alias for a timestamptz-backed span (spec.md §3.2:
// "this is a naming alias, not a distinct type").
type Period = Span

// Bound is a span boundary viewed in isolation: a value, its inclusivity,
// and whether it plays the role of a lower or upper bound. BoundCmp is the
// single source of truth for every topological predicate in this package
// (spec.md §4.1: "implementers must not re-derive these rules inline").
type Bound struct {
	Val       basetype.Datum
	Inclusive bool
	IsLower   bool
}

func lowerBound(s Span) Bound { return Bound{Val: s.Lo, Inclusive: s.LoInc, IsLower: true} }
func upperBound(s Span) Bound { return Bound{Val: s.Hi, Inclusive: s.HiInc, IsLower: false} }

// BoundCmp implements the four-way boundary comparator of spec.md §4.1:
// values compare first; on value equality, inclusivity and bound role
// (lower/upper) break the tie. Two equal-valued exclusive bounds differ
// iff one is a lower and the other an upper bound: an exclusive lower
// bound is "greater than" an inclusive bound sharing its value (it starts
// strictly after that value), and an exclusive upper bound is "less than"
// an inclusive bound sharing its value (it ends strictly before it).
func BoundCmp(a, b Bound) int {
	if c := basetype.Compare(a.Val, b.Val); c != 0 {
		return c
	}
	if a.Inclusive == b.Inclusive {
		if a.IsLower == b.IsLower {
			return 0
		}
		// Same value, same inclusivity, different role: an inclusive
		// lower and inclusive upper at the same value are equal (a
		// singleton span boundary); exclusive lower vs exclusive upper
		// at the same value never legitimately co-occur in one span but
		// must still order deterministically for cross-span comparisons.
		if a.Inclusive {
			return 0
		}
		if a.IsLower {
			return 1
		}
		return -1
	}
	// Different inclusivity, same value.
	switch {
	case a.Inclusive && !b.Inclusive:
		if b.IsLower {
			return -1 // a (inclusive) is before an exclusive lower at the same value
		}
		return 1 // a (inclusive) is after an exclusive upper at the same value
	default: // !a.Inclusive && b.Inclusive
		if a.IsLower {
			return 1
		}
		return -1
	}
}

// Make constructs a span, validating spec.md §3.2's invariants.
func Make(base basetype.Tag, lo, hi basetype.Datum, loInc, hiInc bool) (Span, error) {
	desc := basetype.Get(base)
	if desc == nil || !desc.IsOrdered {
		return Span{}, temperr.Wrap(temperr.ErrDomainMismatch, fmt.Sprintf("span: base type %s is not ordered", base))
	}
	if lo.Tag != base || hi.Tag != base {
		return Span{}, temperr.Wrap(temperr.ErrDomainMismatch, "span: bound tag does not match base")
	}
	c := desc.Cmp(lo, hi)
	if c > 0 {
		return Span{}, temperr.Wrap(temperr.ErrInvariantViolated, "span: lower bound greater than upper bound")
	}
	if c == 0 && !(loInc && hiInc) {
		return Span{}, temperr.Wrap(temperr.ErrInvariantViolated, "span: empty span (equal bounds not both inclusive)")
	}
	return Span{Base: base, Lo: lo, Hi: hi, LoInc: loInc, HiInc: hiInc}, nil
}

// Eq reports whether two spans are identical (same bounds, same
// inclusivity); it does not normalize.
func Eq(a, b Span) bool {
	if a.Base != b.Base || a.LoInc != b.LoInc || a.HiInc != b.HiInc {
		return false
	}
	d := basetype.MustGet(a.Base)
	return d.Eq(a.Lo, b.Lo) && d.Eq(a.Hi, b.Hi)
}

// CmpLower compares the lower bounds of a and b under boundary order.
func CmpLower(a, b Span) int { return BoundCmp(lowerBound(a), lowerBound(b)) }

// CmpUpper compares the upper bounds of a and b under boundary order.
func CmpUpper(a, b Span) int { return BoundCmp(upperBound(a), upperBound(b)) }

// Contains reports whether every point of b lies in a.
func Contains(a, b Span) bool {
	return CmpLower(a, b) <= 0 && CmpUpper(a, b) >= 0
}

// ContainsValue reports whether v lies within a.
func ContainsValue(a Span, v basetype.Datum) bool {
	d := basetype.MustGet(a.Base)
	lo := d.Cmp(v, a.Lo)
	if lo < 0 || (lo == 0 && !a.LoInc) {
		return false
	}
	hi := d.Cmp(v, a.Hi)
	if hi > 0 || (hi == 0 && !a.HiInc) {
		return false
	}
	return true
}

// strictlyLeft reports whether a lies entirely to the left of b: a's
// upper bound under boundary order precedes b's lower bound.
func strictlyLeft(a, b Span) bool {
	return BoundCmp(upperBound(a), lowerBound(b)) < 0
}

// Left is spec.md §4.1's "left": a ends strictly before b begins.
func Left(a, b Span) bool { return strictlyLeft(a, b) }

// Right is the mirror of Left.
func Right(a, b Span) bool { return strictlyLeft(b, a) }

// OverLeft: a does not extend to the right of b (a.hi <= b.hi in
// boundary order).
func OverLeft(a, b Span) bool { return CmpUpper(a, b) <= 0 }

// OverRight: a does not extend to the left of b.
func OverRight(a, b Span) bool { return CmpLower(a, b) >= 0 }

// Overlaps reports whether a and b share any point (spec.md §4.1: neither
// is strictly left of the other).
func Overlaps(a, b Span) bool {
	return !strictlyLeft(a, b) && !strictlyLeft(b, a)
}

// Adjacent reports whether a and b touch at exactly one boundary with
// complementary inclusivity (exactly one of the two includes the shared
// value), in either order.
func Adjacent(a, b Span) bool {
	return adjacentOrdered(a, b) || adjacentOrdered(b, a)
}

func adjacentOrdered(a, b Span) bool {
	d := basetype.MustGet(a.Base)
	return d.Eq(a.Hi, b.Lo) && (a.HiInc != b.LoInc)
}

// Union returns the span covering both a and b. It is defined only when
// they overlap or are adjacent (spec.md §4.1); otherwise ErrNotContiguous.
func Union(a, b Span) (Span, error) {
	if !Overlaps(a, b) && !Adjacent(a, b) {
		return Span{}, temperr.Wrap(temperr.ErrNotContiguous, "span: union of non-contiguous spans")
	}
	lo, loInc := minBound(lowerBound(a), lowerBound(b))
	hi, hiInc := maxBound(upperBound(a), upperBound(b))
	return Span{Base: a.Base, Lo: lo, Hi: hi, LoInc: loInc, HiInc: hiInc}, nil
}

func minBound(a, b Bound) (basetype.Datum, bool) {
	if BoundCmp(a, b) <= 0 {
		return a.Val, a.Inclusive
	}
	return b.Val, b.Inclusive
}

func maxBound(a, b Bound) (basetype.Datum, bool) {
	if BoundCmp(a, b) >= 0 {
		return a.Val, a.Inclusive
	}
	return b.Val, b.Inclusive
}

// Intersection returns the overlapping portion of a and b, if any.
func Intersection(a, b Span) (Span, bool) {
	if !Overlaps(a, b) {
		return Span{}, false
	}
	loB := maxLowerBound(lowerBound(a), lowerBound(b))
	hiB := minUpperBound(upperBound(a), upperBound(b))
	sp, err := Make(a.Base, loB.Val, hiB.Val, loB.Inclusive, hiB.Inclusive)
	if err != nil {
		return Span{}, false
	}
	return sp, true
}

func maxLowerBound(a, b Bound) Bound {
	if BoundCmp(a, b) >= 0 {
		return a
	}
	return b
}

func minUpperBound(a, b Bound) Bound {
	if BoundCmp(a, b) <= 0 {
		return a
	}
	return b
}

// Minus returns a \ b: the portion of a not covered by b. Returns
// (result, true) for one resulting span and (Span{}, false) when b covers
// all of a; when b is strictly
// interior to a the result would be two disjoint spans and the function
// returns ErrNotContiguous (spec.md §4.1).
func Minus(a, b Span) (Span, bool, error) {
	if !Overlaps(a, b) {
		return a, true, nil
	}
	loCmp := CmpLower(b, a)
	hiCmp := CmpUpper(b, a)
	coversLeft := loCmp <= 0
	coversRight := hiCmp >= 0
	switch {
	case coversLeft && coversRight:
		// b covers all of a.
		return Span{}, false, nil
	case coversLeft:
		// b removes a's left portion; remainder is a's right portion.
		newLo := complementOf(upperBound(b))
		sp, err := Make(a.Base, newLo.Val, a.Hi, newLo.Inclusive, a.HiInc)
		return sp, err == nil, err
	case coversRight:
		newHi := complementOf(lowerBound(b))
		sp, err := Make(a.Base, a.Lo, newHi.Val, a.LoInc, newHi.Inclusive)
		return sp, err == nil, err
	default:
		return Span{}, false, temperr.Wrap(temperr.ErrNotContiguous, "span: difference would produce two spans")
	}
}

// complementOf flips a bound's role and inclusivity to serve as the
// opposite-facing bound of the adjoining remainder span.
func complementOf(b Bound) Bound {
	return Bound{Val: b.Val, Inclusive: !b.Inclusive, IsLower: !b.IsLower}
}

// Distance is 0 if a and b overlap, else the base-distance between their
// nearest bounds (spec.md §4.1).
func Distance(a, b Span) float64 {
	if Overlaps(a, b) {
		return 0
	}
	d := basetype.MustGet(a.Base)
	if strictlyLeft(a, b) {
		return d.Distance(a.Hi, b.Lo)
	}
	return d.Distance(b.Hi, a.Lo)
}

// Normalize sorts spans by lower bound and folds every pair that overlaps
// or is adjacent into one, returning a disjoint, non-adjacent array
// (spec.md §4.1 "Normalization of arrays").
func Normalize(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := append([]Span(nil), spans...)
	sortByLower(sorted)
	out := make([]Span, 0, len(sorted))
	cur := sorted[0]
	for _, s := range sorted[1:] {
		if Overlaps(cur, s) || Adjacent(cur, s) {
			u, err := Union(cur, s)
			if err != nil {
				// Unreachable: Overlaps||Adjacent guarantees Union succeeds.
				panic(err)
			}
			cur = u
			continue
		}
		out = append(out, cur)
		cur = s
	}
	return append(out, cur)
}

func sortByLower(spans []Span) {
	// Plain insertion sort; spans arrays are small in practice
	// (aggregator chunks, index entries).
	for i := 1; i < len(spans); i++ {
		j := i
		for j > 0 && CmpLower(spans[j-1], spans[j]) > 0 {
			spans[j-1], spans[j] = spans[j], spans[j-1]
			j--
		}
	}
}

// BoundHistogram buckets the bound values of spans into an equi-depth
// histogram of nbuckets representative spans, grounded on
// original_source/src/general/span_analyze.c's selectivity histogram
// shape. Selectivity estimation itself is out of scope (spec.md §1); this
// is a standalone helper useful for index tuning.
func BoundHistogram(spans []Span, nbuckets int) []Span {
	if nbuckets <= 0 || len(spans) == 0 {
		return nil
	}
	sorted := append([]Span(nil), spans...)
	sortByLower(sorted)
	if nbuckets >= len(sorted) {
		return sorted
	}
	out := make([]Span, 0, nbuckets)
	step := float64(len(sorted)) / float64(nbuckets)
	for i := 0; i < nbuckets; i++ {
		idx := int(float64(i) * step)
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		out = append(out, sorted[idx])
	}
	return out
}
