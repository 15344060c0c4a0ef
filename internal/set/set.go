// Package set implements the L1 ordered, duplicate-free set layer
// (spec.md §3.3, §4.2). Construction sorts and deduplicates; the set
// carries its own bounding span so spatial/temporal predicates against
// spans are O(log n) on the bounds.
//
// Grounded on original_source/meos/include/general/set.h.
package set

import (
	"sort"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temperr"
)

// Set is a sorted, duplicate-free sequence of base values of one tag.
type Set struct {
	Base   basetype.Tag
	Values []basetype.Datum
	Bounds span.Span // closed interval [Values[0], Values[len-1]]
}

// Make sorts and deduplicates vs, then builds the bounding span. Returns
// ErrInvariantViolated if vs is empty (a set, like a span, is never
// empty in this model — absence is represented by a nil *Set at call
// sites, not an empty Set value).
func Make(base basetype.Tag, vs []basetype.Datum) (Set, error) {
	if len(vs) == 0 {
		return Set{}, temperr.Wrap(temperr.ErrInvariantViolated, "set: cannot construct from zero values")
	}
	desc := basetype.Get(base)
	if desc == nil || !desc.IsOrdered {
		return Set{}, temperr.Wrap(temperr.ErrDomainMismatch, "set: base type is not ordered")
	}
	vals := append([]basetype.Datum(nil), vs...)
	sort.Slice(vals, func(i, j int) bool { return desc.Cmp(vals[i], vals[j]) < 0 })
	out := vals[:1]
	for _, v := range vals[1:] {
		if !desc.Eq(out[len(out)-1], v) {
			out = append(out, v)
		}
	}
	bounds, err := span.Make(base, out[0], out[len(out)-1], true, true)
	if err != nil {
		return Set{}, err
	}
	return Set{Base: base, Values: out, Bounds: bounds}, nil
}

// Len returns the number of distinct elements.
func (s Set) Len() int { return len(s.Values) }

// Locate binary-searches for v, returning (index, true) if found or
// (insertion point, false) otherwise.
func (s Set) Locate(v basetype.Datum) (int, bool) {
	desc := basetype.MustGet(s.Base)
	i := sort.Search(len(s.Values), func(i int) bool { return desc.Cmp(s.Values[i], v) >= 0 })
	if i < len(s.Values) && desc.Eq(s.Values[i], v) {
		return i, true
	}
	return i, false
}

// Contains reports whether v is an element of s.
func (s Set) Contains(v basetype.Datum) bool {
	_, found := s.Locate(v)
	return found
}

// Union returns the sorted merge of a and b's distinct elements.
func Union(a, b Set) (Set, error) {
	merged := mergeSorted(a, b, true)
	return Make(a.Base, merged)
}

// Intersection returns the elements common to both a and b.
func Intersection(a, b Set) (Set, bool) {
	desc := basetype.MustGet(a.Base)
	var out []basetype.Datum
	i, j := 0, 0
	for i < len(a.Values) && j < len(b.Values) {
		c := desc.Cmp(a.Values[i], b.Values[j])
		switch {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			out = append(out, a.Values[i])
			i++
			j++
		}
	}
	if len(out) == 0 {
		return Set{}, false
	}
	s, err := Make(a.Base, out)
	if err != nil {
		return Set{}, false
	}
	return s, true
}

// Minus returns the elements of a not present in b.
func Minus(a, b Set) (Set, bool) {
	desc := basetype.MustGet(a.Base)
	var out []basetype.Datum
	i, j := 0, 0
	for i < len(a.Values) {
		if j >= len(b.Values) {
			out = append(out, a.Values[i:]...)
			break
		}
		c := desc.Cmp(a.Values[i], b.Values[j])
		switch {
		case c < 0:
			out = append(out, a.Values[i])
			i++
		case c > 0:
			j++
		default:
			i++
			j++
		}
	}
	if len(out) == 0 {
		return Set{}, false
	}
	s, err := Make(a.Base, out)
	if err != nil {
		return Set{}, false
	}
	return s, true
}

func mergeSorted(a, b Set, dedup bool) []basetype.Datum {
	desc := basetype.MustGet(a.Base)
	out := make([]basetype.Datum, 0, len(a.Values)+len(b.Values))
	i, j := 0, 0
	for i < len(a.Values) && j < len(b.Values) {
		c := desc.Cmp(a.Values[i], b.Values[j])
		switch {
		case c < 0:
			out = append(out, a.Values[i])
			i++
		case c > 0:
			out = append(out, b.Values[j])
			j++
		default:
			out = append(out, a.Values[i])
			i++
			if dedup {
				j++
			}
		}
	}
	out = append(out, a.Values[i:]...)
	out = append(out, b.Values[j:]...)
	return out
}

// Overlaps reports whether a and b's bounding spans overlap (a cheap
// pre-filter) and, on a positive bound match, whether any element is
// actually shared.
func Overlaps(a, b Set) bool {
	if !span.Overlaps(a.Bounds, b.Bounds) {
		return false
	}
	_, ok := Intersection(a, b)
	return ok
}

// ContainsSpan reports whether every element of s lies in sp. The bounding
// span is consulted first as a cheap short-circuit: if sp already covers
// s's bounds, every element trivially lies within it.
func ContainsSpan(s Set, sp span.Span) bool {
	if span.Contains(sp, s.Bounds) {
		return true
	}
	for _, v := range s.Values {
		if !span.ContainsValue(sp, v) {
			return false
		}
	}
	return true
}

// Project returns the subset of s whose elements lie within sp.
func Project(s Set, sp span.Span) (Set, bool) {
	var out []basetype.Datum
	for _, v := range s.Values {
		if span.ContainsValue(sp, v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return Set{}, false
	}
	res, err := Make(s.Base, out)
	if err != nil {
		return Set{}, false
	}
	return res, true
}
