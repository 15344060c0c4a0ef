package index

import (
	"sort"
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/box"
	"github.com/banshee-data/temporalgeo/internal/span"
	"github.com/banshee-data/temporalgeo/internal/temperr"
)

// Point is a coordinate in SP-GiST "bound space": one axis per bound
// (lower, upper) of each original dimension, so a 1-D Span is a 2-D
// Point, a TBox a 4-D Point (Xlo, Xhi, Tlo, Thi), and an STBox a 6-D
// Point (Xlo, Xhi, Ylo, Yhi, Tlo, Thi) — matching spec.md §4.8's "the
// medians of lower and upper bounds (2-D) or of all dimensions (4-D /
// 6-D)".
type Point []float64

// Quadrant is a bitmask over a Point's axes: bit i is set when the
// entry's coordinate i is on the upper side of the centroid's
// coordinate i (spec.md §4.8 "quadrant = 2 bits per dimension telling
// whether the entry is left/right of centroid per bound").
type Quadrant uint32

func toFloat(d basetype.Datum) (float64, error) {
	switch v := d.V.(type) {
	case float64:
		return v, nil
	case int32:
		return float64(v), nil
	case time.Time:
		return float64(v.UnixNano()) / float64(time.Second), nil
	default:
		return 0, temperr.Wrap(temperr.ErrDomainMismatch, "index: spgist bound space requires an ordered numeric or temporal base")
	}
}

// SpanPoint converts a Span to its 2-D bound-space Point (lower, upper).
func SpanPoint(s span.Span) (Point, error) {
	lo, err := toFloat(s.Lo)
	if err != nil {
		return nil, err
	}
	hi, err := toFloat(s.Hi)
	if err != nil {
		return nil, err
	}
	return Point{lo, hi}, nil
}

// TBoxPoint converts a TBox to its 4-D bound-space Point
// (Xlo, Xhi, Tlo, Thi); both dimensions must be present.
func TBoxPoint(b box.TBox) (Point, error) {
	if !b.HasX() || !b.HasT() {
		return nil, temperr.Wrap(temperr.ErrDimensionMissing, "index: tbox spgist point requires both X and T")
	}
	xlo, err := toFloat(b.X.Lo)
	if err != nil {
		return nil, err
	}
	xhi, err := toFloat(b.X.Hi)
	if err != nil {
		return nil, err
	}
	tlo, err := toFloat(b.T.Lo)
	if err != nil {
		return nil, err
	}
	thi, err := toFloat(b.T.Hi)
	if err != nil {
		return nil, err
	}
	return Point{xlo, xhi, tlo, thi}, nil
}

// STBoxPoint converts an STBox to its 6-D bound-space Point
// (Xlo, Xhi, Ylo, Yhi, Tlo, Thi); X and T must be present (Z is ignored,
// matching the spec's "6-D" case which counts two spatial axes plus
// time, not three).
func STBoxPoint(b box.STBox) (Point, error) {
	if !b.HasX() || !b.HasT() {
		return nil, temperr.Wrap(temperr.ErrDimensionMissing, "index: stbox spgist point requires both X and T")
	}
	tlo, err := toFloat(b.T.Lo)
	if err != nil {
		return nil, err
	}
	thi, err := toFloat(b.T.Hi)
	if err != nil {
		return nil, err
	}
	return Point{b.XMin, b.XMax, b.YMin, b.YMax, tlo, thi}, nil
}

// Choose routes entry to the quadrant of centroid it belongs in.
func Choose(centroid, entry Point) Quadrant {
	var q Quadrant
	for i := range centroid {
		if entry[i] >= centroid[i] {
			q |= 1 << uint(i)
		}
	}
	return q
}

// PickSplit computes the centroid (the per-axis median of points) and
// the quadrant each point falls into relative to it.
func PickSplit(points []Point) (centroid Point, quadrants []Quadrant, err error) {
	if len(points) == 0 {
		return nil, nil, temperr.Wrap(temperr.ErrInvariantViolated, "index: spgist picksplit of zero points")
	}
	dims := len(points[0])
	centroid = make(Point, dims)
	for d := 0; d < dims; d++ {
		vals := make([]float64, len(points))
		for i, p := range points {
			vals[i] = p[d]
		}
		sort.Float64s(vals)
		centroid[d] = median(vals)
	}
	quadrants = make([]Quadrant, len(points))
	for i, p := range points {
		quadrants[i] = Choose(centroid, p)
	}
	return centroid, quadrants, nil
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// TraversalBox is the refined bounding box of a subtree maintained while
// descending an SP-GiST quadtree (spec.md §4.8's "traversal value").
type TraversalBox struct {
	Lo, Hi Point
}

// Refine narrows box for the child reached via quadrant relative to
// centroid: for each axis, the child's range is clamped to the
// centroid's side the quadrant bit selects.
func (t TraversalBox) Refine(centroid Point, quadrant Quadrant) TraversalBox {
	out := TraversalBox{Lo: append(Point(nil), t.Lo...), Hi: append(Point(nil), t.Hi...)}
	for i := range centroid {
		if quadrant&(1<<uint(i)) != 0 {
			if out.Lo[i] < centroid[i] {
				out.Lo[i] = centroid[i]
			}
		} else {
			if out.Hi[i] > centroid[i] {
				out.Hi[i] = centroid[i]
			}
		}
	}
	return out
}

// InnerConsistent reports whether query can still match some point
// inside refined, for a given strategy — evaluated per axis against the
// refined traversal box, matching spec.md §4.8's "push the child only
// when the strategy can still succeed inside that refined box".
func InnerConsistent(refined TraversalBox, query Point, strategy Strategy) bool {
	switch strategy {
	case StrategyOverlaps, StrategyContains, StrategyContainedBy, StrategySame:
		for i := range query {
			if refined.Hi[i] < query[i] || refined.Lo[i] > query[i] {
				return false
			}
		}
		return true
	case StrategyLeft, StrategyBefore:
		return refined.Lo[0] < query[0]
	case StrategyRight, StrategyAfter:
		return refined.Hi[0] > query[0]
	default:
		return true
	}
}

// LeafConsistentSpan runs the strict span predicate at a leaf, delegating
// to SpanConsistent (recheck is never needed again once the exact key is
// available, but the caller may still want the strategy's own recheck
// contract, so it is passed through).
func LeafConsistentSpan(key, query span.Span, strategy Strategy) (matches, recheck bool) {
	return SpanConsistent(key, query, strategy)
}

// LeafConsistentTBox runs the strict TBox predicate at a leaf.
func LeafConsistentTBox(key, query box.TBox, strategy Strategy) (matches, recheck bool) {
	return TBoxConsistent(key, query, strategy)
}

// LeafConsistentSTBox runs the strict STBox predicate at a leaf.
func LeafConsistentSTBox(key, query box.STBox, strategy Strategy) (matches, recheck bool) {
	return STBoxConsistent(key, query, strategy)
}
