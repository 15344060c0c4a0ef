package index

import (
	"testing"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/box"
	"github.com/banshee-data/temporalgeo/internal/span"
)

func f8(v float64) basetype.Datum { return basetype.Datum{Tag: basetype.TagFloat8, V: v} }

func fspan(t *testing.T, lo, hi float64) span.Span {
	t.Helper()
	s, err := span.Make(basetype.TagFloat8, f8(lo), f8(hi), true, false)
	if err != nil {
		t.Fatalf("span.Make: %v", err)
	}
	return s
}

func TestSpanConsistentOverlapsIsLossy(t *testing.T) {
	key := fspan(t, 0, 10)
	query := fspan(t, 5, 15)
	matches, recheck := SpanConsistent(key, query, StrategyOverlaps)
	if !matches {
		t.Fatalf("expected overlap match")
	}
	if !recheck {
		t.Fatalf("overlaps strategy should require recheck")
	}
}

func TestSpanConsistentLeftIsNotLossy(t *testing.T) {
	key := fspan(t, 0, 10)
	query := fspan(t, 20, 30)
	matches, recheck := SpanConsistent(key, query, StrategyLeft)
	if !matches {
		t.Fatalf("expected left match")
	}
	if recheck {
		t.Fatalf("strict left should never require recheck")
	}
}

func TestSpanUnionCoversAllEntries(t *testing.T) {
	entries := []span.Span{fspan(t, 0, 5), fspan(t, 10, 15), fspan(t, 20, 25)}
	out, err := SpanUnion(entries)
	if err != nil {
		t.Fatalf("SpanUnion: %v", err)
	}
	for _, e := range entries {
		if !span.Contains(out, e) {
			t.Fatalf("union %+v does not contain entry %+v", out, e)
		}
	}
}

func TestSpanPenaltyZeroWhenAlreadyCovered(t *testing.T) {
	orig := fspan(t, 0, 100)
	inner := fspan(t, 10, 20)
	p, err := SpanPenalty(orig, inner)
	if err != nil {
		t.Fatalf("SpanPenalty: %v", err)
	}
	if p != 0 {
		t.Fatalf("expected zero penalty for already-covered span, got %v", p)
	}
}

func TestSpanPickSplitProducesTwoNonEmptyGroups(t *testing.T) {
	entries := []span.Span{fspan(t, 0, 5), fspan(t, 1, 6), fspan(t, 50, 55), fspan(t, 51, 56)}
	left, right, err := SpanPickSplit(entries)
	if err != nil {
		t.Fatalf("SpanPickSplit: %v", err)
	}
	if len(left) == 0 || len(right) == 0 {
		t.Fatalf("expected both groups non-empty, got left=%v right=%v", left, right)
	}
	if len(left)+len(right) != len(entries) {
		t.Fatalf("expected groups to partition all entries, got left=%v right=%v", left, right)
	}
}

func tboxOf(t *testing.T, xlo, xhi float64) box.TBox {
	t.Helper()
	x := fspan(t, xlo, xhi)
	b, err := box.MakeTBox(&x, nil)
	if err != nil {
		t.Fatalf("box.MakeTBox: %v", err)
	}
	return b
}

func TestTBoxConsistentOverlaps(t *testing.T) {
	key := tboxOf(t, 0, 10)
	query := tboxOf(t, 5, 15)
	matches, _ := TBoxConsistent(key, query, StrategyOverlaps)
	if !matches {
		t.Fatalf("expected tbox overlap match")
	}
}

func TestTBoxPenaltyPositiveWhenExpanding(t *testing.T) {
	orig := tboxOf(t, 0, 10)
	newItem := tboxOf(t, 20, 30)
	p, err := TBoxPenalty(orig, newItem)
	if err != nil {
		t.Fatalf("TBoxPenalty: %v", err)
	}
	if p <= 0 {
		t.Fatalf("expected positive penalty when enlarging, got %v", p)
	}
}

func TestSpanPointRoundTripsBounds(t *testing.T) {
	s := fspan(t, 1, 9)
	p, err := SpanPoint(s)
	if err != nil {
		t.Fatalf("SpanPoint: %v", err)
	}
	if len(p) != 2 || p[0] != 1 || p[1] != 9 {
		t.Fatalf("unexpected point %v", p)
	}
}

func TestChooseQuadrantBitPerAxis(t *testing.T) {
	centroid := Point{5, 5}
	below := Point{1, 1}
	above := Point{9, 9}
	mixed := Point{9, 1}
	if Choose(centroid, below) != 0 {
		t.Fatalf("expected quadrant 0 for point below centroid on both axes")
	}
	if Choose(centroid, above) != 3 {
		t.Fatalf("expected quadrant 3 for point above centroid on both axes")
	}
	if Choose(centroid, mixed) != 1 {
		t.Fatalf("expected quadrant 1 for point above on axis 0 only, got %d", Choose(centroid, mixed))
	}
}

func TestPickSplitCentroidIsPerAxisMedian(t *testing.T) {
	points := []Point{{1, 10}, {2, 20}, {3, 30}}
	centroid, quadrants, err := PickSplit(points)
	if err != nil {
		t.Fatalf("PickSplit: %v", err)
	}
	if centroid[0] != 2 || centroid[1] != 20 {
		t.Fatalf("expected centroid {2,20}, got %v", centroid)
	}
	if len(quadrants) != len(points) {
		t.Fatalf("expected one quadrant per point")
	}
}

func TestTraversalBoxRefineNarrowsRange(t *testing.T) {
	root := TraversalBox{Lo: Point{0, 0}, Hi: Point{10, 10}}
	centroid := Point{5, 5}
	child := root.Refine(centroid, Choose(centroid, Point{1, 1}))
	if child.Hi[0] != 5 || child.Hi[1] != 5 {
		t.Fatalf("expected lower-quadrant child clamped at centroid, got %v", child)
	}
}

func TestInnerConsistentOverlapsPrunesDisjointBox(t *testing.T) {
	refined := TraversalBox{Lo: Point{0, 0}, Hi: Point{4, 4}}
	query := Point{100, 100}
	if InnerConsistent(refined, query, StrategyOverlaps) {
		t.Fatalf("expected prune: query well outside refined box")
	}
}

func TestLeafConsistentSpanMatchesSpanConsistent(t *testing.T) {
	key := fspan(t, 0, 10)
	query := fspan(t, 5, 15)
	m1, r1 := LeafConsistentSpan(key, query, StrategyOverlaps)
	m2, r2 := SpanConsistent(key, query, StrategyOverlaps)
	if m1 != m2 || r1 != r2 {
		t.Fatalf("LeafConsistentSpan diverged from SpanConsistent")
	}
}
