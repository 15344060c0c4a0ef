package spanset

import (
	"testing"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/span"
)

func f(v float64) basetype.Datum { return basetype.Datum{Tag: basetype.TagFloat8, V: v} }

func mkSpan(t *testing.T, lo, hi float64, loInc, hiInc bool) span.Span {
	t.Helper()
	s, err := span.Make(basetype.TagFloat8, f(lo), f(hi), loInc, hiInc)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMakeNormalizesAndNonAdjacent(t *testing.T) {
	ss, err := Make(basetype.TagFloat8, []span.Span{
		mkSpan(t, 10, 20, true, false),
		mkSpan(t, 0, 5, true, false),
		mkSpan(t, 20, 25, true, false),
	})
	if err != nil {
		t.Fatal(err)
	}
	// spec.md §8: no two consecutive spans overlap or are adjacent.
	for i := 0; i < ss.Len()-1; i++ {
		if span.Overlaps(ss.Spans[i], ss.Spans[i+1]) {
			t.Fatalf("spans[%d] overlaps spans[%d]", i, i+1)
		}
		if span.Adjacent(ss.Spans[i], ss.Spans[i+1]) {
			t.Fatalf("spans[%d] adjacent to spans[%d]", i, i+1)
		}
	}
	if ss.Len() != 2 {
		t.Fatalf("len = %d, want 2 (first two folded)", ss.Len())
	}
}

func TestMakeRejectsEmpty(t *testing.T) {
	if _, err := Make(basetype.TagFloat8, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestIntersectionAndMinus(t *testing.T) {
	a, _ := Make(basetype.TagFloat8, []span.Span{mkSpan(t, 0, 10, true, false)})
	b, _ := Make(basetype.TagFloat8, []span.Span{mkSpan(t, 5, 15, true, false)})
	inter, ok := Intersection(a, b)
	if !ok {
		t.Fatal("expected intersection")
	}
	want := mkSpan(t, 5, 10, true, false)
	if !span.Eq(inter.Spans[0], want) {
		t.Fatalf("intersection = %+v, want %+v", inter.Spans[0], want)
	}
	diff, ok := Minus(a, b)
	if !ok {
		t.Fatal("expected minus result")
	}
	wantDiff := mkSpan(t, 0, 5, true, false)
	if !span.Eq(diff.Spans[0], wantDiff) {
		t.Fatalf("minus = %+v, want %+v", diff.Spans[0], wantDiff)
	}
}

func TestContainsValue(t *testing.T) {
	ss, _ := Make(basetype.TagFloat8, []span.Span{mkSpan(t, 0, 5, true, false), mkSpan(t, 10, 15, true, false)})
	if !ss.ContainsValue(f(3)) {
		t.Fatal("expected 3 contained")
	}
	if ss.ContainsValue(f(7)) {
		t.Fatal("7 should not be contained (gap)")
	}
}
