package span

import (
	"testing"
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
)

func f(v float64) basetype.Datum { return basetype.Datum{Tag: basetype.TagFloat8, V: v} }

func mustSpan(t *testing.T, lo, hi float64, loInc, hiInc bool) Span {
	t.Helper()
	s, err := Make(basetype.TagFloat8, f(lo), f(hi), loInc, hiInc)
	if err != nil {
		t.Fatalf("Make(%v,%v): %v", lo, hi, err)
	}
	return s
}

// Scenario 1 from spec.md §8: A=[1,5), B=(3,7].
func TestScenarioFloatSpanTopology(t *testing.T) {
	a := mustSpan(t, 1, 5, true, false)
	b := mustSpan(t, 3, 7, false, true)

	if Contains(a, b) {
		t.Fatal("contains(A,B) should be false")
	}
	if !Overlaps(a, b) {
		t.Fatal("overlaps(A,B) should be true")
	}
	if Adjacent(a, b) {
		t.Fatal("adjacent(A,B) should be false")
	}
	inter, ok := Intersection(a, b)
	if !ok {
		t.Fatal("expected intersection to exist")
	}
	want := mustSpan(t, 3, 5, false, false)
	if !Eq(inter, want) {
		t.Fatalf("intersection = %+v, want %+v", inter, want)
	}
	u, err := Union(a, b)
	if err != nil {
		t.Fatal(err)
	}
	wantU := mustSpan(t, 1, 7, true, true)
	if !Eq(u, wantU) {
		t.Fatalf("union = %+v, want %+v", u, wantU)
	}
	if Distance(a, b) != 0 {
		t.Fatalf("distance should be 0 for overlapping spans")
	}
}

func tsDatum(tt time.Time) basetype.Datum { return basetype.Datum{Tag: basetype.TagTimestamptz, V: tt} }

// Scenario 2: period bound semantics, adjacency.
func TestScenarioPeriodAdjacency(t *testing.T) {
	d0 := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	d1 := time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)

	p, err := Make(basetype.TagTimestamptz, tsDatum(d0), tsDatum(d1), true, false)
	if err != nil {
		t.Fatal(err)
	}
	q, err := Make(basetype.TagTimestamptz, tsDatum(d1), tsDatum(d2), true, false)
	if err != nil {
		t.Fatal(err)
	}
	if Overlaps(p, q) {
		t.Fatal("overlaps should be false")
	}
	if !Adjacent(p, q) {
		t.Fatal("adjacent should be true")
	}
	u, err := Union(p, q)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Make(basetype.TagTimestamptz, tsDatum(d0), tsDatum(d2), true, false)
	if !Eq(u, want) {
		t.Fatalf("union = %+v, want %+v", u, want)
	}
}

func TestMakeRejectsEmptyAndInverted(t *testing.T) {
	if _, err := Make(basetype.TagFloat8, f(5), f(1), true, true); err == nil {
		t.Fatal("expected error for inverted bounds")
	}
	if _, err := Make(basetype.TagFloat8, f(5), f(5), true, false); err == nil {
		t.Fatal("expected error for empty span (equal bounds, not both inclusive)")
	}
	if _, err := Make(basetype.TagFloat8, f(5), f(5), true, true); err != nil {
		t.Fatalf("singleton span should be valid: %v", err)
	}
}

func TestMinusInteriorNotContiguous(t *testing.T) {
	a := mustSpan(t, 0, 10, true, true)
	b := mustSpan(t, 3, 7, true, true)
	_, _, err := Minus(a, b)
	if err == nil {
		t.Fatal("expected NOT_CONTIGUOUS error when b is strictly interior to a")
	}
}

func TestMinusCoversLeft(t *testing.T) {
	a := mustSpan(t, 0, 10, true, true)
	b := mustSpan(t, -5, 5, true, true)
	r, ok, err := Minus(a, b)
	if err != nil || !ok {
		t.Fatalf("Minus = %+v, %v, %v", r, ok, err)
	}
	want := mustSpan(t, 5, 10, false, true)
	if !Eq(r, want) {
		t.Fatalf("Minus = %+v, want %+v", r, want)
	}
}

func TestNormalizeFoldsOverlapsAndAdjacency(t *testing.T) {
	spans := []Span{
		mustSpan(t, 10, 20, true, false),
		mustSpan(t, 0, 5, true, false),
		mustSpan(t, 20, 25, true, false), // adjacent to first
		mustSpan(t, 6, 9, true, false),
	}
	norm := Normalize(spans)
	if len(norm) != 3 {
		t.Fatalf("len(norm) = %d, want 3: %+v", len(norm), norm)
	}
}

func TestContainsValue(t *testing.T) {
	a := mustSpan(t, 1, 5, true, false)
	if !ContainsValue(a, f(1)) {
		t.Fatal("1 should be in [1,5)")
	}
	if ContainsValue(a, f(5)) {
		t.Fatal("5 should not be in [1,5)")
	}
}
