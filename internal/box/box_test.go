package box

import (
	"testing"
	"time"

	"github.com/banshee-data/temporalgeo/internal/basetype"
	"github.com/banshee-data/temporalgeo/internal/span"
)

func floatSpan(t *testing.T, lo, hi float64) span.Span {
	t.Helper()
	s, err := span.Make(basetype.TagFloat8,
		basetype.Datum{Tag: basetype.TagFloat8, V: lo},
		basetype.Datum{Tag: basetype.TagFloat8, V: hi}, true, false)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTBoxMissingDimensionProjectSemantics(t *testing.T) {
	xOnly, err := MakeTBox(ptr(floatSpan(t, 0, 10)), nil)
	if err != nil {
		t.Fatal(err)
	}
	d0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	d1 := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	period, err := span.Make(basetype.TagTimestamptz,
		basetype.Datum{Tag: basetype.TagTimestamptz, V: d0},
		basetype.Datum{Tag: basetype.TagTimestamptz, V: d1}, true, false)
	if err != nil {
		t.Fatal(err)
	}
	tOnly, err := MakeTBox(nil, &period)
	if err != nil {
		t.Fatal(err)
	}
	// Project semantics: overlaps with no shared dimension is vacuously
	// false (nothing to check), contains with no shared dimension is
	// vacuously true.
	if OverlapsTBox(xOnly, tOnly) {
		t.Fatal("overlaps with no shared dimension should be false (nothing checked)")
	}
	if !ContainsTBox(xOnly, tOnly) {
		t.Fatal("contains with no shared dimension should be true (project semantics)")
	}
	if SameTBox(xOnly, tOnly) {
		t.Fatal("same/equal should use strict semantics and return false on flag mismatch")
	}
}

func ptr(s span.Span) *span.Span { return &s }

func TestTBoxRejectsNoDimension(t *testing.T) {
	if _, err := MakeTBox(nil, nil); err == nil {
		t.Fatal("expected error when neither X nor T is present")
	}
}

func TestUnionTBox(t *testing.T) {
	a, _ := MakeTBox(ptr(floatSpan(t, 0, 5)), nil)
	b, _ := MakeTBox(ptr(floatSpan(t, 3, 10)), nil)
	u, err := UnionTBox(a, b)
	if err != nil {
		t.Fatal(err)
	}
	want := floatSpan(t, 0, 10)
	if !span.Eq(u.X, want) {
		t.Fatalf("union X = %+v, want %+v", u.X, want)
	}
}

func TestSTBoxOverlapsAndContains(t *testing.T) {
	a, err := MakeSTBox(true, 0, 0, 10, 10, false, 0, 0, nil, 4326, false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MakeSTBox(true, 5, 5, 15, 15, false, 0, 0, nil, 4326, false)
	if err != nil {
		t.Fatal(err)
	}
	if !OverlapsSTBox(a, b) {
		t.Fatal("expected overlap")
	}
	c, err := MakeSTBox(true, 1, 1, 2, 2, false, 0, 0, nil, 4326, false)
	if err != nil {
		t.Fatal(err)
	}
	if !ContainsSTBox(a, c) {
		t.Fatal("expected a to contain c")
	}
}

func TestSTBoxSRIDMismatchRejected(t *testing.T) {
	a, _ := MakeSTBox(true, 0, 0, 10, 10, false, 0, 0, nil, 4326, false)
	b, _ := MakeSTBox(true, 0, 0, 10, 10, false, 0, 0, nil, 3857, false)
	if _, err := UnionSTBox(a, b); err == nil {
		t.Fatal("expected SRID mismatch error")
	}
}
